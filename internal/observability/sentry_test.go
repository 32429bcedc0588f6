package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dygy/midi-service/internal/config"
)

func TestInitSentryWithoutDSN(t *testing.T) {
	flush, enabled, err := InitSentry(config.Config{}, "test")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.NotPanics(t, flush)
}

func TestInitSentryRejectsBadDSN(t *testing.T) {
	_, enabled, err := InitSentry(config.Config{SentryDSN: "not a dsn"}, "test")
	assert.Error(t, err)
	assert.False(t, enabled)
}

func TestCaptureErrorWithoutClient(t *testing.T) {
	assert.NotPanics(t, func() {
		CaptureError(context.Background(), errors.New("boom"), map[string]string{"track_id": "t1"})
	})
}

func TestMiddlewarePassesThrough(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestFilterSensitiveHeaders(t *testing.T) {
	got := filterSensitiveHeaders(map[string]string{
		"Authorization": "Bearer x",
		"cookie":        "s=1",
		"Content-Type":  "application/json",
	})
	assert.Equal(t, "[REDACTED]", got["Authorization"])
	assert.Equal(t, "[REDACTED]", got["cookie"])
	assert.Equal(t, "application/json", got["Content-Type"])
}
