package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/dygy/midi-service/internal/config"
)

const flushTimeout = 2 * time.Second

// InitSentry configures error reporting. It reports false when no DSN is
// set; the returned flush func is always safe to call.
func InitSentry(cfg config.Config, release string) (flush func(), enabled bool, err error) {
	noop := func() {}
	if cfg.SentryDSN == "" {
		return noop, false, nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "midi-service@" + release,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	})
	if err != nil {
		return noop, false, err
	}
	return func() { sentry.Flush(flushTimeout) }, true, nil
}

// Middleware attaches a Sentry hub to each request and reports panics
// before passing them on to the next recoverer.
func Middleware(next http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(next)
}

// CaptureError reports err on the request's hub, or the global one
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Cookie", "X-Api-Key":
			filtered[k] = "[REDACTED]"
		default:
			filtered[k] = v
		}
	}
	return filtered
}
