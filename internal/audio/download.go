package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/dygy/midi-service/internal/errors"
)

// DownloadTimeout bounds the whole fetch, body included
const DownloadTimeout = 60 * time.Second

// Download is fetched source audio held in memory
type Download struct {
	Data   []byte
	Format Format
}

// Downloader fetches remote audio over HTTP
type Downloader struct {
	client  *http.Client
	maxSize int64
}

// NewDownloader creates a downloader whose requests time out after timeout
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		maxSize: MaxFileSize,
	}
}

// Fetch downloads rawURL. Every failure is a *errors.DownloadError.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &apperrors.DownloadError{URL: rawURL, Cause: unwrapURLError(err)}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &apperrors.DownloadError{URL: rawURL, Cause: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.DownloadError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%w: %s", apperrors.ErrBadStatus, resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, &apperrors.DownloadError{URL: rawURL, StatusCode: resp.StatusCode, Cause: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > d.maxSize {
		return nil, &apperrors.DownloadError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%w: maximum size is %d bytes", apperrors.ErrFileTooLarge, d.maxSize),
		}
	}

	return &Download{
		Data:   data,
		Format: ResolveFormat(data, resp.Header.Get("Content-Type")),
	}, nil
}

// unwrapURLError drops the "<op> <url>:" prefix net/http and net/url add.
// DownloadError names the URL itself, redacted.
func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
