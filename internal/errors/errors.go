package errors

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Sentinel errors for expected failure modes
var (
	ErrMissingFields    = errors.New("missing audioUrl or trackId")
	ErrInvalidTrackID   = errors.New("invalid trackId")
	ErrMalformedBody    = errors.New("malformed request body")
	ErrFileTooLarge     = errors.New("file exceeds size limit")
	ErrBadStatus        = errors.New("unexpected response status")
	ErrNoMIDIOutput     = errors.New("no MIDI file produced")
	ErrToolNotInstalled = errors.New("required tool not installed")
)

// ValidationError rejects a request before any I/O happens
type ValidationError struct {
	Field string
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("validation failed: %v", e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// DownloadError represents a failed or timed out fetch of the source audio
type DownloadError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Cause      error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: status %d: %v", RedactURL(e.URL), e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("download %s: %v", RedactURL(e.URL), e.Cause)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// RedactURL strips the query, fragment and userinfo from raw so signed
// URLs can be logged and returned to callers.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		if scheme, rest, ok := strings.Cut(raw, "://"); ok {
			authority, path, _ := strings.Cut(rest, "/")
			if i := strings.LastIndex(authority, "@"); i >= 0 {
				raw = scheme + "://" + authority[i+1:]
				if len(rest) > len(authority) {
					raw += "/" + path
				}
			}
		}
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// GenerationError means the engine ran but left no MIDI file behind
type GenerationError struct {
	TrackID   string
	OutputDir string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%v for track %s in %s", ErrNoMIDIOutput, e.TrackID, e.OutputDir)
}

func (e *GenerationError) Unwrap() error {
	return ErrNoMIDIOutput
}

// ProcessError represents a failure in an external process
type ProcessError struct {
	Tool     string // "basic-pitch", "python"
	Stage    string // "transcription", "dependency_check"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}

// IsValidation reports whether err rejects the request as malformed
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsDownload reports whether err came from fetching the source audio
func IsDownload(err error) bool {
	var d *DownloadError
	return errors.As(err, &d)
}

// IsGeneration reports whether err means no MIDI output was found
func IsGeneration(err error) bool {
	var g *GenerationError
	return errors.As(err, &g)
}
