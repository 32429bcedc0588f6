package audio

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MaxFileSize = 100 * 1024 * 1024 // 100MB
)

// Format represents an audio file format
type Format string

const (
	FormatWAV  Format = "wav"
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatOGG  Format = "ogg"
	FormatM4A  Format = "m4a"
)

// DefaultFormat is assumed when the content cannot be identified
const DefaultFormat = FormatMP3

// Ext returns the file extension without the leading dot
func (f Format) Ext() string {
	return string(f)
}

// mimeFormats maps detected MIME types to formats the engine can decode
var mimeFormats = []struct {
	mime   string
	format Format
}{
	{"audio/wav", FormatWAV},
	{"audio/mpeg", FormatMP3},
	{"audio/flac", FormatFLAC},
	{"audio/ogg", FormatOGG},
	{"audio/x-m4a", FormatM4A},
	{"audio/mp4", FormatM4A},
}

// DetectFormat identifies audio content by its magic bytes
func DetectFormat(data []byte) (Format, bool) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		for _, candidate := range mimeFormats {
			if m.Is(candidate.mime) {
				return candidate.format, true
			}
		}
	}
	return "", false
}

// ResolveFormat prefers the content's magic bytes, then the server's
// Content-Type, then DefaultFormat.
func ResolveFormat(data []byte, contentType string) Format {
	if f, ok := DetectFormat(data); ok {
		return f
	}
	if f, ok := FormatFromContentType(contentType); ok {
		return f
	}
	return DefaultFormat
}

// FormatFromContentType maps a response Content-Type header to a format
func FormatFromContentType(contentType string) (Format, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return FormatWAV, true
	case "audio/mpeg", "audio/mp3":
		return FormatMP3, true
	case "audio/flac", "audio/x-flac":
		return FormatFLAC, true
	case "audio/ogg", "application/ogg":
		return FormatOGG, true
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return FormatM4A, true
	}
	return "", false
}
