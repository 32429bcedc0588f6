package midi

import (
	"os"
	"path/filepath"
	"strings"
)

// OutputName is the file Basic Pitch writes for an input named <stem>.<ext>
func OutputName(stem string) string {
	return stem + "_basic_pitch.mid"
}

// lookupStep finds a candidate MIDI file or reports that it has none
type lookupStep func(dir, trackID string) (string, bool)

// lookupPolicy is tried in order; the first hit wins
var lookupPolicy = []lookupStep{
	byExactName,
	byExtension,
}

// Locate finds the MIDI file produced for trackID in dir
func Locate(dir, trackID string) (string, bool) {
	for _, step := range lookupPolicy {
		if path, ok := step(dir, trackID); ok {
			return path, true
		}
	}
	return "", false
}

func byExactName(dir, trackID string) (string, bool) {
	path := filepath.Join(dir, OutputName(trackID))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// byExtension returns the first MIDI file in directory order
func byExtension(dir, _ string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsMIDIFile(e.Name()) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// IsMIDIFile reports whether name carries a MIDI extension
func IsMIDIFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mid", ".midi":
		return true
	}
	return false
}
