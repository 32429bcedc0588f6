package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputDirName is where the engine writes MIDI files inside the store
const OutputDirName = "midi_output"

const maxTrackIDLen = 200

// Store manages transient files for in-flight requests. Paths are derived
// from the caller's track id, so two concurrent requests with the same id
// share (and may clobber) files.
type Store struct {
	Dir string
}

// New creates a store rooted at dir. Nothing is created on disk until a
// file is written.
func New(dir string) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Store{Dir: dir}
}

// ValidTrackID reports whether id is usable as a single path component
func ValidTrackID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > maxTrackIDLen {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}

// Path helpers for store files
func (s *Store) AudioPath(trackID, ext string) string { return filepath.Join(s.Dir, trackID+"."+ext) }
func (s *Store) OutputDir() string                    { return filepath.Join(s.Dir, OutputDirName) }

// WriteAudio persists downloaded audio as <trackID>.<ext>
func (s *Store) WriteAudio(trackID, ext string, data []byte) (string, error) {
	if !ValidTrackID(trackID) {
		return "", fmt.Errorf("write audio: invalid track id %q", trackID)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	path := s.AudioPath(trackID, ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// PrepareOutput creates the engine output directory if absent
func (s *Store) PrepareOutput() (string, error) {
	dir := s.OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// Remove deletes every path, continuing past failures. Files that are
// already gone do not count as failures.
func (s *Store) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
