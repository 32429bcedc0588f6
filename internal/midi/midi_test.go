package midi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dygy/midi-service/internal/errors"
	"github.com/dygy/midi-service/internal/exec"
)

func TestResolveQuality(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Profile
	}{
		{"Fast", "fast", Profile{QualityFast, 0.3, 0.1}},
		{"Standard", "standard", Profile{QualityStandard, 0.4, 0.2}},
		{"High", "high", Profile{QualityHigh, 0.5, 0.3}},
		{"WrongCase_UsesDefault", "HIGH", Profile{QualityStandard, 0.4, 0.2}},
		{"Padded_UsesDefault", " high ", Profile{QualityStandard, 0.4, 0.2}},
		{"Empty_UsesDefault", "", Profile{QualityStandard, 0.4, 0.2}},
		{"Unknown_UsesDefault", "ultra", Profile{QualityStandard, 0.4, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveQuality(tt.input))
		})
	}
}

func TestQualitiesCoverTable(t *testing.T) {
	for _, q := range Qualities() {
		assert.Equal(t, q, ResolveQuality(string(q)).Quality)
	}
}

func TestArgs(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		args := Args(Request{
			AudioPaths: []string{"/tmp/t1.mp3"},
			OutputDir:  "/tmp/midi_output",
			Profile:    ResolveQuality("high"),
			Options:    DefaultOptions(),
		})

		assert.Equal(t, []string{
			"--onset-threshold", "0.5",
			"--frame-threshold", "0.3",
			"--minimum-note-length", "127.7",
			"--save-midi",
			"/tmp/midi_output",
			"/tmp/t1.mp3",
		}, args)
	})

	t.Run("AllSwitches", func(t *testing.T) {
		args := Args(Request{
			AudioPaths: []string{"a.wav", "b.wav"},
			OutputDir:  "out",
			ModelPath:  "/models/icassp",
			Profile:    ResolveQuality("fast"),
			Options: Options{
				SonifyMIDI:         true,
				SaveModelOutputs:   true,
				SaveNoteEvents:     true,
				MinimumNoteLength:  58,
				MinimumFrequency:   27.5,
				MaximumFrequency:   4186,
				MultiplePitchBends: true,
			},
		})

		assert.Equal(t, []string{
			"--onset-threshold", "0.3",
			"--frame-threshold", "0.1",
			"--minimum-note-length", "58",
			"--model-path", "/models/icassp",
			"--minimum-frequency", "27.5",
			"--maximum-frequency", "4186",
			"--sonify-midi",
			"--save-model-outputs",
			"--save-note-events",
			"--multiple-pitch-bends",
			"--no-melodia",
			"out", "a.wav", "b.wav",
		}, args)
	})
}

func TestBasicPitchTranscribe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	python := filepath.Join(dir, "python")

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, os.WriteFile(python, []byte("#!/bin/sh\nexit 0\n"), 0o755))
		engine := NewBasicPitch(exec.NewRunner(python))

		err := engine.Transcribe(context.Background(), Request{
			AudioPaths: []string{"in.mp3"},
			OutputDir:  dir,
			Profile:    ResolveQuality(""),
			Options:    DefaultOptions(),
		})
		assert.NoError(t, err)
	})

	t.Run("FailureBecomesProcessError", func(t *testing.T) {
		require.NoError(t, os.WriteFile(python, []byte("#!/bin/sh\necho 'bad audio' >&2\nexit 4\n"), 0o755))
		engine := NewBasicPitch(exec.NewRunner(python))

		err := engine.Transcribe(context.Background(), Request{OutputDir: dir, Options: DefaultOptions()})
		require.Error(t, err)

		var perr *apperrors.ProcessError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "basic-pitch", perr.Tool)
		assert.Equal(t, "transcription", perr.Stage)
		assert.Equal(t, 4, perr.ExitCode)
		assert.Contains(t, perr.Stderr, "bad audio")
	})
}

func TestLocate(t *testing.T) {
	write := func(t *testing.T, dir, name string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		return path
	}

	t.Run("ExactNameWins", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "aaa.mid")
		exact := write(t, dir, "track-1_basic_pitch.mid")

		path, ok := Locate(dir, "track-1")
		require.True(t, ok)
		assert.Equal(t, exact, path)
	})

	t.Run("FallsBackToFirstMIDIByName", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "notes.txt")
		first := write(t, dir, "b.mid")
		write(t, dir, "c.MID")

		path, ok := Locate(dir, "track-1")
		require.True(t, ok)
		assert.Equal(t, first, path)
	})

	t.Run("IgnoresDirectoriesNamedLikeMIDI", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "track-1_basic_pitch.mid"), 0o755))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "a.mid"), 0o755))

		_, ok := Locate(dir, "track-1")
		assert.False(t, ok)
	})

	t.Run("NothingFound", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "track-1.mp3")

		_, ok := Locate(dir, "track-1")
		assert.False(t, ok)
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		_, ok := Locate(filepath.Join(t.TempDir(), "nope"), "track-1")
		assert.False(t, ok)
	})
}

func TestIsMIDIFile(t *testing.T) {
	assert.True(t, IsMIDIFile("x.mid"))
	assert.True(t, IsMIDIFile("x.MIDI"))
	assert.False(t, IsMIDIFile("x.mp3"))
	assert.False(t, IsMIDIFile("mid"))
}
