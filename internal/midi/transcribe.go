package midi

import (
	"context"
	"strconv"

	apperrors "github.com/dygy/midi-service/internal/errors"
	"github.com/dygy/midi-service/internal/exec"
)

const basicPitchModule = "basic_pitch.predict"

// BasicPitch runs Spotify's Basic Pitch model through its Python CLI
type BasicPitch struct {
	runner *exec.Runner
}

// NewBasicPitch creates a new Basic Pitch engine
func NewBasicPitch(runner *exec.Runner) *BasicPitch {
	return &BasicPitch{runner: runner}
}

// Transcribe converts the request's audio files to MIDI
func (b *BasicPitch) Transcribe(ctx context.Context, req Request) error {
	result, err := b.runner.RunModule(ctx, basicPitchModule, Args(req)...)
	if err != nil {
		exitCode, stderr := -1, ""
		if result != nil {
			exitCode, stderr = result.ExitCode, result.Stderr
		}
		return apperrors.NewProcessError("basic-pitch", "transcription", exitCode, stderr, err)
	}
	return nil
}

// Args builds the command line for basic_pitch.predict
func Args(req Request) []string {
	opts := req.Options
	args := []string{
		"--onset-threshold", formatFloat(req.Profile.OnsetThreshold),
		"--frame-threshold", formatFloat(req.Profile.FrameThreshold),
		"--minimum-note-length", formatFloat(opts.MinimumNoteLength),
	}

	if req.ModelPath != "" {
		args = append(args, "--model-path", req.ModelPath)
	}
	if opts.MinimumFrequency > 0 {
		args = append(args, "--minimum-frequency", formatFloat(opts.MinimumFrequency))
	}
	if opts.MaximumFrequency > 0 {
		args = append(args, "--maximum-frequency", formatFloat(opts.MaximumFrequency))
	}

	flags := []struct {
		on   bool
		name string
	}{
		{opts.SaveMIDI, "--save-midi"},
		{opts.SonifyMIDI, "--sonify-midi"},
		{opts.SaveModelOutputs, "--save-model-outputs"},
		{opts.SaveNoteEvents, "--save-note-events"},
		{opts.MultiplePitchBends, "--multiple-pitch-bends"},
		{!opts.MelodiaTrick, "--no-melodia"},
	}
	for _, f := range flags {
		if f.on {
			args = append(args, f.name)
		}
	}

	args = append(args, req.OutputDir)
	return append(args, req.AudioPaths...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
