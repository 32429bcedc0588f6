package midi

import "context"

// MinimumNoteLengthMS drops notes shorter than a 32nd note at 120 BPM
const MinimumNoteLengthMS = 127.70

// Options are the engine switches that do not vary per quality tier
type Options struct {
	SaveMIDI           bool
	SonifyMIDI         bool
	SaveModelOutputs   bool
	SaveNoteEvents     bool
	MinimumNoteLength  float64 // milliseconds
	MinimumFrequency   float64 // Hz, 0 keeps all frequencies
	MaximumFrequency   float64 // Hz, 0 keeps all frequencies
	MultiplePitchBends bool
	MelodiaTrick       bool
}

// DefaultOptions returns MIDI-only output tuned for melodic material
func DefaultOptions() Options {
	return Options{
		SaveMIDI:          true,
		MinimumNoteLength: MinimumNoteLengthMS,
		MelodiaTrick:      true,
	}
}

// Request is a single transcription invocation
type Request struct {
	AudioPaths []string
	OutputDir  string
	ModelPath  string // empty selects the engine's bundled model
	Profile    Profile
	Options    Options
}

// Engine turns audio files into MIDI files written to Request.OutputDir.
// It returns once the files are on disk; it never returns content.
type Engine interface {
	Transcribe(ctx context.Context, req Request) error
}
