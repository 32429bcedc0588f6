package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dygy/midi-service/internal/audio"
	apperrors "github.com/dygy/midi-service/internal/errors"
	"github.com/dygy/midi-service/internal/midi"
	"github.com/dygy/midi-service/internal/progress"
	"github.com/dygy/midi-service/internal/workspace"
)

// Request asks for one audio file to be transcribed
type Request struct {
	AudioURL string  `json:"audioUrl"`
	TrackID  string  `json:"trackId"`
	Quality  Quality `json:"quality,omitempty"`
}

// Quality is the requested tier name. Values that are not JSON strings
// decode as empty and resolve to the default tier.
type Quality string

func (q *Quality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*q = ""
		return nil
	}
	*q = Quality(s)
	return nil
}

// Validate checks required fields without touching the network or disk
func (r Request) Validate() error {
	var missing []string
	if r.AudioURL == "" {
		missing = append(missing, "audioUrl")
	}
	if r.TrackID == "" {
		missing = append(missing, "trackId")
	}
	if len(missing) > 0 {
		return &apperrors.ValidationError{Field: strings.Join(missing, ","), Cause: apperrors.ErrMissingFields}
	}
	if !workspace.ValidTrackID(r.TrackID) {
		return &apperrors.ValidationError{Field: "trackId", Cause: apperrors.ErrInvalidTrackID}
	}
	return nil
}

// Artifact is the MIDI produced for one request
type Artifact struct {
	TrackID string
	Profile midi.Profile
	Data    []byte
	Size    int
}

// Fetcher retrieves source audio
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*audio.Download, error)
}

// Config holds pipeline configuration
type Config struct {
	ModelPath string // empty uses the engine's bundled model
	Options   midi.Options
	Logger    *slog.Logger
	Progress  *progress.Reporter // nil outside the CLI
}

// DefaultConfig returns default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Options: midi.DefaultOptions(),
	}
}

// Generator runs download, transcription and output collection for a request
type Generator struct {
	store   *workspace.Store
	fetcher Fetcher
	engine  midi.Engine
	config  Config
	logger  *slog.Logger
}

// NewGenerator creates a generator writing transient files to store
func NewGenerator(store *workspace.Store, fetcher Fetcher, engine midi.Engine, cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Options == (midi.Options{}) {
		cfg.Options = midi.DefaultOptions()
	}
	return &Generator{
		store:   store,
		fetcher: fetcher,
		engine:  engine,
		config:  cfg,
		logger:  logger,
	}
}

// Generate produces the MIDI artifact for req. Transient files are removed
// before it returns, whatever the outcome; removal failures are only logged.
func (g *Generator) Generate(ctx context.Context, req Request) (*Artifact, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile := midi.ResolveQuality(string(req.Quality))
	log := g.logger.With(
		slog.String("track_id", req.TrackID),
		slog.String("quality", string(profile.Quality)),
	)
	report := g.config.Progress
	log.Info("processing track")

	var transient []string
	defer func() {
		if err := g.store.Remove(transient...); err != nil {
			log.Debug("cleanup failed", slog.Any("error", err))
		}
	}()

	// Stage 1: Download
	report.StartStage(progress.StageDownload)
	log.Info("downloading audio", slog.String("url", apperrors.RedactURL(req.AudioURL)))

	dl, err := g.fetcher.Fetch(ctx, req.AudioURL)
	if err != nil {
		return nil, err
	}

	audioPath, err := g.store.WriteAudio(req.TrackID, dl.Format.Ext(), dl.Data)
	if err != nil {
		return nil, fmt.Errorf("save audio: %w", err)
	}
	transient = append(transient, audioPath)
	log.Info("audio downloaded", slog.Int("bytes", len(dl.Data)), slog.String("format", string(dl.Format)))
	report.StageComplete("Downloaded %d bytes (%s)", len(dl.Data), dl.Format)

	// Stage 2: Transcription
	outputDir, err := g.store.PrepareOutput()
	if err != nil {
		return nil, err
	}

	report.StartStage(progress.StageTranscribe)
	report.Update("onset threshold %.2f, frame threshold %.2f", profile.OnsetThreshold, profile.FrameThreshold)
	log.Info("running basic pitch",
		slog.Float64("onset_threshold", profile.OnsetThreshold),
		slog.Float64("frame_threshold", profile.FrameThreshold),
	)

	// Transcription runs to completion even if the client goes away.
	err = g.engine.Transcribe(context.WithoutCancel(ctx), midi.Request{
		AudioPaths: []string{audioPath},
		OutputDir:  outputDir,
		ModelPath:  g.config.ModelPath,
		Profile:    profile,
		Options:    g.config.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	// Stage 3: Collect output
	report.StartStage(progress.StageCollect)

	midiPath, ok := midi.Locate(outputDir, req.TrackID)
	if !ok {
		return nil, &apperrors.GenerationError{TrackID: req.TrackID, OutputDir: outputDir}
	}
	transient = append(transient, midiPath)

	data, err := os.ReadFile(midiPath)
	if err != nil {
		return nil, fmt.Errorf("read midi: %w", err)
	}
	log.Info("MIDI generated", slog.Int("bytes", len(data)))
	report.StageComplete("MIDI generated: %d bytes", len(data))

	return &Artifact{
		TrackID: req.TrackID,
		Profile: profile,
		Data:    data,
		Size:    len(data),
	}, nil
}
