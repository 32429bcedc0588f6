package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dygy/midi-service/internal/audio"
	"github.com/dygy/midi-service/internal/config"
	apperrors "github.com/dygy/midi-service/internal/errors"
	"github.com/dygy/midi-service/internal/exec"
	"github.com/dygy/midi-service/internal/midi"
	"github.com/dygy/midi-service/internal/observability"
	"github.com/dygy/midi-service/internal/pipeline"
	"github.com/dygy/midi-service/internal/progress"
	"github.com/dygy/midi-service/internal/server"
	"github.com/dygy/midi-service/internal/workspace"
)

// version is set via ldflags during build
var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midi-service",
	Short: "Transcribe remote audio files to MIDI with Basic Pitch",
	Long: `midi-service downloads an audio file, runs Spotify's Basic Pitch
model over it and returns the resulting MIDI file.

Pipeline: audio URL → download → Basic Pitch → MIDI`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		c, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("temp-dir") {
			c.TempDir = tempDir
		}
		cfg = c
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service",
	Long: `Start the HTTP service exposing /health, /generate-midi and
/generate-midi-async.

Example:
  midi-service serve --port 5000`,
	RunE: runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Transcribe one audio URL to a MIDI file",
	Long: `Run the same pipeline as POST /generate-midi once and write the
result to disk.

Examples:
  midi-service generate --url https://cdn.example.com/song.mp3 --track-id song
  midi-service generate -u https://cdn.example.com/song.mp3 -t song -q high -o riff.mid`,
	RunE: runGenerate,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the Basic Pitch Python package is installed",
	RunE:  runCheck,
}

var (
	cfg config.Config

	port     int
	tempDir  string
	audioURL string
	trackID  string
	quality  string
	output   string
	verbose  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().StringVar(&tempDir, "temp-dir", "", "Working directory for transient files (overrides TEMP_DIR)")

	serveCmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on (overrides PORT)")

	generateCmd.Flags().StringVarP(&audioURL, "url", "u", "", "Audio file URL")
	generateCmd.Flags().StringVarP(&trackID, "track-id", "t", "", "Track identifier used for file names")
	generateCmd.Flags().StringVarP(&quality, "quality", "q", string(midi.DefaultQuality), "Quality tier (fast, standard, high)")
	generateCmd.Flags().StringVarP(&output, "output", "o", "", "Output MIDI file (default: <track-id>.mid)")
	generateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	generateCmd.MarkFlagRequired("url")
	generateCmd.MarkFlagRequired("track-id")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newGenerator(pcfg pipeline.Config) *pipeline.Generator {
	runner := exec.NewRunner(cfg.PythonPath)
	pcfg.ModelPath = cfg.ModelPath
	return pipeline.NewGenerator(
		workspace.New(cfg.TempDir),
		audio.NewDownloader(audio.DownloadTimeout),
		midi.NewBasicPitch(runner),
		pcfg,
	)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	logger := newLogger()

	flush, enabled, err := observability.InitSentry(cfg, version)
	if err != nil {
		logger.Warn("sentry disabled", slog.Any("error", err))
	} else if enabled {
		logger.Info("sentry initialized", slog.String("environment", cfg.Environment))
	}
	defer flush()

	// A missing engine is logged, not fatal: /health must keep answering.
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	if err := exec.NewRunner(cfg.PythonPath).CheckPythonDependency(ctx, "basic_pitch"); err != nil {
		logger.Warn("transcription engine unavailable", slog.Any("error", err))
	}
	cancel()

	pcfg := pipeline.DefaultConfig()
	pcfg.Logger = logger
	srv := server.New(cfg, newGenerator(pcfg), logger)
	return srv.Run()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	reporter := progress.NewReporter(os.Stdout, verbose)

	pcfg := pipeline.DefaultConfig()
	pcfg.Progress = reporter
	if verbose {
		pcfg.Logger = newLogger()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	artifact, err := newGenerator(pcfg).Generate(ctx, pipeline.Request{
		AudioURL: audioURL,
		TrackID:  trackID,
		Quality:  pipeline.Quality(quality),
	})
	if err != nil {
		reporter.Error(err)
		return err
	}

	outPath := output
	if outPath == "" {
		outPath = trackID + ".mid"
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, artifact.Data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	reporter.Done(outPath)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	runner := exec.NewRunner(cfg.PythonPath)
	if err := runner.CheckPythonDependency(cmd.Context(), "basic_pitch"); err != nil {
		return apperrors.NewProcessError("python", "dependency_check", 1, err.Error(), apperrors.ErrToolNotInstalled)
	}
	fmt.Printf("basic_pitch available via %s\n", runner.PythonPath)
	return nil
}
