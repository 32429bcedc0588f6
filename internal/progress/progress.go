package progress

import (
	"fmt"
	"io"
	"time"
)

// Stage represents a processing stage
type Stage struct {
	Number      int
	Total       int
	Name        string
	Description string
}

// Predefined stages of a single generation
var (
	StageDownload   = Stage{1, 3, "download", "Downloading audio..."}
	StageTranscribe = Stage{2, 3, "transcribe", "Transcribing audio to MIDI... (this may take a moment)"}
	StageCollect    = Stage{3, 3, "collect", "Collecting MIDI output..."}
)

// Reporter handles CLI progress output. A nil *Reporter discards everything.
type Reporter struct {
	out       io.Writer
	startTime time.Time
	verbose   bool
}

// NewReporter creates a new progress reporter
func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:       out,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// StartStage announces the beginning of a processing stage
func (r *Reporter) StartStage(stage Stage) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "[%d/%d] %s\n", stage.Number, stage.Total, stage.Description)
}

// Update shows a sub-progress message within a stage
func (r *Reporter) Update(format string, args ...any) {
	if r == nil || !r.verbose {
		return
	}
	fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
}

// StageComplete shows completion message for a stage
func (r *Reporter) StageComplete(format string, args ...any) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "       %s\n", fmt.Sprintf(format, args...))
}

// Done announces successful completion
func (r *Reporter) Done(outputPath string) {
	if r == nil {
		return
	}
	elapsed := time.Since(r.startTime)
	fmt.Fprintln(r.out, "Done! MIDI generated successfully.")
	if outputPath != "" {
		fmt.Fprintf(r.out, "Output saved to: %s\n", outputPath)
	}
	fmt.Fprintf(r.out, "Completed in %.1f seconds\n", elapsed.Seconds())
}

// Error announces an error
func (r *Reporter) Error(err error) {
	if r == nil {
		return
	}
	fmt.Fprintf(r.out, "Error: %s\n", err)
}
