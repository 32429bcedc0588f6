// Package miditest provides an in-process Engine for tests.
package miditest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dygy/midi-service/internal/midi"
)

// Fixture is a minimal single-track Standard MIDI File
var Fixture = []byte{
	'M', 'T', 'h', 'd', 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x01, 0x01, 0xE0,
	'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x0C,
	0x00, 0x90, 0x3C, 0x64, // note on C4
	0x60, 0x80, 0x3C, 0x00, // note off after 96 ticks
	0x00, 0xFF, 0x2F, 0x00, // end of track
}

// Engine deposits Output into the request's output directory.
//
// FileName selects the written name; empty uses the Basic Pitch
// convention. SkipOutput writes nothing, Err fails the call.
type Engine struct {
	Output     []byte
	FileName   string
	SkipOutput bool
	Err        error

	mu       sync.Mutex
	requests []midi.Request
}

// Transcribe records req and writes the configured output
func (e *Engine) Transcribe(_ context.Context, req midi.Request) error {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()

	if e.Err != nil {
		return e.Err
	}
	if e.SkipOutput {
		return nil
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return err
	}
	output := e.Output
	if output == nil {
		output = Fixture
	}
	for _, audioPath := range req.AudioPaths {
		name := e.FileName
		if name == "" {
			stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
			name = midi.OutputName(stem)
		}
		if err := os.WriteFile(filepath.Join(req.OutputDir, name), output, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Requests returns every request seen so far
func (e *Engine) Requests() []midi.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]midi.Request(nil), e.requests...)
}

// Calls returns how many times Transcribe ran
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}
