package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Result holds command execution output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes Python modules with context support
type Runner struct {
	PythonPath string
}

// NewRunner creates a new command runner. An empty pythonPath prefers a
// virtual environment in the working directory over python3 on PATH.
func NewRunner(pythonPath string) *Runner {
	if pythonPath == "" {
		pythonPath = DefaultPython()
	}
	return &Runner{PythonPath: pythonPath}
}

// DefaultPython returns the interpreter used when none is configured
func DefaultPython() string {
	venvPython := filepath.Join(".venv", "bin", "python")
	if _, err := os.Stat(venvPython); err == nil {
		return venvPython
	}
	return "python3"
}

// RunModule executes a Python module with -m flag
func (r *Runner) RunModule(ctx context.Context, module string, args ...string) (*Result, error) {
	result, err := r.execute(ctx, r.PythonPath, append([]string{"-m", module}, args...)...)
	if err != nil {
		return result, fmt.Errorf("module %s failed: %w", module, err)
	}
	return result, nil
}

// execute runs a command and captures output
func (r *Runner) execute(ctx context.Context, name string, args ...string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command failed: %w", err)
	}

	return result, nil
}

// CheckPythonDependency verifies a Python package is installed
func (r *Runner) CheckPythonDependency(ctx context.Context, packageName string) error {
	result, err := r.execute(ctx, r.PythonPath, "-c", fmt.Sprintf("import %s", packageName))
	if err != nil {
		return fmt.Errorf("%s not installed: %s", packageName, result.Stderr)
	}
	return nil
}
