// Package sandbox runs short untrusted code snippets with hard caps on
// wall-clock time and captured output.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"time"
)

const (
	// RunTimeout caps a single run's wall-clock time.
	RunTimeout = 30 * time.Second

	// OutputLimit caps the captured bytes per stream.
	OutputLimit = 1 << 20 // 1MB
)

// ErrUnsupportedLanguage reports a language outside the runtime table.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Request describes one code run.
type Request struct {
	Language string
	Code     string
	Stdin    string
}

// RunResult is the captured outcome of a run. Timed-out runs keep the
// partial output captured before the kill.
type RunResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
}

// Runtime describes one supported language.
type Runtime struct {
	Language  string `json:"language"`
	Available bool   `json:"available"`
}

// Runner executes code snippets.
type Runner interface {
	// Run executes the request. An error means the run could not be
	// attempted (unsupported language, backend trouble); code that ran
	// and failed is a RunResult with a nonzero exit code.
	Run(ctx context.Context, req Request) (*RunResult, error)

	// Runtimes lists the supported languages and their availability.
	Runtimes() []Runtime
}

// languageSpec maps a language to its source file name and the command
// that runs it. The source path is appended to the command.
type languageSpec struct {
	fileName string
	command  []string
}

var languages = map[string]languageSpec{
	"python":     {fileName: "main.py", command: []string{"python3"}},
	"javascript": {fileName: "main.js", command: []string{"node"}},
	"go":         {fileName: "main.go", command: []string{"go", "run"}},
	"bash":       {fileName: "main.sh", command: []string{"bash"}},
	"ruby":       {fileName: "main.rb", command: []string{"ruby"}},
}

// languageNames is the stable listing order for Runtimes.
var languageNames = []string{"python", "javascript", "go", "bash", "ruby"}

// capWriter keeps at most limit bytes and drops the rest. Write never
// fails, so a capped stream does not abort the producing process.
type capWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if remaining := w.limit - w.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			w.buf.Write(p[:remaining])
			w.truncated = true
		} else {
			w.buf.Write(p)
		}
	} else if len(p) > 0 {
		w.truncated = true
	}
	return len(p), nil
}

func (w *capWriter) String() string {
	return w.buf.String()
}
