package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LocalRunner executes snippets with the host's own toolchains. Each
// run gets a scratch directory that is removed afterwards.
type LocalRunner struct{}

var _ Runner = (*LocalRunner)(nil)

// NewLocalRunner creates a runner backed by local interpreters.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Runtimes reports which language toolchains are on PATH.
func (r *LocalRunner) Runtimes() []Runtime {
	runtimes := make([]Runtime, 0, len(languageNames))
	for _, name := range languageNames {
		_, err := exec.LookPath(languages[name].command[0])
		runtimes = append(runtimes, Runtime{Language: name, Available: err == nil})
	}
	return runtimes
}

// Run writes the snippet to a scratch file and executes it under the
// run timeout, capping both output streams.
func (r *LocalRunner) Run(ctx context.Context, req Request) (*RunResult, error) {
	spec, ok := languages[strings.ToLower(req.Language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}

	dir, err := os.MkdirTemp("", "agentverse-run-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("failed to remove scratch dir", "dir", dir, "error", err)
		}
	}()

	srcPath := filepath.Join(dir, spec.fileName)
	if err := os.WriteFile(srcPath, []byte(req.Code), 0o600); err != nil {
		return nil, fmt.Errorf("write source file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, RunTimeout)
	defer cancel()

	args := append(append([]string{}, spec.command[1:]...), srcPath)
	cmd := exec.CommandContext(runCtx, spec.command[0], args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(req.Stdin)
	// Unblocks Wait when a killed child leaves pipe readers behind.
	cmd.WaitDelay = 2 * time.Second

	stdout := &capWriter{limit: OutputLimit}
	stderr := &capWriter{limit: OutputLimit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	runErr := cmd.Run()

	result := &RunResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  time.Since(start),
		Truncated: stdout.truncated || stderr.truncated,
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		slog.Warn("code run timed out", "language", req.Language, "timeout", RunTimeout)
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("run %s: %w", req.Language, runErr)
	}
	return result, nil
}
