package sandbox

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	// Resource limits for one run container.
	memoryLimitBytes = 256 * 1024 * 1024 // 256MB
	cpuQuota         = 50000             // 0.5 CPU
	pidsLimit        = 128

	workDir        = "/tmp"
	cleanupTimeout = 10 * time.Second
)

// DockerRunner executes each snippet in a fresh container with no
// network and hard resource limits. The image must ship every
// toolchain in the language table.
type DockerRunner struct {
	cli   *client.Client
	image string
}

var _ Runner = (*DockerRunner)(nil)

// NewDockerRunner creates a runner backed by the Docker API.
func NewDockerRunner(image string) (*DockerRunner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	slog.Info("docker sandbox initialized", "image", image)
	return &DockerRunner{cli: cli, image: image}, nil
}

// Runtimes lists the language table. The sandbox image is expected to
// carry all of them.
func (r *DockerRunner) Runtimes() []Runtime {
	runtimes := make([]Runtime, 0, len(languageNames))
	for _, name := range languageNames {
		runtimes = append(runtimes, Runtime{Language: name, Available: true})
	}
	return runtimes
}

// Run creates a container for the snippet, waits for it under the run
// timeout, then collects capped logs and removes the container.
func (r *DockerRunner) Run(ctx context.Context, req Request) (*RunResult, error) {
	spec, ok := languages[strings.ToLower(req.Language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, req.Language)
	}

	srcPath := workDir + "/" + spec.fileName
	cmd := append(append([]string{}, spec.command...), srcPath)

	config := &container.Config{
		Image:      r.image,
		Cmd:        cmd,
		WorkingDir: workDir,
		OpenStdin:  req.Stdin != "",
		StdinOnce:  req.Stdin != "",
	}
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Resources: container.Resources{
			Memory:    memoryLimitBytes,
			CPUQuota:  cpuQuota,
			PidsLimit: ptr(int64(pidsLimit)),
		},
	}

	resp, err := r.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("create run container: %w", err)
	}
	defer r.removeContainer(resp.ID)

	archive, err := sourceArchive(spec.fileName, req.Code)
	if err != nil {
		return nil, fmt.Errorf("build source archive: %w", err)
	}
	if err := r.cli.CopyToContainer(ctx, resp.ID, workDir, archive, container.CopyToContainerOptions{}); err != nil {
		return nil, fmt.Errorf("copy source into container: %w", err)
	}

	// Stdin is fed through a hijacked attach opened before start so the
	// process never races ahead of its input.
	var sendStdin func()
	if req.Stdin != "" {
		attachResp, err := r.cli.ContainerAttach(ctx, resp.ID, container.AttachOptions{
			Stream: true,
			Stdin:  true,
		})
		if err != nil {
			return nil, fmt.Errorf("attach stdin to container %s: %w", resp.ID, err)
		}
		defer attachResp.Close()
		sendStdin = func() {
			if _, err := io.WriteString(attachResp.Conn, req.Stdin); err != nil {
				slog.Warn("failed to write run stdin", "error", err)
			}
			if err := attachResp.CloseWrite(); err != nil {
				slog.Debug("failed to close stdin write side", "error", err)
			}
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, RunTimeout)
	defer cancel()

	start := time.Now()
	if err := r.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start run container: %w", err)
	}
	if sendStdin != nil {
		sendStdin()
	}

	result := &RunResult{}
	statusCh, errCh := r.cli.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		result.ExitCode = int(status.StatusCode)
	case err := <-errCh:
		if !errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("wait for run container: %w", err)
		}
		slog.Warn("code run timed out", "language", req.Language, "timeout", RunTimeout)
		result.TimedOut = true
		result.ExitCode = -1
		if killErr := r.cli.ContainerKill(ctx, resp.ID, "SIGKILL"); killErr != nil && !errdefs.IsNotFound(killErr) {
			slog.Warn("failed to kill timed out container", "container_id", resp.ID, "error", killErr)
		}
	}
	result.Duration = time.Since(start)

	stdout := &capWriter{limit: OutputLimit}
	stderr := &capWriter{limit: OutputLimit}
	if err := r.collectLogs(ctx, resp.ID, stdout, stderr); err != nil {
		slog.Warn("failed to collect run logs", "container_id", resp.ID, "error", err)
	}
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.Truncated = stdout.truncated || stderr.truncated

	return result, nil
}

func (r *DockerRunner) collectLogs(ctx context.Context, containerID string, stdout, stderr io.Writer) error {
	logs, err := r.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return fmt.Errorf("fetch container logs: %w", err)
	}
	defer func() {
		if closeErr := logs.Close(); closeErr != nil {
			slog.Debug("failed to close log stream", "error", closeErr)
		}
	}()

	// The stream is multiplexed when the container runs without a TTY.
	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil {
		return fmt.Errorf("demultiplex container logs: %w", err)
	}
	return nil
}

// removeContainer force-removes a run container. It runs on its own
// context so cleanup survives request cancellation.
func (r *DockerRunner) removeContainer(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	err := r.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
	if err == nil || errdefs.IsNotFound(err) {
		return
	}
	if strings.Contains(err.Error(), "is already in progress") {
		return
	}
	slog.Warn("failed to remove run container", "container_id", containerID, "error", err)
}

// sourceArchive wraps a single source file in the tar stream
// CopyToContainer expects.
func sourceArchive(name, content string) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    int64(len(content)),
		ModTime: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("write tar header: %w", err)
	}
	if _, err := io.WriteString(tw, content); err != nil {
		return nil, fmt.Errorf("write tar body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finalize tar: %w", err)
	}
	return &buf, nil
}

func ptr[T any](v T) *T {
	return &v
}
