// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultPullAttempts is how many times Pull tries before giving up.
	DefaultPullAttempts = 3
	// DefaultPullBackoff is the delay before the first pull retry; it doubles
	// on every further retry.
	DefaultPullBackoff = 2 * time.Second
)

// ErrPullFailed is the sentinel error wrapped by PullError.
var ErrPullFailed = errors.New("image pull failed")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// Tests inject a helper-process implementation through WithExecCommand.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// VolumeFormatFunc formats a volume mount for the -v flag.
	VolumeFormatFunc func(volume VolumeMount) string

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the implementation shared by CLI-based engines.
	// Run, Pull and Remove are identical for Docker and Podman and live here;
	// Name, Available, Version and ImageExists stay on the concrete types.
	BaseCLIEngine struct {
		name            string
		binaryPath      string
		execCommand     ExecCommandFunc
		volumeFormatter VolumeFormatFunc
		pullAttempts    int
		pullBackoff     time.Duration
	}

	// PullError is returned when an image could not be pulled.
	// It wraps ErrPullFailed for errors.Is() compatibility.
	PullError struct {
		Engine string
		Image  string
		// Stderr is the trimmed error output of the engine.
		Stderr string
		Err    error
	}
)

// Error implements the error interface.
func (e *PullError) Error() string {
	msg := fmt.Sprintf("%s pull %s: %v", e.Engine, e.Image, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns ErrPullFailed and the underlying cause.
func (e *PullError) Unwrap() []error { return []error{ErrPullFailed, e.Err} }

// WithName sets the engine name used in error messages.
func WithName(name string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.name = name }
}

// WithBinaryPath overrides the engine binary found on PATH.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.binaryPath = path }
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.execCommand = fn }
}

// WithVolumeFormatter sets a custom volume formatter function.
// Podman uses this to add SELinux labels on Linux.
func WithVolumeFormatter(fn VolumeFormatFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.volumeFormatter = fn }
}

// WithPullRetry sets the number of pull attempts and the initial backoff.
func WithPullRetry(attempts int, backoff time.Duration) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		e.pullAttempts = max(attempts, 1)
		e.pullBackoff = backoff
	}
}

// NewBaseCLIEngine creates a new base engine with the given binary path.
func NewBaseCLIEngine(binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		binaryPath:      binaryPath,
		execCommand:     exec.CommandContext,
		volumeFormatter: VolumeMount.String,
		pullAttempts:    DefaultPullAttempts,
		pullBackoff:     DefaultPullBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string {
	return e.binaryPath
}

// RunArgs constructs arguments for a container run command.
//
// Generated command: <binary> run [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(opts RunOptions) []string {
	args := []string{"run"}

	if opts.Remove {
		args = append(args, "--rm")
	}
	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}
	if opts.WorkDir != "" {
		args = append(args, "-w", opts.WorkDir)
	}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	if opts.Stdin != nil {
		args = append(args, "-i")
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}

	for _, v := range opts.Volumes {
		args = append(args, "-v", e.volumeFormatter(v))
	}

	args = append(args, opts.Image)
	return append(args, opts.Command...)
}

// PullArgs constructs arguments for an image pull command.
func (e *BaseCLIEngine) PullArgs(image string) []string {
	return []string{"pull", image}
}

// RemoveArgs constructs arguments for a container remove command.
func (e *BaseCLIEngine) RemoveArgs(containerID string, force bool) []string {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	return append(args, containerID)
}

// RunCommandStatus executes a command and returns only the error status.
func (e *BaseCLIEngine) RunCommandStatus(ctx context.Context, args ...string) error {
	cmd := e.CreateCommand(ctx, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return nil
}

// RunCommandWithOutput executes a command with stdout captured to a buffer.
func (e *BaseCLIEngine) RunCommandWithOutput(ctx context.Context, args ...string) (string, error) {
	cmd := e.CreateCommand(ctx, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
	}
	return out.String(), nil
}

// CreateCommand creates an exec.Cmd for the given arguments.
func (e *BaseCLIEngine) CreateCommand(ctx context.Context, args ...string) *exec.Cmd {
	return e.execCommand(ctx, e.binaryPath, args...)
}

// Run runs a command in a new container. A non-zero container exit is
// reported through RunResult.ExitCode, not as an error.
func (e *BaseCLIEngine) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	args := e.RunArgs(opts)
	logger().Debug("run", "engine", e.name, "image", opts.Image, "args", args)

	cmd := e.CreateCommand(ctx, args...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	result := &RunResult{ContainerID: opts.Name}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}
	return result, nil
}

// Pull pulls an image, retrying transient engine failures with exponential
// backoff.
func (e *BaseCLIEngine) Pull(ctx context.Context, opts PullOptions) error {
	args := e.PullArgs(opts.Image)

	return RetryWithBackoff(ctx, e.pullAttempts, e.pullBackoff, func(attempt int) (bool, error) {
		var stderr bytes.Buffer
		cmd := e.CreateCommand(ctx, args...)
		cmd.Stdout = opts.Stdout
		cmd.Stderr = &stderr
		if opts.Stderr != nil {
			cmd.Stderr = io.MultiWriter(&stderr, opts.Stderr)
		}

		err := cmd.Run()
		if err == nil {
			return false, nil
		}
		pullErr := &PullError{
			Engine: e.name,
			Image:  opts.Image,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
		retry := IsTransientError(pullErr)
		if retry {
			logger().Warn("pull failed, retrying", "image", opts.Image, "attempt", attempt+1, "err", err)
		}
		return retry, pullErr
	})
}

// Remove removes a container.
func (e *BaseCLIEngine) Remove(ctx context.Context, containerID string, force bool) error {
	return e.RunCommandStatus(ctx, e.RemoveArgs(containerID, force)...)
}

// imageExists runs a probe command whose exit status answers whether an image
// is present. A non-zero exit means absent; failing to run the engine at all
// is an error.
func (e *BaseCLIEngine) imageExists(ctx context.Context, args ...string) (bool, error) {
	err := e.CreateCommand(ctx, args...).Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("command %s %v failed: %w", e.binaryPath, args, err)
}
