// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// EngineTypePodman selects the Podman CLI.
	EngineTypePodman EngineType = "podman"
	// EngineTypeDocker selects the Docker CLI.
	EngineTypeDocker EngineType = "docker"
)

// ErrEngineNotAvailable is the sentinel error wrapped by EngineNotAvailableError.
var ErrEngineNotAvailable = errors.New("container engine not available")

type (
	// Engine defines the container operations used by code generation.
	Engine interface {
		// Name returns the engine name (docker or podman).
		Name() string
		// Available checks if the engine is installed and its daemon reachable.
		Available() bool
		// Version returns the engine version.
		Version(ctx context.Context) (string, error)
		// ImageExists checks if an image is present locally.
		ImageExists(ctx context.Context, image string) (bool, error)
		// Pull downloads an image, retrying transient failures.
		Pull(ctx context.Context, opts PullOptions) error
		// Run runs a command in a new container.
		Run(ctx context.Context, opts RunOptions) (*RunResult, error)
		// Remove removes a container.
		Remove(ctx context.Context, containerID string, force bool) error
	}

	// EngineType identifies the container engine type.
	EngineType string

	// PullOptions contains options for pulling an image.
	PullOptions struct {
		Image string
		// Stdout receives the engine's progress output.
		Stdout io.Writer
		Stderr io.Writer
	}

	// VolumeMount is a bind mount from the host into the container.
	VolumeMount struct {
		HostPath      string
		ContainerPath string
		ReadOnly      bool
	}

	// RunOptions contains options for running a container.
	RunOptions struct {
		Image   string
		Command []string
		// WorkDir is the working directory inside the container.
		WorkDir string
		Env     map[string]string
		Volumes []VolumeMount
		// User runs the container process as "uid[:gid]".
		User string
		// Remove automatically removes the container after exit.
		Remove bool
		Name   string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		ContainerID string
		ExitCode    int
		// Error is set when the engine itself could not be executed.
		Error error
	}

	// EngineNotAvailableError is returned when no usable engine was found.
	// It wraps ErrEngineNotAvailable for errors.Is() compatibility.
	EngineNotAvailableError struct {
		Engine string
		Reason string
	}
)

func logger() *log.Logger {
	return log.Default().WithPrefix("container")
}

// ParseEngineType converts a configuration value into an EngineType.
func ParseEngineType(s string) (EngineType, error) {
	switch t := EngineType(strings.ToLower(strings.TrimSpace(s))); t {
	case EngineTypePodman, EngineTypeDocker:
		return t, nil
	default:
		return "", fmt.Errorf("unknown container engine type %q (expected podman or docker)", s)
	}
}

// String returns the volume mount in "host:container[:ro]" format.
func (v VolumeMount) String() string {
	s := v.HostPath + ":" + v.ContainerPath
	if v.ReadOnly {
		s += ":ro"
	}
	return s
}

// Error implements the error interface.
func (e *EngineNotAvailableError) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// Unwrap returns ErrEngineNotAvailable for errors.Is() compatibility.
func (e *EngineNotAvailableError) Unwrap() error { return ErrEngineNotAvailable }

// NewEngine creates a container engine of the preferred type, falling back to
// the other engine when the preferred one is unavailable.
func NewEngine(preferredType EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	var preferred, fallback Engine
	switch preferredType {
	case EngineTypePodman:
		preferred, fallback = NewPodmanEngine(opts...), NewDockerEngine(opts...)
	case EngineTypeDocker:
		preferred, fallback = NewDockerEngine(opts...), NewPodmanEngine(opts...)
	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}

	if preferred.Available() {
		return preferred, nil
	}
	if fallback.Available() {
		logger().Warn("preferred engine unavailable, falling back", "preferred", preferred.Name(), "using", fallback.Name())
		return fallback, nil
	}
	return nil, &EngineNotAvailableError{
		Engine: string(preferredType),
		Reason: fmt.Sprintf("%s is not installed or not accessible, and %s fallback is also not available",
			preferred.Name(), fallback.Name()),
	}
}

// AutoDetectEngine returns the first available engine, trying Podman first.
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	for _, engine := range []Engine{NewPodmanEngine(opts...), NewDockerEngine(opts...)} {
		if engine.Available() {
			return engine, nil
		}
	}
	return nil, &EngineNotAvailableError{
		Engine: "any",
		Reason: "no container engine (podman or docker) is available on this system",
	}
}
