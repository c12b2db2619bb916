// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// SELinuxCheckFunc reports whether SELinux is enforcing on the host.
type SELinuxCheckFunc func() bool

// PodmanEngine implements the Engine interface using Podman CLI.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
// On Linux with SELinux enforcing, volume mounts are labeled with :z.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(SELinuxVolumeFormatter(isSELinuxEnabled)),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(path, allOpts...),
	}
}

// Name returns the engine name.
func (e *PodmanEngine) Name() string {
	return string(EngineTypePodman)
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists locally.
func (e *PodmanEngine) ImageExists(ctx context.Context, image string) (bool, error) {
	return e.imageExists(ctx, "image", "exists", image)
}

// SELinuxVolumeFormatter returns a formatter that appends the shared :z label
// to bind mounts when enabled reports true.
func SELinuxVolumeFormatter(enabled SELinuxCheckFunc) VolumeFormatFunc {
	return func(v VolumeMount) string {
		s := v.String()
		if !enabled() {
			return s
		}
		if v.ReadOnly {
			return s + ",z"
		}
		return s + ":z"
	}
}

func isSELinuxEnabled() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}
