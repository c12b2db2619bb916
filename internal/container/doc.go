// SPDX-License-Identifier: MPL-2.0

// Package container runs the code generator image through a container engine
// CLI (Docker or Podman).
//
// The Engine interface covers what generation needs: availability and
// version probes, image existence, image pull, run with bind mounts and
// container removal. DockerEngine and PodmanEngine embed BaseCLIEngine, which
// builds argument lists and executes them through an injectable
// ExecCommandFunc so tests can substitute a helper process.
//
// NewEngine(EngineType) falls back to the other engine when the preferred one
// is unavailable; AutoDetectEngine tries Podman first.
package container
