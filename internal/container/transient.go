// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// transientMarkers are fragments of engine error output that indicate a
// failure worth retrying.
var transientMarkers = []string{
	// registry and network
	"Temporary failure resolving",
	"Could not resolve host",
	"connection timed out",
	"connection refused",
	"TLS handshake timeout",
	"i/o timeout",
	"unexpected EOF",
	"toomanyrequests",
	"503 Service Unavailable",
	// rootless Podman and OCI runtime races
	"ping_group_range",
	"OCI runtime error",
	// storage driver
	"error creating overlay mount",
	"error mounting layer",
}

// IsTransientError reports whether err is a container engine failure that may
// succeed on retry: network and registry hiccups during pulls, rootless Podman
// races, storage driver glitches and generic engine errors (exit code 125).
//
// Context cancellation and deadline errors are never transient.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 125 {
		return true
	}

	msg := err.Error()
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
