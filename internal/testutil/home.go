// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home variable (USERPROFILE on Windows,
// HOME elsewhere) at dir and returns a cleanup restoring the original value.
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}

// SetConfigHome isolates configuration lookups under dir: the home
// directory becomes dir and XDG_CONFIG_HOME becomes dir/.config. It returns
// the config home.
func SetConfigHome(t testing.TB, dir string) string {
	t.Helper()
	configHome := filepath.Join(dir, ".config")
	t.Cleanup(SetHomeDir(t, dir))
	t.Cleanup(MustSetenv(t, "XDG_CONFIG_HOME", configHome))
	return configHome
}
