// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestSetHomeDir(t *testing.T) {
	key := "HOME"
	if runtime.GOOS == "windows" {
		key = "USERPROFILE"
	}

	tmpDir := t.TempDir()
	original := os.Getenv(key)

	cleanup := SetHomeDir(t, tmpDir)
	if got := os.Getenv(key); got != tmpDir {
		t.Errorf("%s = %q, want %q", key, got, tmpDir)
	}

	cleanup()
	if got := os.Getenv(key); got != original {
		t.Errorf("after cleanup, %s = %q, want %q", key, got, original)
	}
}

func TestSetConfigHome(t *testing.T) {
	tmpDir := t.TempDir()

	got := SetConfigHome(t, tmpDir)
	want := filepath.Join(tmpDir, ".config")
	if got != want {
		t.Errorf("SetConfigHome() = %q, want %q", got, want)
	}
	if env := os.Getenv("XDG_CONFIG_HOME"); env != want {
		t.Errorf("XDG_CONFIG_HOME = %q, want %q", env, want)
	}
}

func TestMustSetenv_UnsetsNewVariable(t *testing.T) {
	const key = "OAGEN_TESTUTIL_PROBE"
	if _, ok := os.LookupEnv(key); ok {
		t.Skipf("%s already set", key)
	}

	cleanup := MustSetenv(t, key, "1")
	if os.Getenv(key) != "1" {
		t.Fatalf("%s not set", key)
	}
	cleanup()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s should be unset after cleanup", key)
	}
}

func TestMustWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	MustWriteFile(t, path, "content")
	if got := MustReadFile(t, path); got != "content" {
		t.Errorf("MustReadFile() = %q", got)
	}
}

func TestContainerParallelism(t *testing.T) {
	t.Cleanup(MustSetenv(t, "OAGEN_TEST_CONTAINER_PARALLEL", "5"))
	if got := containerParallelism(); got != 5 {
		t.Errorf("containerParallelism() = %d, want 5", got)
	}

	t.Cleanup(MustSetenv(t, "OAGEN_TEST_CONTAINER_PARALLEL", "zero"))
	if got := containerParallelism(); got < 1 || got > 2 {
		t.Errorf("containerParallelism() fallback = %d", got)
	}
}
