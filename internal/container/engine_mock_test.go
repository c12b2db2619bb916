// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type (
	// MockCommandRecorder captures the commands an engine creates and answers
	// them through TestHelperProcess.
	MockCommandRecorder struct {
		mu sync.Mutex
		// Invocations records each command in creation order.
		Invocations []MockInvocation
		// ExitCode is returned when ExitCodes has no entry for an invocation.
		ExitCode int
		// ExitCodes overrides the exit code per invocation index.
		ExitCodes []int
		// Stdout is written by every helper process.
		Stdout string
		// Stderr is written by every helper process.
		Stderr string
	}

	// MockInvocation represents a single created command.
	MockInvocation struct {
		Name string
		Args []string
	}
)

// CommandFunc returns an ExecCommandFunc that records the invocation and
// re-executes the test binary as TestHelperProcess.
func (m *MockCommandRecorder) CommandFunc() ExecCommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		idx := len(m.Invocations)
		m.Invocations = append(m.Invocations, MockInvocation{Name: name, Args: args})
		code := m.ExitCode
		if idx < len(m.ExitCodes) {
			code = m.ExitCodes[idx]
		}
		m.mu.Unlock()

		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			"GO_HELPER_EXIT_CODE=" + strconv.Itoa(code),
			"GO_HELPER_STDOUT=" + m.Stdout,
			"GO_HELPER_STDERR=" + m.Stderr,
		}
		return cmd
	}
}

// LastArgs returns the arguments from the most recent invocation.
func (m *MockCommandRecorder) LastArgs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Invocations) == 0 {
		return nil
	}
	return m.Invocations[len(m.Invocations)-1].Args
}

// AssertInvocationCount verifies the number of created commands.
func (m *MockCommandRecorder) AssertInvocationCount(t *testing.T, expected int) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Invocations) != expected {
		t.Errorf("expected %d invocations, got %d", expected, len(m.Invocations))
	}
}

// AssertLastArgs verifies the full argument list of the last invocation.
func (m *MockCommandRecorder) AssertLastArgs(t *testing.T, expected ...string) {
	t.Helper()
	got := strings.Join(m.LastArgs(), " ")
	if want := strings.Join(expected, " "); got != want {
		t.Errorf("expected args %q, got %q", want, got)
	}
}

// newMockDocker returns a Docker engine wired to a fresh recorder.
func newMockDocker(opts ...BaseCLIEngineOption) (*DockerEngine, *MockCommandRecorder) {
	recorder := &MockCommandRecorder{}
	all := append([]BaseCLIEngineOption{
		WithBinaryPath("/usr/bin/docker"),
		WithExecCommand(recorder.CommandFunc()),
		WithPullRetry(DefaultPullAttempts, time.Millisecond),
	}, opts...)
	return NewDockerEngine(all...), recorder
}

// newMockPodman returns a Podman engine wired to a fresh recorder, with
// SELinux labeling disabled.
func newMockPodman(opts ...BaseCLIEngineOption) (*PodmanEngine, *MockCommandRecorder) {
	recorder := &MockCommandRecorder{}
	all := append([]BaseCLIEngineOption{
		WithBinaryPath("/usr/bin/podman"),
		WithExecCommand(recorder.CommandFunc()),
		WithVolumeFormatter(VolumeMount.String),
		WithPullRetry(DefaultPullAttempts, time.Millisecond),
	}, opts...)
	return NewPodmanEngine(all...), recorder
}

// TestHelperProcess is used by the mock to simulate command execution.
// It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(exitCode)
}
