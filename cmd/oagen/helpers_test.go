// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"oagen-cli/internal/backup"
	"oagen-cli/internal/config"
	"oagen-cli/internal/container"
)

type (
	stubConfig struct {
		cfg *config.Config
		err error
	}

	// fakeEngine simulates the generator by writing files into the folder
	// mounted at /out.
	fakeEngine struct {
		mu       sync.Mutex
		present  bool
		exitCode int
		files    map[string]string
		runs     []container.RunOptions
		pulls    int
		// afterRun, when set, is called with the number of runs so far.
		afterRun func(runs int)
	}

	cliResult struct {
		stdout string
		stderr string
		err    error
	}
)

func (s stubConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cfg == nil {
		return config.DefaultConfig(), nil
	}
	cfg := *s.cfg
	return &cfg, nil
}

func (e *fakeEngine) Name() string { return "podman" }

func (e *fakeEngine) Available() bool { return true }

func (e *fakeEngine) Version(context.Context) (string, error) { return "5.0.0", nil }

func (e *fakeEngine) Remove(context.Context, string, bool) error { return nil }

func (e *fakeEngine) ImageExists(context.Context, string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.present, nil
}

func (e *fakeEngine) Pull(context.Context, container.PullOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pulls++
	e.present = true
	return nil
}

func (e *fakeEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	e.mu.Lock()
	e.runs = append(e.runs, opts)
	n := len(e.runs)
	e.mu.Unlock()
	if e.afterRun != nil {
		defer e.afterRun(n)
	}

	if e.exitCode != 0 {
		return &container.RunResult{ExitCode: e.exitCode}, nil
	}
	for _, v := range opts.Volumes {
		if v.ContainerPath != "/out" {
			continue
		}
		for name, content := range e.files {
			if err := os.WriteFile(filepath.Join(v.HostPath, name), []byte(content), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return &container.RunResult{}, nil
}

func defaultConfigWith(mod func(*config.Config)) *config.Config {
	cfg := config.DefaultConfig()
	mod(cfg)
	return cfg
}

func engineFactory(e container.Engine) EngineFactory {
	return func(container.EngineType) (container.Engine, error) { return e, nil }
}

func answer(ok bool) backup.Confirmer {
	return backup.ConfirmFunc(func(context.Context, string) (bool, error) { return ok, nil })
}

// runCLI executes the command tree with args and captures its output.
// Config defaults to stubConfig and Confirmer to a "no" answer.
func runCLI(t *testing.T, deps Dependencies, args ...string) cliResult {
	t.Helper()
	return runCLIContext(t, t.Context(), deps, args...)
}

func runCLIContext(t *testing.T, ctx context.Context, deps Dependencies, args ...string) cliResult {
	t.Helper()
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	var stdout, stderr bytes.Buffer
	deps.Stdout = &stdout
	deps.Stderr = &stderr
	if deps.Config == nil {
		deps.Config = stubConfig{}
	}
	if deps.Confirmer == nil {
		deps.Confirmer = answer(false)
	}

	root := NewRootCommand(NewApp(deps))
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(ctx)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
