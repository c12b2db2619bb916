// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"oagen-cli/internal/backup"
	"oagen-cli/internal/config"
	"oagen-cli/internal/container"
	"oagen-cli/internal/generator"
	"oagen-cli/internal/pom"
	"oagen-cli/internal/tui"
)

type (
	// EngineFactory creates the container engine for a configured engine type.
	EngineFactory func(preferred container.EngineType) (container.Engine, error)

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reads global flag state from it.
	App struct {
		Config    ConfigProvider
		NewEngine EngineFactory
		// Confirmer answers prompts when --yes is not given.
		Confirmer backup.Confirmer
		stdout    io.Writer
		stderr    io.Writer

		verbose     bool
		cfgFile     string
		yes         bool
		colorScheme string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		NewEngine EngineFactory
		Confirmer backup.Confirmer
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewEngine == nil {
		deps.NewEngine = func(preferred container.EngineType) (container.Engine, error) {
			return container.NewEngine(preferred)
		}
	}
	if deps.Confirmer == nil {
		deps.Confirmer = tui.NewPrompter()
	}

	return &App{
		Config:    deps.Config,
		NewEngine: deps.NewEngine,
		Confirmer: deps.Confirmer,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
}

// loadConfig loads configuration honoring --config and applies ui.verbose
// when --verbose was not given.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return nil, err
	}
	a.colorScheme = string(cfg.UI.ColorScheme)
	if cfg.UI.Verbose && !a.verbose {
		a.verbose = true
		a.configureLogging()
	}
	return cfg, nil
}

// configureLogging routes component loggers to stderr, at debug level in
// verbose mode.
func (a *App) configureLogging() {
	log.SetOutput(a.stderr)
	if a.verbose {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}

// confirmer returns the prompt used for a confirmation the user may
// disable in configuration (enabled false skips the question).
func (a *App) confirmer(enabled bool) backup.Confirmer {
	switch {
	case a.yes:
		return tui.AutoConfirm
	case !enabled:
		return nil
	default:
		return a.Confirmer
	}
}

// reconciler builds a pom.Reconciler from configuration. sync forces
// WriteSync regardless of merge.write_mode.
func reconciler(cfg *config.Config, sync bool) (*pom.Reconciler, error) {
	mode, err := pom.ParseWriteMode(string(cfg.Merge.WriteMode))
	if err != nil {
		return nil, err
	}
	if sync {
		mode = pom.WriteSync
	}
	return pom.NewReconciler(
		pom.WithWriteMode(mode),
		pom.WithRestoreOnFailure(cfg.Merge.RestoreOnFailure),
	), nil
}

// newWorkflow resolves the container engine and builds a generator workflow
// from configuration.
func (a *App) newWorkflow(cfg *config.Config) (*generator.Workflow, error) {
	engineType, err := container.ParseEngineType(string(cfg.ContainerEngine))
	if err != nil {
		return nil, err
	}
	engine, err := a.NewEngine(engineType)
	if err != nil {
		return nil, err
	}
	pull, err := generator.ParsePullPolicy(string(cfg.Generator.Pull))
	if err != nil {
		return nil, err
	}
	// Descriptor writes are waited on before the command returns, so async
	// mode still finishes before exit.
	rec, err := reconciler(cfg, false)
	if err != nil {
		return nil, err
	}

	return generator.New(engine,
		generator.WithImage(string(cfg.Generator.Image)),
		generator.WithPullPolicy(pull),
		generator.WithUser(generator.HostUser(engine)),
		generator.WithPullConfirmer(a.confirmer(true)),
		generator.WithOverwriteConfirmer(a.confirmer(true)),
		generator.WithBackupConfirmer(a.confirmer(cfg.Backup.Confirm)),
		generator.WithReconciler(rec),
		generator.WithProgress(func(msg string) {
			fmt.Fprintln(a.stderr, VerboseStyle.Render(msg))
		}),
		generator.WithPullOutput(a.stderr),
	), nil
}
