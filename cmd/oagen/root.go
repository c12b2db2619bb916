// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the oagen command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oagen",
		Short: "Generate OpenAPI clients, servers and docs in a container",
		Long: TitleStyle.Render("oagen") + SubtitleStyle.Render(" - OpenAPI code generation with build descriptor reconciliation") + `

oagen runs openapi-generator inside Podman or Docker. When Java code is
regenerated into a project that already has a pom.xml, the previous
descriptor is backed up and merged with the generated one so that your
dependencies, plugins and properties survive.

` + SubtitleStyle.Render("Examples:") + `
  oagen generate server --language java --generator spring
  oagen generate client --language python --output ./client
  oagen generate html --definition api/openapi.yaml
  oagen pom merge ./server --original pom-backup.xml
  oagen catalog server
  oagen config show`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.configureLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.config/oagen/config.cue)")
	rootCmd.PersistentFlags().BoolVarP(&app.yes, "yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(
		newGenerateCommand(app),
		newPomCommand(app),
		newBackupCommand(app),
		newCatalogCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App, runs the command tree and exits with
// the resulting status. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(handleError),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
