// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"oagen-cli/internal/config"
)

// newConfigCommand creates the `oagen config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage oagen configuration",
		Long: `Manage oagen configuration.

Configuration is stored in:
  - Linux: ~/.config/oagen/config.cue
  - macOS: ~/Library/Application Support/oagen/config.cue
  - Windows: %APPDATA%\oagen\config.cue

Environment variables override file values, e.g. OAGEN_GENERATOR_PULL=never
or OAGEN_MERGE_WRITE_MODE=sync.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.finish(showConfig(cmd.Context(), app))
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.finish(initConfig(app))
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.finish(showConfigPath(app))
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Output effective configuration as CUE",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := app.loadConfig(cmd.Context())
				if err != nil {
					return app.finish(err)
				}
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			},
		},
	)
	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := activeConfigFile(app)
	switch {
	case err != nil:
		return err
	case path == "":
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	default:
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("container_engine"), valueStyle.Render(cfg.ContainerEngine.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("generator"))
	fmt.Fprintf(w, "  image: %s\n", valueStyle.Render(cfg.Generator.Image.String()))
	fmt.Fprintf(w, "  pull: %s\n", valueStyle.Render(cfg.Generator.Pull.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("backup"))
	fmt.Fprintf(w, "  confirm: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Backup.Confirm)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("merge"))
	fmt.Fprintf(w, "  write_mode: %s\n", valueStyle.Render(cfg.Merge.WriteMode.String()))
	fmt.Fprintf(w, "  restore_on_failure: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Merge.RestoreOnFailure)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	return nil
}

// activeConfigFile returns the file configuration is read from, or "" when
// only defaults and environment variables apply.
func activeConfigFile(app *App) (string, error) {
	if app.cfgFile != "" {
		return app.cfgFile, nil
	}
	path, err := config.FilePath("")
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", nil
	}
	return path, nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", SubtitleStyle.Render("•"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, err := config.FilePath(cfgDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	if app.cfgFile != "" {
		fmt.Fprintf(app.stdout, "Override (--config): %s\n", app.cfgFile)
	}
	return nil
}
