// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"oagen-cli/internal/backup"
)

// newBackupCommand creates the `oagen backup` command.
func newBackupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dir> <file>",
		Short: "Move a file aside to a unique -backup name",
		Long: `Move <dir>/<file> aside to a unique "-backup" name, e.g. pom.xml to
pom-backup.xml, or pom-backup-1.xml when that is taken. Nothing happens when
the file does not exist.

The question asked before renaming is controlled by backup.confirm and
skipped with --yes.`,
		Example: `  oagen backup ./server pom.xml --yes`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.finish(runBackup(cmd.Context(), app, args[0], args[1]))
		},
	}
}

func runBackup(ctx context.Context, app *App, dir, file string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	ext := filepath.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	name, err := backup.FileIfExists(ctx, dir, stem, ext, app.confirmer(cfg.Backup.Confirm))
	if err != nil {
		return err
	}

	if name == "" {
		fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("Nothing to back up:"), filepath.Join(dir, file))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Backed up %s to %s\n", SuccessStyle.Render("✓"), file, CmdStyle.Render(name))
	return nil
}
