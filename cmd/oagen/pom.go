// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"oagen-cli/internal/pom"
)

// newPomCommand creates the `oagen pom` command tree.
func newPomCommand(app *App) *cobra.Command {
	pomCmd := &cobra.Command{
		Use:   "pom",
		Short: "Merge and inspect Maven build descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var (
		original string
		sync     bool
	)
	mergeCmd := &cobra.Command{
		Use:   "merge <dir>",
		Short: "Merge the generated pom.xml in <dir> into a previous descriptor",
		Long: `Merge the generated pom.xml in <dir> into a previous descriptor.

The generated pom.xml is moved aside to pom-generated.xml (or the next free
pom-generated-N.xml). Properties, dependencies and build plugins it declares
that the original lacks are appended to the original, which is then written
to pom.xml. Entries of the original always win.`,
		Example: `  oagen pom merge ./server --original pom-backup.xml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.finish(runPomMerge(cmd.Context(), app, args[0], original, sync))
		},
	}
	mergeCmd.Flags().StringVar(&original, "original", "", "previous descriptor, relative to <dir> or absolute (required)")
	mergeCmd.Flags().BoolVar(&sync, "sync", false, "wait for the merged descriptor to be written (overrides merge.write_mode)")
	_ = mergeCmd.MarkFlagRequired("original")

	var asJSON bool
	showCmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a descriptor as oagen will write it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.finish(runPomShow(app, args[0], asJSON))
		},
	}
	showCmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed tree as JSON")

	pomCmd.AddCommand(mergeCmd, showCmd)
	return pomCmd
}

func runPomMerge(ctx context.Context, app *App, dir, original string, sync bool) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	rec, err := reconciler(cfg, sync)
	if err != nil {
		return err
	}

	res, err := rec.Reconcile(ctx, dir, original)
	if err != nil {
		return err
	}
	if err := res.Wait(); err != nil {
		return err
	}
	printReconciled(app, original, res)
	return nil
}

func runPomShow(app *App, path string, asJSON bool) error {
	opts := pom.DefaultFormatOptions()
	doc, err := pom.ParseFile(path, opts)
	if err != nil {
		return err
	}

	if !asJSON {
		out, err := pom.Render(doc, opts)
		if err != nil {
			return err
		}
		_, err = app.stdout.Write(out)
		return err
	}
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc.Map(opts)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
