// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"oagen-cli/internal/generator"
	"oagen-cli/internal/pom"
	"oagen-cli/internal/watch"
)

const docsFolder = "docs"

// generateOptions holds the flags of one generate subcommand.
type generateOptions struct {
	definition    string
	project       string
	output        string
	generatorType string
	language      string
	list          bool
	watch         bool
}

// newGenerateCommand creates the `oagen generate` command tree.
func newGenerateCommand(app *App) *cobra.Command {
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code or documentation from an OpenAPI definition",
		Long: `Generate code or documentation from an OpenAPI definition.

The definition's project folder is mounted read-only into the generator
container and the output folder receives the generated files. For Java
clients and servers an existing pom.xml in the output folder is backed up
and merged with the generated one afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	genCmd.AddCommand(
		newGenerateKindCommand(app, generator.KindServer, "Generate a server stub"),
		newGenerateKindCommand(app, generator.KindClient, "Generate a client library"),
		newGenerateKindCommand(app, generator.KindHTML, "Generate HTML documentation"),
	)
	return genCmd
}

func newGenerateKindCommand(app *App, kind generator.Kind, short string) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return app.finish(listGenerateInputs(app, kind, opts))
			}
			if opts.watch {
				return app.finish(watchGenerate(cmd.Context(), app, kind, opts))
			}
			return app.finish(runGenerate(cmd.Context(), app, kind, opts))
		},
	}

	cmd.Flags().StringVarP(&opts.definition, "definition", "d", "", "OpenAPI definition file (default: the only one found in the project)")
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "project folder mounted into the generator (default: the definition's folder)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output folder (default: the project folder, or <project>/docs for html)")
	cmd.Flags().StringVarP(&opts.generatorType, "generator", "g", "", "generator type (see 'oagen catalog')")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list the definitions and generator types that can be used, then exit")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "regenerate whenever the definition changes")
	if kind != generator.KindHTML {
		cmd.Flags().StringVarP(&opts.language, "language", "l", "", "target language (see 'oagen catalog "+string(kind)+"')")
	}
	return cmd
}

func runGenerate(ctx context.Context, app *App, kind generator.Kind, opts generateOptions) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	definition, projectDir, err := selectDefinition(opts)
	if err != nil {
		return err
	}

	wf, err := app.newWorkflow(cfg)
	if err != nil {
		return err
	}

	outcome, err := wf.Generate(ctx, generator.Request{
		Kind:          kind,
		Language:      opts.language,
		GeneratorType: opts.generatorType,
		Definition:    definition,
		ProjectDir:    projectDir,
		OutputDir:     outputDir(kind, opts),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Generated %s into %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(outcome.GeneratorType), outcome.OutputDir)

	if outcome.Reconciled == nil {
		return nil
	}
	if err := outcome.Reconciled.Wait(); err != nil {
		return err
	}
	printReconciled(app, outcome.Backup, outcome.Reconciled)
	return nil
}

// watchGenerate generates once and then again after every change to the
// definition until ctx is done. Failed runs are reported and watching goes on.
func watchGenerate(ctx context.Context, app *App, kind generator.Kind, opts generateOptions) error {
	definition, projectDir, err := selectDefinition(opts)
	if err != nil {
		return err
	}
	opts.definition, opts.project = definition, projectDir

	regenerate := func(ctx context.Context) {
		if err := app.finish(runGenerate(ctx, app, kind, opts)); err != nil {
			log.Debug("generation failed while watching", "err", err)
		}
	}
	regenerate(ctx)

	w, err := watch.New(watch.Config{
		Dir:      filepath.Dir(definition),
		Patterns: []string{filepath.Base(definition)},
		OnChange: func(ctx context.Context, _ []string) error {
			fmt.Fprintf(app.stdout, "\n%s %s changed, regenerating\n", WarningStyle.Render("↻"), definition)
			regenerate(ctx)
			return nil
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "%s Watching %s (Ctrl+C to stop)\n", SubtitleStyle.Render("•"), definition)
	return w.Run(ctx)
}

// selectDefinition returns the definition and project folder to mount. When
// no definition was given, the only candidate found in the project is used
// and the project folder is mounted.
func selectDefinition(opts generateOptions) (definition, projectDir string, err error) {
	if opts.definition != "" {
		return opts.definition, opts.project, nil
	}

	root := projectRoot(opts)
	candidates, err := generator.FindDefinitions(root)
	if err != nil {
		return "", "", err
	}
	switch len(candidates) {
	case 0:
		return "", "", fmt.Errorf("%w: no candidates in %s", generator.ErrNoDefinition, root)
	case 1:
		return filepath.Join(root, filepath.FromSlash(candidates[0])), root, nil
	default:
		return "", "", fmt.Errorf("%w: %d candidates in %s (%s), choose one with --definition",
			generator.ErrNoDefinition, len(candidates), root, strings.Join(candidates, ", "))
	}
}

func projectRoot(opts generateOptions) string {
	if opts.project != "" {
		return opts.project
	}
	return "."
}

func outputDir(kind generator.Kind, opts generateOptions) string {
	if opts.output != "" {
		return opts.output
	}
	if kind == generator.KindHTML {
		return filepath.Join(projectRoot(opts), docsFolder)
	}
	return projectRoot(opts)
}

func listGenerateInputs(app *App, kind generator.Kind, opts generateOptions) error {
	root := projectRoot(opts)
	candidates, err := generator.FindDefinitions(root)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Definitions in "+root))
	if len(candidates) == 0 {
		fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render("(none found)"))
	}
	for _, c := range candidates {
		fmt.Fprintf(app.stdout, "  %s\n", c)
	}
	fmt.Fprintln(app.stdout)

	var types []string
	switch {
	case kind == generator.KindHTML:
		types = generator.DocGenerators()
	case opts.language != "":
		lang, ok := generator.LookupLanguage(opts.language)
		if !ok {
			return &generator.UnknownLanguageError{Language: opts.language}
		}
		types = lang.Types(kind)
	default:
		fmt.Fprintf(app.stdout, "%s\n", SubtitleStyle.Render("Pass --language to list generator types, or run 'oagen catalog "+string(kind)+"'"))
		return nil
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Generator types"))
	for _, t := range types {
		marker := " "
		if t == opts.generatorType || (kind == generator.KindHTML && opts.generatorType == "" && t == generator.DefaultDocGenerator) {
			marker = SuccessStyle.Render("*")
		}
		fmt.Fprintf(app.stdout, "%s %s\n", marker, CmdStyle.Render(t))
	}
	return nil
}

// printReconciled reports a finished descriptor merge.
func printReconciled(app *App, backupName string, res *pom.Result) {
	if !res.Merged {
		fmt.Fprintf(app.stdout, "%s Restored %s from %s (no usable generated descriptor)\n",
			WarningStyle.Render("!"), pom.DescriptorFile, backupName)
		return
	}
	fmt.Fprintf(app.stdout, "%s Merged %s: added %d properties, %d dependencies, %d plugins\n",
		SuccessStyle.Render("✓"), pom.DescriptorFile, res.Stats.Properties, res.Stats.Dependencies, res.Stats.Plugins)
	if backupName != "" {
		fmt.Fprintf(app.stdout, "  previous: %s\n", SubtitleStyle.Render(backupName))
	}
	if res.GeneratedFile != "" {
		fmt.Fprintf(app.stdout, "  generated: %s\n", SubtitleStyle.Render(res.GeneratedFile))
	}
}
