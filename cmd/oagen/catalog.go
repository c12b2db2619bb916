// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"oagen-cli/internal/generator"
)

// newCatalogCommand creates the `oagen catalog` command.
func newCatalogCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "catalog [client|server|html]",
		Short:     "List languages and generator types",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(generator.KindClient), string(generator.KindServer), string(generator.KindHTML)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				writeCatalog(app.stdout, generator.KindClient)
				fmt.Fprintln(app.stdout)
				writeCatalog(app.stdout, generator.KindServer)
				fmt.Fprintln(app.stdout)
				writeCatalog(app.stdout, generator.KindHTML)
				return nil
			}
			kind, err := generator.ParseKind(args[0])
			if err != nil {
				return err
			}
			writeCatalog(app.stdout, kind)
			return nil
		},
	}
}

// writeCatalog prints the generator types of one kind as a table.
func writeCatalog(w io.Writer, kind generator.Kind) {
	fmt.Fprintln(w, TitleStyle.Render(strings.ToUpper(string(kind))))

	if kind == generator.KindHTML {
		types := generator.DocGenerators()
		for i, t := range types {
			if t == generator.DefaultDocGenerator {
				types[i] = t + " (default)"
			}
		}
		fmt.Fprintln(w, strings.Join(types, ", "))
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("LANGUAGE", "SOURCE FOLDER", "GENERATORS")

	for _, l := range generator.Languages() {
		types := l.Types(kind)
		if len(types) == 0 {
			continue
		}
		t.Row(l.Name, generator.PreferredSourceFolder(l.Name), strings.Join(types, ", "))
	}
	fmt.Fprintln(w, t.Render())
}
