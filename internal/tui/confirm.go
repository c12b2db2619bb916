// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type (
	// ConfirmOptions configures the Confirm component.
	ConfirmOptions struct {
		// Title is the question to display.
		Title string
		// Description provides additional context below the title.
		Description string
		// Affirmative is the text for the affirmative option (default: "Yes").
		Affirmative string
		// Negative is the text for the negative option (default: "No").
		Negative string
		// Default is the preselected answer.
		Default bool
		// Config holds common TUI configuration.
		Config Config
	}

	confirmModel struct {
		title       string
		description string
		affirmative string
		negative    string
		selection   bool
		result      bool
		done        bool
		cancelled   bool
		width       int
	}
)

func newConfirmModel(opts ConfirmOptions) *confirmModel {
	affirmative, negative := opts.Affirmative, opts.Negative
	if affirmative == "" {
		affirmative = "Yes"
	}
	if negative == "" {
		negative = "No"
	}
	return &confirmModel{
		title:       opts.Title,
		description: opts.Description,
		affirmative: affirmative,
		negative:    negative,
		selection:   opts.Default,
		result:      opts.Default,
	}
}

// Init implements tea.Model.
func (m *confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case keyCtrlC, "esc":
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		case "y", "Y":
			return m.submit(true)
		case "n", "N":
			return m.submit(false)
		case "left", "h":
			m.selection = true
		case "right", "l":
			m.selection = false
		case "up", "down", "tab", "shift+tab":
			m.selection = !m.selection
		case "enter", " ":
			return m.submit(m.selection)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m *confirmModel) submit(answer bool) (tea.Model, tea.Cmd) {
	m.selection = answer
	m.result = answer
	m.done = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m *confirmModel) View() string {
	if m.done {
		return ""
	}

	yes, no := inactiveStyle.Render(m.affirmative), inactiveStyle.Render(m.negative)
	if m.selection {
		yes = activeStyle.Render(m.affirmative)
	} else {
		no = activeStyle.Render(m.negative)
	}

	lines := make([]string, 0, 4)
	if m.title != "" {
		lines = append(lines, titleStyle.Render(m.title))
	}
	if m.description != "" {
		lines = append(lines, descStyle.Render(m.description))
	}
	lines = append(lines,
		yes+"  "+no,
		helpStyle.Render("enter submit • y yes • n no • esc cancel"),
	)

	view := strings.Join(lines, "\n") + "\n"
	if m.width > 0 {
		view = lipgloss.NewStyle().MaxWidth(m.width).Render(view)
	}
	return view
}

// Result returns the answer, or ErrCancelled if the prompt was aborted.
func (m *confirmModel) Result() (bool, error) {
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.result, nil
}

// Confirm prompts the user to confirm an action. It returns ErrCancelled when
// the user aborts, and the context error when ctx ends first.
func Confirm(ctx context.Context, opts ConfirmOptions) (bool, error) {
	if opts.Config.Accessible {
		return confirmAccessible(ctx, opts)
	}

	p := tea.NewProgram(newConfirmModel(opts),
		tea.WithContext(ctx),
		tea.WithInput(opts.Config.input()),
		tea.WithOutput(opts.Config.output()),
	)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return final.(*confirmModel).Result()
}

// confirmAccessible asks on a single line and reads answers until one parses.
// An empty answer selects the default.
func confirmAccessible(ctx context.Context, opts ConfirmOptions) (bool, error) {
	out := opts.Config.output()
	hint := "[y/N]"
	if opts.Default {
		hint = "[Y/n]"
	}

	type answer struct {
		line string
		err  error
	}
	lines := make(chan answer, 1)
	reader := bufio.NewReader(opts.Config.input())
	readLine := func() {
		line, err := reader.ReadString('\n')
		lines <- answer{line: line, err: err}
	}

	if opts.Description != "" {
		fmt.Fprintln(out, opts.Description)
	}
	for {
		fmt.Fprintf(out, "%s %s ", opts.Title, hint)

		go readLine()
		var a answer
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case a = <-lines:
		}

		if value, ok := parseAnswer(a.line, opts.Default); ok && (a.err == nil || strings.TrimSpace(a.line) != "") {
			return value, nil
		}
		if a.err != nil {
			fmt.Fprintln(out)
			if errors.Is(a.err, io.EOF) {
				return false, ErrCancelled
			}
			return false, fmt.Errorf("read answer: %w", a.err)
		}
		fmt.Fprintln(out, "Please answer yes or no.")
	}
}

func parseAnswer(line string, def bool) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}
