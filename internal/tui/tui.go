// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt with esc or ctrl+c.
var ErrCancelled = errors.New("prompt cancelled")

const keyCtrlC = "ctrl+c"

// Config holds common configuration for TUI components.
type Config struct {
	// Accessible selects the plain line prompt instead of the Bubble Tea model.
	Accessible bool
	// Input is where answers are read from (os.Stdin when nil).
	Input io.Reader
	// Output is where the prompt is written (os.Stderr when nil).
	Output io.Writer
}

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSubtle  = lipgloss.Color("#9CA3AF")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	descStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(colorPrimary).Bold(true).Padding(0, 1)
	inactiveStyle = lipgloss.NewStyle().Foreground(colorSubtle).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)

// DefaultConfig returns the configuration for the current process. Accessible
// mode is enabled when stdin is not a terminal or the ACCESSIBLE environment
// variable is set.
func DefaultConfig() Config {
	return Config{
		Accessible: !isInputTerminal() || os.Getenv("ACCESSIBLE") != "",
		Input:      os.Stdin,
		Output:     os.Stderr,
	}
}

func isInputTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (c Config) input() io.Reader {
	if c.Input != nil {
		return c.Input
	}
	return os.Stdin
}

func (c Config) output() io.Writer {
	if c.Output != nil {
		return c.Output
	}
	return os.Stderr
}
