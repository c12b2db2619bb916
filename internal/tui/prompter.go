// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"

	"oagen-cli/internal/backup"
)

// Prompter asks questions through Confirm. Aborting a prompt counts as a
// "no" answer.
type Prompter struct {
	Config Config
	// Default is the preselected answer.
	Default bool
}

var _ backup.Confirmer = (*Prompter)(nil)

// NewPrompter returns a Prompter using DefaultConfig with "yes" preselected.
func NewPrompter() *Prompter {
	return &Prompter{Config: DefaultConfig(), Default: true}
}

// Confirm implements backup.Confirmer.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	ok, err := Confirm(ctx, ConfirmOptions{
		Title:   prompt,
		Default: p.Default,
		Config:  p.Config,
	})
	if errors.Is(err, ErrCancelled) {
		return false, nil
	}
	return ok, err
}

// AutoConfirm answers every question with yes. It backs the --yes flag.
var AutoConfirm backup.Confirmer = backup.ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
