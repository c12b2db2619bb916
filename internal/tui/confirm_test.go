// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModel_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		def           bool
		keys          []tea.KeyMsg
		want          bool
		wantCancelled bool
	}{
		{name: "enter keeps default yes", def: true, keys: []tea.KeyMsg{{Type: tea.KeyEnter}}, want: true},
		{name: "enter keeps default no", keys: []tea.KeyMsg{{Type: tea.KeyEnter}}, want: false},
		{name: "y answers yes", keys: []tea.KeyMsg{runes("y")}, want: true},
		{name: "n answers no", def: true, keys: []tea.KeyMsg{runes("n")}, want: false},
		{name: "right then enter", def: true, keys: []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, want: false},
		{name: "tab toggles", keys: []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeySpace}}, want: true},
		{name: "esc cancels", def: true, keys: []tea.KeyMsg{{Type: tea.KeyEsc}}, wantCancelled: true},
		{name: "ctrl+c cancels", keys: []tea.KeyMsg{{Type: tea.KeyCtrlC}}, wantCancelled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newConfirmModel(ConfirmOptions{Title: "Proceed?", Default: tt.def})
			var cmd tea.Cmd
			for _, k := range tt.keys {
				_, cmd = m.Update(k)
			}

			if !m.done {
				t.Fatal("model should be done")
			}
			if cmd == nil {
				t.Error("final key should return tea.Quit")
			}
			got, err := m.Result()
			if tt.wantCancelled {
				if !errors.Is(err, ErrCancelled) {
					t.Errorf("Result() error = %v, want ErrCancelled", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Result() = %v, %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestConfirmModel_IgnoresOtherKeys(t *testing.T) {
	t.Parallel()

	m := newConfirmModel(ConfirmOptions{Title: "Proceed?"})
	if _, cmd := m.Update(runes("x")); cmd != nil || m.done {
		t.Error("unbound key should not finish the prompt")
	}
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.width != 40 {
		t.Errorf("width = %d, want 40", m.width)
	}
}

func TestConfirmModel_View(t *testing.T) {
	t.Parallel()

	m := newConfirmModel(ConfirmOptions{Title: "Back up pom.xml?", Description: "It will be merged later", Affirmative: "Back up"})
	view := m.View()
	for _, want := range []string{"Back up pom.xml?", "It will be merged later", "Back up", "No"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	m.Update(runes("y"))
	if m.View() != "" {
		t.Error("View() should be empty once answered")
	}
}

func TestConfirm_Accessible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		def     bool
		want    bool
		wantErr error
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no word", input: "No\n", def: true, want: false},
		{name: "empty takes default", input: "\n", def: true, want: true},
		{name: "retry after garbage", input: "maybe\nyes\n", want: true},
		{name: "answer without newline", input: "n", def: true, want: false},
		{name: "eof cancels", input: "", wantErr: ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			got, err := Confirm(context.Background(), ConfirmOptions{
				Title:   "Pull image?",
				Default: tt.def,
				Config:  Config{Accessible: true, Input: strings.NewReader(tt.input), Output: &out},
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Confirm() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Confirm() = %v, %v, want %v", got, err, tt.want)
			}
			if !strings.Contains(out.String(), "Pull image?") {
				t.Errorf("prompt not written: %q", out.String())
			}
		})
	}
}

func TestConfirm_AccessibleContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := &blockingReader{}
	_, err := Confirm(ctx, ConfirmOptions{Title: "?", Config: Config{Accessible: true, Input: blocked, Output: &bytes.Buffer{}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Confirm() error = %v, want context.Canceled", err)
	}
}

type blockingReader struct{}

func (*blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestParseAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		def    bool
		want   bool
		wantOK bool
	}{
		{"", true, true, true},
		{"  \n", false, false, true},
		{"YES", false, true, true},
		{"n", true, false, true},
		{"nope", true, false, false},
	}
	for _, tt := range tests {
		got, ok := parseAnswer(tt.in, tt.def)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseAnswer(%q, %v) = %v, %v", tt.in, tt.def, got, ok)
		}
	}
}
