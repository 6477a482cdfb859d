package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dialogs/internal/interaction"
)

const progressWidth = 30

// interactionBox renders one engine interaction. It keeps its own copy of the
// content, updated only through Refresh.
type interactionBox struct {
	flags   interaction.Flags
	content interaction.Content
	visible bool
	closed  bool

	login    textinput.Model
	password textinput.Model
	field    int
}

func newInteractionBox(rec *interaction.Record) *interactionBox {
	b := &interactionBox{flags: rec.Flags, content: rec.Content()}
	if b.flags.Has(interaction.FlagLoginPassword) {
		b.login = textinput.New()
		b.login.Placeholder = "login"
		b.login.CharLimit = 128
		b.login.Focus()

		b.password = textinput.New()
		b.password.Placeholder = "password"
		b.password.CharLimit = 128
		b.password.EchoMode = textinput.EchoPassword
	}
	return b
}

func (b *interactionBox) Show() {
	if !b.closed {
		b.visible = true
	}
}

func (b *interactionBox) Hide()         { b.visible = false }
func (b *interactionBox) Visible() bool { return b.visible && !b.closed }

func (b *interactionBox) Refresh(c interaction.Content) {
	b.content = c
}

func (b *interactionBox) Close() {
	b.closed = true
	b.visible = false
}

// handleKey reports the answer the user gave, if any.
func (b *interactionBox) handleKey(msg tea.KeyMsg, keys keyMap) (interaction.Answer, bool, tea.Cmd) {
	if b.flags.Has(interaction.FlagLoginPassword) {
		return b.handleLoginKey(msg, keys)
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		return interaction.Answer{Button: interaction.ButtonCancel}, true, nil
	case b.flags.Has(interaction.FlagProgress):
		// Progress dialogs only offer cancel.
		return interaction.Answer{}, false, nil
	case key.Matches(msg, keys.Default):
		return interaction.Answer{Button: interaction.ButtonDefault}, true, nil
	case key.Matches(msg, keys.Alternate) && b.content.AlternateButton != "":
		return interaction.Answer{Button: interaction.ButtonAlternate}, true, nil
	case key.Matches(msg, keys.Other) && b.content.OtherButton != "":
		return interaction.Answer{Button: interaction.ButtonOther}, true, nil
	}
	return interaction.Answer{}, false, nil
}

func (b *interactionBox) handleLoginKey(msg tea.KeyMsg, keys keyMap) (interaction.Answer, bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return interaction.Answer{Button: interaction.ButtonCancel}, true, nil
	case key.Matches(msg, keys.Default):
		return interaction.Answer{
			Button:   interaction.ButtonDefault,
			Login:    strings.TrimSpace(b.login.Value()),
			Password: b.password.Value(),
		}, true, nil
	case key.Matches(msg, keys.NextField):
		b.field = (b.field + 1) % 2
		if b.field == 0 {
			b.password.Blur()
			return interaction.Answer{}, false, b.login.Focus()
		}
		b.login.Blur()
		return interaction.Answer{}, false, b.password.Focus()
	}

	var cmd tea.Cmd
	if b.field == 0 {
		b.login, cmd = b.login.Update(msg)
	} else {
		b.password, cmd = b.password.Update(msg)
	}
	return interaction.Answer{}, false, cmd
}

func (b *interactionBox) view(styles Styles, width int, focused, lingering bool) string {
	box := styles.Panel
	switch {
	case b.flags.Has(interaction.FlagNonBlockingError):
		box = styles.ErrorPanel
	case focused:
		box = styles.FocusPanel
	}

	var s strings.Builder
	title := b.content.Title
	if title == "" {
		title = "Question"
	}
	if b.flags.Has(interaction.FlagNonBlockingError) {
		s.WriteString(styles.DangerText.Render(title))
	} else {
		s.WriteString(styles.AccentText.Bold(true).Render(title))
	}
	if b.content.Description != "" {
		s.WriteString("\n")
		s.WriteString(styles.Text.Render(b.content.Description))
	}

	if b.flags.Has(interaction.FlagProgress) {
		s.WriteString("\n")
		s.WriteString(renderProgress(styles, b.content.Progress))
		if b.content.TimeToGo > 0 {
			s.WriteString(styles.MutedText.Render(fmt.Sprintf("  %s left", b.content.TimeToGo.Round(time.Second))))
		}
	}

	if b.flags.Has(interaction.FlagLoginPassword) {
		s.WriteString("\n")
		s.WriteString(b.login.View())
		s.WriteString("\n")
		s.WriteString(b.password.View())
	}

	if hints := b.hints(lingering); hints != "" {
		s.WriteString("\n")
		s.WriteString(styles.FaintText.Render(hints))
	}

	if width > 2 {
		box = box.Width(width - 2)
	}
	return box.Render(s.String())
}

func (b *interactionBox) hints(lingering bool) string {
	if lingering {
		return "esc dismiss"
	}
	if b.flags.Has(interaction.FlagProgress) {
		return "esc cancel"
	}
	var parts []string
	defaultLabel := b.content.DefaultButton
	if defaultLabel == "" {
		defaultLabel = "OK"
	}
	parts = append(parts, "enter "+defaultLabel)
	if b.content.AlternateButton != "" && !b.flags.Has(interaction.FlagLoginPassword) {
		parts = append(parts, "n "+b.content.AlternateButton)
	}
	if b.content.OtherButton != "" && !b.flags.Has(interaction.FlagLoginPassword) {
		parts = append(parts, "O "+b.content.OtherButton)
	}
	if b.flags.Has(interaction.FlagLoginPassword) {
		parts = append(parts, "tab next field")
	}
	parts = append(parts, "esc cancel")
	return strings.Join(parts, "  ")
}

func renderProgress(styles Styles, percent float64) string {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := min(max(int(percent/100*progressWidth), 0), progressWidth)
	bar := styles.SuccessText.Render(strings.Repeat("█", filled)) +
		styles.FaintText.Render(strings.Repeat("░", progressWidth-filled))
	return fmt.Sprintf("%s %3.0f%%", bar, percent)
}
