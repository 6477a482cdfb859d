package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LayoutCompactWidth is the width below which the header drops its counters.
const LayoutCompactWidth = 80

const fallbackWidth = 80

// renderMain renders the header, the visible dialogs and the footer.
func (m Model) renderMain() string {
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	styles := m.theme.Styles()

	var blocks []string
	blocks = append(blocks, m.renderHeader(styles, width))

	views := m.manager.Visible()
	panels := m.registry.Visible()
	for i, d := range panels {
		p, ok := d.(*panel)
		if !ok {
			continue
		}
		// The topmost panel has focus unless an interaction is asking.
		focused := i == len(panels)-1 && len(views) == 0
		blocks = append(blocks, p.view(styles, width, focused))
	}
	for i, v := range views {
		box, ok := v.Dialog.(*interactionBox)
		if !ok {
			continue
		}
		blocks = append(blocks, box.view(styles, width, i == len(views)-1, v.Lingering))
	}
	if len(panels) == 0 && len(views) == 0 {
		blocks = append(blocks, styles.FaintText.Padding(1, 1).Render("No dialogs open. Press p for the playlist or o to open files."))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, blocks...)
	footer := m.renderFooter(styles, width)
	if m.height > 0 {
		gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
		if gap > 0 {
			body += strings.Repeat("\n", gap)
		}
	}
	return body + "\n" + footer
}

func (m Model) renderHeader(styles Styles, width int) string {
	parts := []string{styles.AccentText.Bold(true).Render("dialogs")}
	if width >= LayoutCompactWidth {
		parts = append(parts,
			styles.MutedText.Render("panels:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(m.registry.Visible()))),
			styles.MutedText.Render("asking:")+" "+styles.Text.Render(fmt.Sprintf("%d", len(m.manager.Visible()))),
		)
	}
	parts = append(parts, styles.FaintText.Render(m.theme.Name))
	return styles.Header.Width(width).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter(styles Styles, width int) string {
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	line := strings.Join(hints, "  ")
	if m.status != "" {
		status := styles.DangerText.Render(m.status)
		if m.statusOK {
			status = styles.SuccessText.Render(m.status)
		}
		line = status + "  " + line
	}
	return styles.Footer.Width(width).Render(line)
}
