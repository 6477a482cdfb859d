package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/logging"
	"github.com/five82/dialogs/internal/registry"
	"github.com/five82/dialogs/internal/request"
)

const maxPanelLines = 12

// seedFunc returns the lines a panel shows and a version that changes when
// they do.
type seedFunc func() ([]string, uint64)

// panel is the terminal rendition of a singleton dialog. It is only touched
// on the UI loop.
type panel struct {
	kind    request.Kind
	title   string
	seed    seedFunc
	visible bool
	closed  bool

	lines   []string
	version uint64
	seeded  bool
}

func (p *panel) Kind() request.Kind { return p.kind }
func (p *panel) Visible() bool      { return p.visible && !p.closed }
func (p *panel) Hide()              { p.visible = false }

func (p *panel) Show() {
	if p.closed {
		return
	}
	p.visible = true
	p.refresh()
}

func (p *panel) Close() {
	p.closed = true
	p.visible = false
	p.lines = nil
}

// refresh re-reads the panel source when its version moved.
func (p *panel) refresh() {
	if p.seed == nil || p.closed {
		return
	}
	lines, version := p.seed()
	if p.seeded && version == p.version {
		return
	}
	p.lines, p.version, p.seeded = lines, version, true
}

func (p *panel) view(styles Styles, width int, focused bool) string {
	box := styles.Panel
	if focused {
		box = styles.FocusPanel
	}
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(p.title))
	lines := p.lines
	if len(lines) > maxPanelLines {
		lines = lines[len(lines)-maxPanelLines:]
	}
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(truncate(line, width-4)))
	}
	if width > 2 {
		box = box.Width(width - 2)
	}
	return box.Render(b.String())
}

// panelSources builds the registry factory. Each panel is seeded from the
// engine snapshot or the log backlog on creation and on every idle tick.
type panelSources struct {
	eng       engine.Engine
	backlog   *logging.Backlog
	tick      time.Duration
	intfName  string
	discovery []string
}

func (s panelSources) factory(kind request.Kind) (registry.Dialog, error) {
	p := &panel{kind: kind}
	switch kind {
	case request.KindPlaylist:
		p.title, p.seed = "Playlist", s.playlist
	case request.KindMessages:
		p.title, p.seed = "Messages", s.messages
	case request.KindPreferences:
		p.title, p.seed = "Preferences", s.preferences
	case request.KindStreamInfo:
		p.title, p.seed = "Stream Information", s.streamInfo
	case request.KindExtended:
		p.title, p.seed = "Extended Controls", s.extended
	default:
		return nil, fmt.Errorf("build %s panel: %w", kind, registry.ErrNotSingleton)
	}
	p.refresh()
	return p, nil
}

func (s panelSources) snapshot() (engine.Snapshot, bool) {
	if s.eng == nil {
		return engine.Snapshot{Current: -1}, false
	}
	return s.eng.Snapshot(), true
}

func (s panelSources) playlist() ([]string, uint64) {
	snap, ok := s.snapshot()
	if !ok {
		return []string{"No engine attached"}, 0
	}
	lines := []string{fmt.Sprintf("%d item(s)", len(snap.Playlist))}
	for i, item := range snap.Playlist {
		marker := "  "
		if i == snap.Current {
			marker = "▶ "
		}
		lines = append(lines, marker+itemLabel(item))
	}
	if len(snap.Library) > 0 {
		lines = append(lines, "", fmt.Sprintf("Media library: %d item(s)", len(snap.Library)))
		for _, item := range snap.Library {
			lines = append(lines, "  "+itemLabel(item))
		}
	}
	return lines, snap.Version
}

func (s panelSources) messages() ([]string, uint64) {
	if s.backlog == nil {
		return []string{"No messages"}, 0
	}
	lines := s.backlog.Lines()
	if len(lines) == 0 {
		return []string{"No messages"}, s.backlog.Version()
	}
	return lines, s.backlog.Version()
}

func (s panelSources) preferences() ([]string, uint64) {
	snap, ok := s.snapshot()
	if !ok {
		return []string{"No engine attached"}, 0
	}
	var lines []string
	if len(s.discovery) > 0 {
		lines = append(lines, "Service discovery:")
		for i, name := range s.discovery {
			state := "off"
			if slices.Contains(snap.Loaded, name) {
				state = "on"
			}
			lines = append(lines, fmt.Sprintf("  [%d] %-8s %s", i+1, name, state))
		}
	}
	if len(snap.Settings) > 0 {
		lines = append(lines, "Settings:")
		names := make([]string, 0, len(snap.Settings))
		for name := range snap.Settings {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("  %s = %s", name, snap.Settings[name]))
		}
	}
	if snap.LastError != nil {
		lines = append(lines, "Last error: "+snap.LastError.Error())
	}
	if len(lines) == 0 {
		lines = []string{"Nothing to configure"}
	}
	return lines, snap.Version
}

func (s panelSources) streamInfo() ([]string, uint64) {
	snap, ok := s.snapshot()
	if !ok {
		return []string{"No engine attached"}, 0
	}
	item, playing := snap.Playing()
	if !playing {
		return []string{"Nothing playing"}, snap.Version
	}
	kind := "file"
	if item.Directory {
		kind = "directory"
	}
	return []string{
		"Name: " + item.Name,
		"Location: " + item.Path,
		"Type: " + kind,
		fmt.Sprintf("Position: %d of %d", snap.Current+1, len(snap.Playlist)),
	}, snap.Version
}

func (s panelSources) extended() ([]string, uint64) {
	snap, _ := s.snapshot()
	intf := snap.Settings["intf-switch"]
	if intf == "" {
		intf = "(not switched, S selects " + s.intfName + ")"
	}
	return []string{
		"Interface: " + intf,
		"Refresh: " + s.tick.String(),
		fmt.Sprintf("Discovery modules loaded: %d", len(snap.Loaded)),
	}, snap.Version
}

func itemLabel(item engine.Item) string {
	if item.Directory {
		return item.Name + "/"
	}
	return item.Name
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
