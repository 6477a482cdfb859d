package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/dialogs/internal/picker"
)

// ErrPickerDetached is returned when the modal picker has no program to show
// itself in.
var ErrPickerDetached = errors.New("picker not attached to a program")

type pickReply struct {
	paths []string
	err   error
}

// pickerOpenMsg asks the UI loop to show the file picker modal.
type pickerOpenMsg struct {
	req   picker.Request
	dir   bool
	reply chan<- pickReply
}

// ModalPicker implements picker.Picker with a file picker modal inside the
// running program. Calls block the calling goroutine, never the UI loop.
type ModalPicker struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewModalPicker returns a picker that must be attached before use.
func NewModalPicker() *ModalPicker { return &ModalPicker{} }

// Attach sets the function used to reach the UI loop, normally
// (*tea.Program).Send.
func (mp *ModalPicker) Attach(send func(tea.Msg)) {
	mp.mu.Lock()
	mp.send = send
	mp.mu.Unlock()
}

// OpenFiles shows the file picker and waits for the selection.
func (mp *ModalPicker) OpenFiles(ctx context.Context, req picker.Request) ([]string, error) {
	return mp.ask(ctx, req, false)
}

// OpenDirectory shows the picker in directory mode and waits for the choice.
func (mp *ModalPicker) OpenDirectory(ctx context.Context, req picker.Request) (string, error) {
	paths, err := mp.ask(ctx, req, true)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

func (mp *ModalPicker) ask(ctx context.Context, req picker.Request, dir bool) ([]string, error) {
	mp.mu.Lock()
	send := mp.send
	mp.mu.Unlock()
	if send == nil {
		return nil, ErrPickerDetached
	}

	reply := make(chan pickReply, 1)
	send(pickerOpenMsg{req: req, dir: dir, reply: reply})
	select {
	case r := <-reply:
		if r.err == nil && len(r.paths) == 0 {
			return nil, picker.ErrCancelled
		}
		return r.paths, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pickerChrome is the number of rows the modal uses around the file list.
const pickerChrome = 6

// pickerModal hosts a bubbles file picker for one request.
type pickerModal struct {
	fp     filepicker.Model
	req    picker.Request
	dir    bool
	chosen []string
	note   string
	reply  chan<- pickReply
}

func newPickerModal(msg pickerOpenMsg, width, height int) (*pickerModal, tea.Cmd) {
	fp := filepicker.New()
	fp.CurrentDirectory = msg.req.Dir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory = "."
	}
	fp.AllowedTypes = msg.req.Filter.Extensions()
	fp.DirAllowed = msg.dir
	fp.FileAllowed = !msg.dir
	fp.AutoHeight = true

	pm := &pickerModal{fp: fp, req: msg.req, dir: msg.dir, reply: msg.reply}
	// The picker sizes itself from a window size message.
	if height > pickerChrome {
		pm.fp, _ = pm.fp.Update(tea.WindowSizeMsg{Width: width, Height: height - pickerChrome})
	}
	return pm, pm.fp.Init()
}

func (pm *pickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.PickerCancel):
			pm.finish(pickReply{paths: pm.chosen})
			return pm, nil, true
		case key.Matches(km, keys.PickerDone):
			if pm.dir {
				pm.finish(pickReply{paths: []string{pm.fp.CurrentDirectory}})
				return pm, nil, true
			}
			if len(pm.chosen) > 0 {
				pm.finish(pickReply{paths: pm.chosen})
				return pm, nil, true
			}
		}
	}

	var cmd tea.Cmd
	pm.fp, cmd = pm.fp.Update(msg)

	if ok, path := pm.fp.DidSelectFile(msg); ok {
		if pm.dir || !pm.req.Multiple {
			pm.finish(pickReply{paths: []string{path}})
			return pm, nil, true
		}
		pm.chosen = append(pm.chosen, path)
		pm.note = "added " + filepath.Base(path)
	}
	if ok, path := pm.fp.DidSelectDisabledFile(msg); ok {
		pm.note = filepath.Base(path) + " is not a " + pm.req.Filter.String() + " file"
	}
	return pm, cmd, false
}

// finish answers the waiting caller once.
func (pm *pickerModal) finish(r pickReply) {
	if pm.reply == nil {
		return
	}
	pm.reply <- r
	pm.reply = nil
}

func (pm *pickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	title := pm.req.Title
	if title == "" {
		title = "Open"
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(pm.fp.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(pm.fp.View())
	b.WriteString("\n")
	if len(pm.chosen) > 0 {
		b.WriteString(styles.InfoText.Render(fmt.Sprintf("%d selected", len(pm.chosen))))
		b.WriteString("  ")
	}
	if pm.note != "" {
		b.WriteString(styles.WarningText.Render(pm.note))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(pm.hints()))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(0, 2)
	if width > 8 {
		modal = modal.Width(width - 6)
	}
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (pm *pickerModal) hints() string {
	switch {
	case pm.dir:
		return "enter choose highlighted  s choose current  q close"
	case pm.req.Multiple:
		return "enter add file  s finish  q close"
	default:
		return "enter choose  q close"
	}
}
