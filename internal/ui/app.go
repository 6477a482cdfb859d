package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/interaction"
	"github.com/five82/dialogs/internal/logging"
	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/picker"
	"github.com/five82/dialogs/internal/provider"
	"github.com/five82/dialogs/internal/registry"
	"github.com/five82/dialogs/internal/request"
	"github.com/five82/dialogs/internal/router"
)

const defaultTick = 150 * time.Millisecond

// Closer is the part of the mailbox the UI shuts down on exit.
type Closer interface {
	Close()
}

// Options configures the UI.
type Options struct {
	Context         context.Context
	Engine          engine.Engine
	Mailbox         Closer
	Backlog         *logging.Backlog
	Picker          picker.Picker
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	Tick            time.Duration
	ThemeName       string
	InterfaceSwitch string
	Discovery       []string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	log     *slog.Logger
	tick    time.Duration
	mailbox Closer

	registry *registry.Registry
	manager  *interaction.Manager
	router   *router.Router
	provider *provider.Provider

	discovery []string

	theme    Theme
	keys     keyMap
	width    int
	height   int
	showHelp bool
	modal    Modal
	status   string
	statusOK bool
	down     *bool
}

// New creates a new Bubble Tea model and the dialog machinery behind it.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	sources := panelSources{
		eng:       opts.Engine,
		backlog:   opts.Backlog,
		tick:      tick,
		intfName:  opts.InterfaceSwitch,
		discovery: opts.Discovery,
	}
	reg := registry.New(sources.factory, logger.With("component", "registry"), opts.Metrics)
	manager := interaction.NewManager(func(rec *interaction.Record) interaction.Dialog {
		return newInteractionBox(rec)
	}, logger.With("component", "interaction"), opts.Metrics)
	rt := router.New(ctx, opts.Engine, logger.With("component", "router"), opts.Metrics)
	prov := provider.New(provider.Options{
		Context:         ctx,
		Engine:          opts.Engine,
		Registry:        reg,
		Interactions:    manager,
		Router:          rt,
		Picker:          opts.Picker,
		Logger:          logger.With("component", "provider"),
		Metrics:         opts.Metrics,
		InterfaceSwitch: opts.InterfaceSwitch,
		Discovery:       opts.Discovery,
	})

	return Model{
		ctx:       ctx,
		log:       logger,
		tick:      tick,
		mailbox:   opts.Mailbox,
		registry:  reg,
		manager:   manager,
		router:    rt,
		provider:  prov,
		discovery: append([]string(nil), opts.Discovery...),
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		down:      new(bool),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.tick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case request.Envelope:
		return m, m.provider.Dispatch(msg)

	case router.ResultMsg:
		return m.handleResult(msg)

	case picker.ResultMsg:
		return m, m.provider.Continue(msg)

	case pickerOpenMsg:
		return m.openPicker(msg)

	case tickMsg:
		return m.handleTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.modal != nil {
			return m.updateModal(msg)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// handleTick refreshes visible panels from their sources.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	for _, d := range m.registry.Visible() {
		if p, ok := d.(*panel); ok {
			p.refresh()
		}
	}
	return m, tickCmd(m.tick)
}

func (m Model) handleResult(msg router.ResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.status, m.statusOK = msg.Token+": "+msg.Err.Error(), false
		if errors.Is(msg.Err, context.Canceled) {
			m.log.Debug("routed command cancelled", "token", msg.Token)
		} else {
			m.log.Error("routed command failed", "token", msg.Token, "error", msg.Err)
		}
	} else if msg.Follow == nil {
		m.status, m.statusOK = msg.Token+" done", true
	}
	if msg.Follow == nil {
		return m, nil
	}
	follow := msg.Follow
	return m, func() tea.Msg { return follow }
}

func (m Model) openPicker(msg pickerOpenMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		// One picker at a time; the second caller sees a cancel.
		msg.reply <- pickReply{err: picker.ErrCancelled}
		return m, nil
	}
	pm, cmd := newPickerModal(msg, m.width, m.height)
	m.modal = pm
	return m, cmd
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = next
	}
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Teardown()
		return m, tea.Quit
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if view, ok := m.focusedInteraction(); ok {
		if handled, cmd := m.handleInteractionKey(view, msg); handled {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Teardown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil
	case key.Matches(msg, m.keys.SwitchSkins):
		return m, m.router.ActivateUpdate(provider.TokenSwitchSkins)
	case key.Matches(msg, m.keys.Discovery):
		idx := int(msg.String()[0] - '1')
		if idx < 0 || idx >= len(m.discovery) {
			return m, nil
		}
		return m, m.router.ToggleDiscovery(m.discovery[idx])
	}

	for _, mb := range m.keys.menus() {
		if key.Matches(msg, mb.binding) {
			return m, m.router.Activate(mb.token)
		}
	}
	return m, nil
}

// focusedInteraction returns the newest visible interaction dialog.
func (m Model) focusedInteraction() (interaction.View, bool) {
	views := m.manager.Visible()
	if len(views) == 0 {
		return interaction.View{}, false
	}
	return views[len(views)-1], true
}

func (m Model) handleInteractionKey(view interaction.View, msg tea.KeyMsg) (bool, tea.Cmd) {
	box, ok := view.Dialog.(*interactionBox)
	if !ok {
		return false, nil
	}
	if view.Lingering {
		if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Default) {
			m.manager.Dismiss(view.Handle)
			return true, nil
		}
		return false, nil
	}

	answer, answered, cmd := box.handleKey(msg, m.keys)
	if answered {
		m.manager.Answer(view.Handle, answer)
		m.log.Debug("interaction answered", "handle", uint64(view.Handle), "button", answer.Button.String())
		return true, cmd
	}
	// Login dialogs swallow typing.
	if box.flags.Has(interaction.FlagLoginPassword) {
		return true, cmd
	}
	return cmd != nil, cmd
}

// Teardown closes every dialog and the mailbox. It is safe to call more than
// once.
func (m Model) Teardown() {
	if m.down == nil || *m.down {
		return
	}
	*m.down = true
	m.registry.KillAll()
	m.manager.Shutdown()
	if m.mailbox != nil {
		m.mailbox.Close()
	}
	m.log.Info("dialogs torn down")
}

// View implements tea.Model.
func (m Model) View() string {
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
