package interaction

import (
	"log/slog"
	"sort"

	"github.com/five82/dialogs/internal/metrics"
)

// Dialog is the UI object bound to a record. Implementations are owned and
// touched only by the UI loop.
type Dialog interface {
	Show()
	Hide()
	Visible() bool
	Refresh(Content)
	Close()
}

// Factory builds the dialog for a record.
type Factory func(rec *Record) Dialog

const (
	classLive      = "interaction"
	classLingering = "lingering"
)

type entry struct {
	rec    *Record // nil once lingering
	dialog Dialog
}

// Manager runs the interaction state machine on the UI loop. It is not safe
// for concurrent use.
type Manager struct {
	factory Factory
	log     *slog.Logger
	metrics *metrics.Metrics

	next      Handle
	live      map[Handle]*entry
	lingering map[Handle]*entry
}

// NewManager returns a Manager using factory to construct dialogs.
func NewManager(factory Factory, logger *slog.Logger, m *metrics.Metrics) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		factory:   factory,
		log:       logger,
		metrics:   m,
		live:      make(map[Handle]*entry),
		lingering: make(map[Handle]*entry),
	}
}

// Apply executes req.Action against req.Record.
func (m *Manager) Apply(req Request) {
	rec := req.Record
	if rec == nil {
		m.log.Warn("interaction request without record", "action", req.Action.String())
		return
	}

	switch req.Action {
	case ActionNew:
		m.create(rec)
	case ActionUpdate:
		if e := m.lookup(rec, req.Action); e != nil {
			e.dialog.Refresh(rec.Content())
		}
	case ActionHide:
		if e := m.lookup(rec, req.Action); e != nil {
			e.dialog.Hide()
			rec.advance(StatusHidden)
		}
	case ActionDestroy:
		m.destroy(rec)
	default:
		m.log.Warn("unknown interaction action", "record", rec.String(), "action", req.Action.String())
	}
}

func (m *Manager) create(rec *Record) {
	if rec.Status() == StatusDestroyed {
		m.log.Debug("ignoring new for destroyed interaction", "record", rec.String())
		return
	}
	if !rec.Handle().IsZero() {
		m.log.Warn("duplicate new for interaction", "record", rec.String(), "handle", uint64(rec.Handle()))
		return
	}
	if m.factory == nil {
		m.log.Warn("no interaction dialog factory configured", "record", rec.String())
		return
	}

	dialog := m.factory(rec)
	m.next++
	h := m.next
	if !rec.bind(h) {
		dialog.Close()
		return
	}
	m.live[h] = &entry{rec: rec, dialog: dialog}
	m.metrics.DialogOpened(classLive)

	if rec.Status() == StatusAnswered {
		m.log.Debug("interaction answered before display", "record", rec.String())
		return
	}
	dialog.Show()
}

// lookup returns the live entry for rec, or nil when the action arrived before
// New or after the dialog went away. Both are benign races.
func (m *Manager) lookup(rec *Record, action Action) *entry {
	h := rec.Handle()
	if h.IsZero() || rec.Status() == StatusDestroyed {
		m.log.Debug("stale interaction action", "record", rec.String(), "action", action.String())
		return nil
	}
	e, ok := m.live[h]
	if !ok || e.rec != rec {
		m.log.Debug("interaction handle not live", "record", rec.String(), "action", action.String())
		return nil
	}
	return e
}

func (m *Manager) destroy(rec *Record) {
	h := rec.Handle()
	e, ok := m.live[h]
	if h.IsZero() || !ok || e.rec != rec {
		// Nothing to tear down, but a late New must not resurrect the record.
		rec.advance(StatusDestroyed)
		return
	}

	delete(m.live, h)
	m.metrics.DialogClosed(classLive)
	// Only an error still on screen lingers.
	if rec.Flags.Has(FlagNonBlockingError) && e.dialog.Visible() {
		e.rec = nil
		m.lingering[h] = e
		m.metrics.DialogOpened(classLingering)
	} else {
		e.dialog.Close()
	}
	rec.advance(StatusDestroyed)
}

// Answer records the user's response for the dialog behind h and hides it.
func (m *Manager) Answer(h Handle, a Answer) bool {
	e, ok := m.live[h]
	if !ok {
		return false
	}
	if !e.rec.Respond(a) {
		return false
	}
	e.dialog.Hide()
	return true
}

// Dismiss closes a lingering dialog the engine has already let go of.
func (m *Manager) Dismiss(h Handle) bool {
	e, ok := m.lingering[h]
	if !ok {
		return false
	}
	delete(m.lingering, h)
	e.dialog.Close()
	m.metrics.DialogClosed(classLingering)
	return true
}

// View describes a visible interaction dialog for rendering.
type View struct {
	Handle    Handle
	Dialog    Dialog
	Lingering bool
}

// Visible returns visible dialogs ordered from oldest to newest.
func (m *Manager) Visible() []View {
	views := make([]View, 0, len(m.live)+len(m.lingering))
	for h, e := range m.live {
		if e.dialog.Visible() {
			views = append(views, View{Handle: h, Dialog: e.dialog})
		}
	}
	for h, e := range m.lingering {
		if e.dialog.Visible() {
			views = append(views, View{Handle: h, Dialog: e.dialog, Lingering: true})
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Handle < views[j].Handle })
	return views
}

// Live reports the number of dialogs still bound to a record.
func (m *Manager) Live() int { return len(m.live) }

// Lingering reports the number of non-blocking error dialogs kept after
// their record was destroyed.
func (m *Manager) Lingering() int { return len(m.lingering) }

// Shutdown closes every dialog. Record statuses are left as they are.
func (m *Manager) Shutdown() {
	for h, e := range m.live {
		e.dialog.Close()
		delete(m.live, h)
		m.metrics.DialogClosed(classLive)
	}
	for h, e := range m.lingering {
		e.dialog.Close()
		delete(m.lingering, h)
		m.metrics.DialogClosed(classLingering)
	}
}
