// Package registry keeps the single instance of each singleton dialog the UI
// owns, such as the playlist or preferences.
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/request"
)

// ErrNotSingleton is returned for kinds that have no singleton dialog.
var ErrNotSingleton = errors.New("not a singleton dialog kind")

// Kinds lists the singleton dialog kinds.
var Kinds = []request.Kind{
	request.KindPlaylist,
	request.KindPreferences,
	request.KindMessages,
	request.KindStreamInfo,
	request.KindExtended,
}

// IsSingleton reports whether kind has a singleton dialog.
func IsSingleton(kind request.Kind) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Dialog is a stateless, at-most-one-instance panel.
type Dialog interface {
	Kind() request.Kind
	Show()
	Hide()
	Visible() bool
	Close()
}

// Factory constructs the dialog for kind, seeding it from engine state.
type Factory func(kind request.Kind) (Dialog, error)

const metricsClass = "singleton"

// Registry holds the singleton dialogs for one UI. It is owned by the UI loop
// and is not safe for concurrent use.
type Registry struct {
	factory Factory
	log     *slog.Logger
	metrics *metrics.Metrics

	slots map[request.Kind]Dialog
	order []request.Kind // stacking order, last is on top
}

// New returns an empty registry.
func New(factory Factory, logger *slog.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		factory: factory,
		log:     logger,
		metrics: m,
		slots:   make(map[request.Kind]Dialog),
	}
}

// GetOrCreate returns the dialog for kind, constructing and showing it on
// first use.
func (r *Registry) GetOrCreate(kind request.Kind) (Dialog, error) {
	if !IsSingleton(kind) {
		return nil, fmt.Errorf("get %s: %w", kind, ErrNotSingleton)
	}
	if d, ok := r.slots[kind]; ok {
		return d, nil
	}
	if r.factory == nil {
		return nil, fmt.Errorf("create %s: no dialog factory", kind)
	}
	d, err := r.factory(kind)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	r.slots[kind] = d
	r.metrics.DialogOpened(metricsClass)
	d.Show()
	r.raise(kind)
	r.log.Debug("singleton dialog created", "kind", kind.String())
	return d, nil
}

// Lookup returns the live dialog for kind without creating one.
func (r *Registry) Lookup(kind request.Kind) (Dialog, bool) {
	d, ok := r.slots[kind]
	return d, ok
}

// Toggle shows and raises a hidden dialog, or hides a visible one.
func (r *Registry) Toggle(d Dialog) {
	if d == nil {
		return
	}
	if d.Visible() {
		d.Hide()
		return
	}
	d.Show()
	r.raise(d.Kind())
}

// Request is the dispatcher entry point: the first request creates the
// dialog visible, later ones toggle it.
func (r *Registry) Request(kind request.Kind) error {
	if d, ok := r.slots[kind]; ok {
		r.Toggle(d)
		return nil
	}
	_, err := r.GetOrCreate(kind)
	return err
}

// Kill closes the dialog for kind and clears its slot. Killing an empty slot
// does nothing.
func (r *Registry) Kill(kind request.Kind) {
	d, ok := r.slots[kind]
	if !ok {
		return
	}
	delete(r.slots, kind)
	r.dropOrder(kind)
	d.Close()
	r.metrics.DialogClosed(metricsClass)
	r.log.Debug("singleton dialog killed", "kind", kind.String())
}

// KillAll closes every live singleton.
func (r *Registry) KillAll() {
	for kind := range r.slots {
		r.Kill(kind)
	}
}

// Len reports the number of live singletons.
func (r *Registry) Len() int { return len(r.slots) }

// Visible returns the visible dialogs in stacking order, topmost last.
func (r *Registry) Visible() []Dialog {
	out := make([]Dialog, 0, len(r.order))
	for _, kind := range r.order {
		if d := r.slots[kind]; d != nil && d.Visible() {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) raise(kind request.Kind) {
	r.dropOrder(kind)
	r.order = append(r.order, kind)
}

func (r *Registry) dropOrder(kind request.Kind) {
	for i, k := range r.order {
		if k == kind {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
