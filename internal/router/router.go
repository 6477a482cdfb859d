// Package router maps UI tokens (menu entries, update callbacks, discovery
// module toggles) to engine calls run off the UI loop.
package router

import (
	"context"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/metrics"
)

// MenuAction runs a menu entry. A non-nil message is handed back to the UI
// loop after the result.
type MenuAction func(ctx context.Context, eng engine.Engine) (tea.Msg, error)

// Func is an update callback.
type Func func(ctx context.Context, eng engine.Engine) error

// ResultMsg reports the outcome of a routed command.
type ResultMsg struct {
	Token  string
	Err    error
	Follow tea.Msg
}

const (
	tableMenu      = "menu"
	tableUpdate    = "update"
	tableDiscovery = "discovery"
)

// Router holds the token tables. Registration and lookup happen on the UI
// loop; the returned commands only touch the engine.
type Router struct {
	ctx     context.Context
	eng     engine.Engine
	log     *slog.Logger
	metrics *metrics.Metrics

	menus     map[string]MenuAction
	updates   map[string]Func
	discovery map[string]struct{}
}

// New returns a router whose commands run against eng and are cancelled with
// ctx.
func New(ctx context.Context, eng engine.Engine, logger *slog.Logger, m *metrics.Metrics) *Router {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{
		ctx:       ctx,
		eng:       eng,
		log:       logger,
		metrics:   m,
		menus:     make(map[string]MenuAction),
		updates:   make(map[string]Func),
		discovery: make(map[string]struct{}),
	}
}

// RegisterMenu binds token to action, replacing any previous binding.
func (r *Router) RegisterMenu(token string, action MenuAction) {
	r.menus[token] = action
}

// RegisterUpdate binds token to an update callback.
func (r *Router) RegisterUpdate(token string, fn Func) {
	r.updates[token] = fn
}

// RegisterDiscovery makes the named module toggleable.
func (r *Router) RegisterDiscovery(name string) {
	r.discovery[name] = struct{}{}
}

// Activate returns the command for a menu token, or nil when it is unbound.
func (r *Router) Activate(token string) tea.Cmd {
	action, ok := r.menus[token]
	if !ok || action == nil {
		r.miss(tableMenu, token)
		return nil
	}
	ctx, eng := r.ctx, r.eng
	return func() tea.Msg {
		follow, err := action(ctx, eng)
		return ResultMsg{Token: token, Err: err, Follow: follow}
	}
}

// ActivateUpdate returns the command for an update token, or nil when it is
// unbound.
func (r *Router) ActivateUpdate(token string) tea.Cmd {
	fn, ok := r.updates[token]
	if !ok || fn == nil {
		r.miss(tableUpdate, token)
		return nil
	}
	ctx, eng := r.ctx, r.eng
	return func() tea.Msg {
		return ResultMsg{Token: token, Err: fn(ctx, eng)}
	}
}

// ToggleDiscovery returns a command that loads name when it is not loaded and
// unloads it otherwise. The loaded state is read when the command runs.
func (r *Router) ToggleDiscovery(name string) tea.Cmd {
	if _, ok := r.discovery[name]; !ok {
		r.miss(tableDiscovery, name)
		return nil
	}
	eng := r.eng
	return func() tea.Msg {
		var err error
		if eng.IsLoaded(name) {
			err = eng.RemoveDiscovery(name)
		} else {
			err = eng.AddDiscovery(name)
		}
		return ResultMsg{Token: name, Err: err}
	}
}

// Menus returns the registered menu tokens in sorted order.
func (r *Router) Menus() []string {
	out := make([]string, 0, len(r.menus))
	for token := range r.menus {
		out = append(out, token)
	}
	slices.Sort(out)
	return out
}

// Discovery returns the registered discovery module names in sorted order.
func (r *Router) Discovery() []string {
	out := make([]string, 0, len(r.discovery))
	for name := range r.discovery {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *Router) miss(table, token string) {
	r.log.Warn("unregistered token", "table", table, "token", token)
	r.metrics.RouterMiss(table)
}
