// Package provider dispatches request envelopes arriving on the UI loop to the
// singleton registry, the interaction manager and the stub handlers, and owns
// the menu flows that open files into the engine.
package provider

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/interaction"
	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/picker"
	"github.com/five82/dialogs/internal/registry"
	"github.com/five82/dialogs/internal/request"
	"github.com/five82/dialogs/internal/router"
)

// Options wire a Provider to its collaborators.
type Options struct {
	Context      context.Context
	Engine       engine.Engine
	Registry     *registry.Registry
	Interactions *interaction.Manager
	Router       *router.Router
	Picker       picker.Picker
	Logger       *slog.Logger
	Metrics      *metrics.Metrics

	// InterfaceSwitch is written to the engine's intf-switch setting by the
	// switch.skins update.
	InterfaceSwitch string
	// Discovery lists the module names the router can toggle.
	Discovery []string
}

// Provider is the UI-side dialog provider. All methods run on the UI loop.
type Provider struct {
	ctx      context.Context
	eng      engine.Engine
	reg      *registry.Registry
	manager  *interaction.Manager
	router   *router.Router
	picker   picker.Picker
	log      *slog.Logger
	metrics  *metrics.Metrics
	intfName string
}

// New builds a provider and registers its menu, update and discovery tokens
// on opts.Router.
func New(opts Options) *Provider {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Provider{
		ctx:      ctx,
		eng:      opts.Engine,
		reg:      opts.Registry,
		manager:  opts.Interactions,
		router:   opts.Router,
		picker:   opts.Picker,
		log:      logger,
		metrics:  opts.Metrics,
		intfName: opts.InterfaceSwitch,
	}
	if p.router != nil {
		p.registerTokens(opts.Discovery)
	}
	return p
}

// Dispatch routes env to its handler. It never blocks; work that would is
// returned as a command.
func (p *Provider) Dispatch(env request.Envelope) tea.Cmd {
	kind := env.Kind
	p.metrics.EnvelopeDispatched(kind.String())
	p.log.Debug("dispatching envelope", "envelope", env.String())

	switch {
	case kind.IsOpen():
		p.openDialog(kind)
	case registry.IsSingleton(kind):
		if p.reg == nil {
			p.log.Warn("no dialog registry configured", "kind", kind.String())
			return nil
		}
		if err := p.reg.Request(kind); err != nil {
			p.log.Error("singleton dialog failed", "kind", kind.String(), "error", err)
		}
	case kind == request.KindBookmarks || kind == request.KindVLM:
		p.bookmarksDialog(kind)
	case kind.IsPopup():
		p.popupMenu(kind, env.Args())
	case kind == request.KindInteraction:
		req, ok := env.Payload.(interaction.Request)
		if !ok {
			p.log.Warn("interaction envelope without request", "envelope", env.String())
			return nil
		}
		if p.manager == nil {
			p.log.Warn("no interaction manager configured", "envelope", env.String())
			return nil
		}
		p.manager.Apply(req)
	default:
		p.log.Warn("unimplemented dialog", "kind", kind.String(), "sender", env.Sender)
		p.metrics.UnimplementedDialog(kind.String())
	}
	return nil
}

// openDialog would show the tabbed open dialog for kind. Opening media goes
// through the open.* menu flows instead.
func (p *Provider) openDialog(kind request.Kind) {
	p.log.Debug("open dialog not provided", "kind", kind.String())
}

// bookmarksDialog covers bookmarks and the VLM manager, neither of which has
// a panel yet.
func (p *Provider) bookmarksDialog(kind request.Kind) {
	p.log.Debug("bookmarks dialog not provided", "kind", kind.String())
}

func (p *Provider) popupMenu(kind request.Kind, args request.Args) {
	p.log.Debug("popup menu not provided", "kind", kind.String(), "args", len(args))
}
