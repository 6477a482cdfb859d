package provider

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/picker"
	"github.com/five82/dialogs/internal/request"
	"github.com/five82/dialogs/internal/router"
)

// Menu tokens.
const (
	TokenOpenSimple       = "open.simple"
	TokenPlaylistAppend   = "playlist.append"
	TokenLibraryAppend    = "library.append"
	TokenPlaylistImport   = "playlist.import"
	TokenOpenDirectory    = "open.directory"
	TokenLibraryDirectory = "library.directory"
	TokenSwitchSkins      = "switch.skins"
	TokenQuit             = "quit"
)

// DialogToken returns the menu token that toggles the singleton for kind.
func DialogToken(kind request.Kind) string {
	return "dialog." + kind.String()
}

type fileFlow struct {
	title    string
	filter   picker.Filter
	multiple bool
	dir      bool
}

var fileFlows = map[string]fileFlow{
	TokenOpenSimple:       {title: "Open Files", filter: picker.FilterMedia, multiple: true},
	TokenPlaylistAppend:   {title: "Add to Playlist", filter: picker.FilterMedia, multiple: true},
	TokenLibraryAppend:    {title: "Add to Media Library", filter: picker.FilterMedia, multiple: true},
	TokenPlaylistImport:   {title: "Open Playlist", filter: picker.FilterPlaylist, multiple: true},
	TokenOpenDirectory:    {title: "Open Directory", dir: true},
	TokenLibraryDirectory: {title: "Add Directory to Media Library", dir: true},
}

func (p *Provider) registerTokens(discovery []string) {
	for token, flow := range fileFlows {
		p.router.RegisterMenu(token, p.pickAction(token, flow))
	}
	for _, kind := range []request.Kind{
		request.KindPlaylist,
		request.KindMessages,
		request.KindPreferences,
		request.KindStreamInfo,
		request.KindExtended,
	} {
		env := request.New(kind).From("menu")
		p.router.RegisterMenu(DialogToken(kind), func(context.Context, engine.Engine) (tea.Msg, error) {
			return env, nil
		})
	}
	p.router.RegisterMenu(TokenQuit, func(context.Context, engine.Engine) (tea.Msg, error) {
		return tea.Quit(), nil
	})

	value := p.intfName
	p.router.RegisterUpdate(TokenSwitchSkins, func(_ context.Context, eng engine.Engine) error {
		if err := eng.SetString("intf-switch", value); err != nil {
			return fmt.Errorf("switch interface: %w", err)
		}
		return nil
	})

	for _, name := range discovery {
		p.router.RegisterDiscovery(name)
	}
}

// pickAction asks the picker off-loop and hands the answer back as a
// picker.ResultMsg for Continue.
func (p *Provider) pickAction(token string, flow fileFlow) func(context.Context, engine.Engine) (tea.Msg, error) {
	pk := p.picker
	return func(ctx context.Context, eng engine.Engine) (tea.Msg, error) {
		if pk == nil {
			return nil, fmt.Errorf("%s: no file picker configured", token)
		}
		req := picker.Request{
			Title:    flow.title,
			Dir:      eng.HomeDir(),
			Filter:   flow.filter,
			Multiple: flow.multiple,
		}
		if flow.dir {
			dir, err := pk.OpenDirectory(ctx, req)
			if err != nil {
				return picker.ResultMsg{Token: token, Err: err}, nil
			}
			return picker.ResultMsg{Token: token, Paths: []string{dir}}, nil
		}
		paths, err := pk.OpenFiles(ctx, req)
		return picker.ResultMsg{Token: token, Paths: paths, Err: err}, nil
	}
}

// Continue turns a picker answer into engine calls. Cancelled pickers and
// empty selections do nothing.
func (p *Provider) Continue(msg picker.ResultMsg) tea.Cmd {
	if errors.Is(msg.Err, picker.ErrCancelled) || (msg.Err == nil && len(msg.Paths) == 0) {
		p.log.Debug("picker closed without selection", "token", msg.Token)
		return nil
	}
	if msg.Err != nil {
		return resultCmd(msg.Token, fmt.Errorf("pick files: %w", msg.Err))
	}
	if p.eng == nil {
		p.log.Warn("no engine configured", "token", msg.Token)
		return nil
	}

	apply, ok := continuations[msg.Token]
	if !ok {
		p.log.Warn("picker result for unknown flow", "token", msg.Token)
		p.metrics.RouterMiss("picker")
		return nil
	}
	ctx, eng, paths, token := p.ctx, p.eng, append([]string(nil), msg.Paths...), msg.Token
	p.log.Info("queueing picked paths", "token", token, "count", len(paths))
	return func() tea.Msg {
		return routerResult(token, apply(ctx, eng, paths))
	}
}

var continuations = map[string]func(context.Context, engine.Engine, []string) error{
	TokenOpenSimple: func(ctx context.Context, eng engine.Engine, paths []string) error {
		var errs []error
		for i, path := range paths {
			flags := engine.AddAppend | engine.AddPreparse
			if i == 0 {
				flags = engine.AddAppend | engine.AddGo
			}
			if err := eng.Add(ctx, engine.Item{Path: path}, flags, engine.PosEnd); err != nil {
				errs = append(errs, fmt.Errorf("open %s: %w", path, err))
			}
		}
		return errors.Join(errs...)
	},
	TokenPlaylistAppend: func(ctx context.Context, eng engine.Engine, paths []string) error {
		var errs []error
		for _, path := range paths {
			if err := eng.Add(ctx, engine.Item{Path: path}, engine.AddAppend|engine.AddPreparse, engine.PosEnd); err != nil {
				errs = append(errs, fmt.Errorf("append %s: %w", path, err))
			}
		}
		return errors.Join(errs...)
	},
	TokenLibraryAppend: func(ctx context.Context, eng engine.Engine, paths []string) error {
		var errs []error
		for _, path := range paths {
			if err := eng.AddToLibrary(ctx, engine.Item{Path: path, Name: path}); err != nil {
				errs = append(errs, fmt.Errorf("add %s to library: %w", path, err))
			}
		}
		return errors.Join(errs...)
	},
	TokenPlaylistImport: func(ctx context.Context, eng engine.Engine, paths []string) error {
		var errs []error
		for _, path := range paths {
			if err := eng.Import(ctx, path); err != nil {
				errs = append(errs, fmt.Errorf("import %s: %w", path, err))
			}
		}
		return errors.Join(errs...)
	},
	TokenOpenDirectory: func(ctx context.Context, eng engine.Engine, paths []string) error {
		if err := eng.AddInput(ctx, engine.Item{Path: paths[0]}, engine.AddAppend|engine.AddGo, engine.PosEnd, true); err != nil {
			return fmt.Errorf("open directory: %w", err)
		}
		return nil
	},
	TokenLibraryDirectory: func(ctx context.Context, eng engine.Engine, paths []string) error {
		if err := eng.AddInput(ctx, engine.Item{Path: paths[0]}, engine.AddAppend, engine.PosEnd, false); err != nil {
			return fmt.Errorf("add directory to library: %w", err)
		}
		return nil
	},
}

func routerResult(token string, err error) tea.Msg {
	return router.ResultMsg{Token: token, Err: err}
}

func resultCmd(token string, err error) tea.Cmd {
	return func() tea.Msg { return routerResult(token, err) }
}
