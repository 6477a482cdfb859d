package provider

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/interaction"
	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/picker"
	"github.com/five82/dialogs/internal/registry"
	"github.com/five82/dialogs/internal/request"
	"github.com/five82/dialogs/internal/router"
)

type stubPanel struct {
	kind    request.Kind
	visible bool
}

func (s *stubPanel) Kind() request.Kind { return s.kind }
func (s *stubPanel) Show()              { s.visible = true }
func (s *stubPanel) Hide()              { s.visible = false }
func (s *stubPanel) Visible() bool      { return s.visible }
func (s *stubPanel) Close()             { s.visible = false }

type stubBox struct{ visible bool }

func (s *stubBox) Show()                       { s.visible = true }
func (s *stubBox) Hide()                       { s.visible = false }
func (s *stubBox) Visible() bool               { return s.visible }
func (s *stubBox) Refresh(interaction.Content) {}
func (s *stubBox) Close()                      { s.visible = false }

type fixture struct {
	p       *Provider
	eng     *engine.Memory
	reg     *registry.Registry
	manager *interaction.Manager
	router  *router.Router
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, pk picker.Picker) fixture {
	t.Helper()
	mx := metrics.New(nil)
	eng := engine.NewMemory("/home/u", []string{"sap", "upnp"})
	reg := registry.New(func(kind request.Kind) (registry.Dialog, error) {
		return &stubPanel{kind: kind}, nil
	}, nil, mx)
	manager := interaction.NewManager(func(*interaction.Record) interaction.Dialog { return &stubBox{} }, nil, mx)
	rt := router.New(context.Background(), eng, nil, mx)
	p := New(Options{
		Engine:          eng,
		Registry:        reg,
		Interactions:    manager,
		Router:          rt,
		Picker:          pk,
		Metrics:         mx,
		InterfaceSwitch: "skins2",
		Discovery:       []string{"sap"},
	})
	return fixture{p: p, eng: eng, reg: reg, manager: manager, router: rt, metrics: mx}
}

func routerMsg(t *testing.T, cmd tea.Cmd) router.ResultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("cmd is nil")
	}
	raw := cmd()
	msg, ok := raw.(router.ResultMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want router.ResultMsg", raw)
	}
	return msg
}

func TestDispatchSingletonToggles(t *testing.T) {
	f := newFixture(t, nil)

	f.p.Dispatch(request.New(request.KindPlaylist))
	d, ok := f.reg.Lookup(request.KindPlaylist)
	if !ok || !d.Visible() {
		t.Fatalf("playlist not created visible")
	}
	f.p.Dispatch(request.New(request.KindPlaylist))
	if d.Visible() {
		t.Fatalf("second playlist request should hide it")
	}
	if got := testutil.ToFloat64(f.metrics.Dispatched.WithLabelValues("playlist")); got != 2 {
		t.Fatalf("dispatched[playlist] = %v, want 2", got)
	}
}

func TestDispatchInteraction(t *testing.T) {
	f := newFixture(t, nil)
	rec := interaction.NewRecord(0, interaction.Content{Title: "Hi"})

	f.p.Dispatch(rec.Envelope(interaction.ActionNew))
	if rec.Handle().IsZero() || f.manager.Live() != 1 {
		t.Fatalf("interaction not created")
	}
	f.p.Dispatch(rec.Envelope(interaction.ActionDestroy))
	if rec.Status() != interaction.StatusDestroyed || f.manager.Live() != 0 {
		t.Fatalf("interaction not destroyed")
	}

	// Malformed payload is ignored.
	f.p.Dispatch(request.WithPayload(request.KindInteraction, "junk"))
}

func TestDispatchStubsAndUnimplemented(t *testing.T) {
	f := newFixture(t, nil)
	for _, kind := range []request.Kind{
		request.KindOpenFile, request.KindOpenNetwork, request.KindBookmarks,
		request.KindVLM, request.KindPopupMenu, request.KindVideoPopupMenu,
	} {
		if cmd := f.p.Dispatch(request.New(kind)); cmd != nil {
			t.Fatalf("Dispatch(%s) returned a command", kind)
		}
		if got := testutil.ToFloat64(f.metrics.Unimplemented.WithLabelValues(kind.String())); got != 0 {
			t.Fatalf("stub %s counted as unimplemented", kind)
		}
	}
	if f.reg.Len() != 0 {
		t.Fatalf("stubs created singletons")
	}

	f.p.Dispatch(request.New(request.KindWizard))
	f.p.Dispatch(request.New(request.Kind(99)))
	if got := testutil.ToFloat64(f.metrics.Unimplemented.WithLabelValues("wizard")); got != 1 {
		t.Fatalf("unimplemented[wizard] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.Unimplemented.WithLabelValues("kind(99)")); got != 1 {
		t.Fatalf("unimplemented[kind(99)] = %v, want 1", got)
	}
}

func TestOpenSimpleFlow(t *testing.T) {
	f := newFixture(t, picker.Fixed{Files: []string{"/a.mkv", "/b.mp3", "/c.ogg"}})

	res := routerMsg(t, f.router.Activate(TokenOpenSimple))
	if res.Err != nil {
		t.Fatalf("Activate Err = %v", res.Err)
	}
	pick, ok := res.Follow.(picker.ResultMsg)
	if !ok || len(pick.Paths) != 3 {
		t.Fatalf("Follow = %#v, want picker result with 3 paths", res.Follow)
	}
	if got := len(f.eng.Snapshot().Playlist); got != 0 {
		t.Fatalf("engine touched before continuation: %d items", got)
	}

	done := routerMsg(t, f.p.Continue(pick))
	if done.Err != nil || done.Token != TokenOpenSimple {
		t.Fatalf("Continue result = %#v", done)
	}
	snap := f.eng.Snapshot()
	if len(snap.Playlist) != 3 {
		t.Fatalf("playlist len = %d, want 3", len(snap.Playlist))
	}
	if playing, _ := snap.Playing(); playing.Path != "/a.mkv" {
		t.Fatalf("playing = %q, want first file", playing.Path)
	}
}

func TestLibraryAndImportFlows(t *testing.T) {
	f := newFixture(t, nil)

	routerMsg(t, f.p.Continue(picker.ResultMsg{Token: TokenLibraryAppend, Paths: []string{"/a.flac"}}))
	routerMsg(t, f.p.Continue(picker.ResultMsg{Token: TokenPlaylistImport, Paths: []string{"/x.m3u"}}))
	routerMsg(t, f.p.Continue(picker.ResultMsg{Token: TokenLibraryDirectory, Paths: []string{"/music"}}))

	snap := f.eng.Snapshot()
	if len(snap.Library) != 2 || snap.Library[0].Name != "/a.flac" || !snap.Library[1].Directory {
		t.Fatalf("library = %#v", snap.Library)
	}
	if len(snap.Playlist) != 1 || snap.Playlist[0].Path != "/x.m3u" {
		t.Fatalf("playlist = %#v", snap.Playlist)
	}
	if snap.Current != -1 {
		t.Fatalf("Current = %d, want -1 for non-playing flows", snap.Current)
	}
}

func TestOpenDirectoryFlow(t *testing.T) {
	f := newFixture(t, picker.Fixed{Dir: "/films"})
	res := routerMsg(t, f.router.Activate(TokenOpenDirectory))
	pick := res.Follow.(picker.ResultMsg)
	routerMsg(t, f.p.Continue(pick))

	snap := f.eng.Snapshot()
	if playing, ok := snap.Playing(); !ok || playing.Path != "/films" || !playing.Directory {
		t.Fatalf("playing = %#v, %v", playing, ok)
	}
}

func TestContinueCancelled(t *testing.T) {
	f := newFixture(t, picker.Fixed{})
	res := routerMsg(t, f.router.Activate(TokenPlaylistAppend))
	pick := res.Follow.(picker.ResultMsg)
	if !errors.Is(pick.Err, picker.ErrCancelled) {
		t.Fatalf("pick Err = %v, want ErrCancelled", pick.Err)
	}
	if cmd := f.p.Continue(pick); cmd != nil {
		t.Fatalf("Continue on cancelled picker returned a command")
	}
}

func TestContinuePickerError(t *testing.T) {
	f := newFixture(t, nil)
	boom := errors.New("boom")
	res := routerMsg(t, f.p.Continue(picker.ResultMsg{Token: TokenOpenSimple, Err: boom}))
	if !errors.Is(res.Err, boom) {
		t.Fatalf("Err = %v, want boom", res.Err)
	}
}

func TestSwitchSkinsAndDiscovery(t *testing.T) {
	f := newFixture(t, nil)
	if res := routerMsg(t, f.router.ActivateUpdate(TokenSwitchSkins)); res.Err != nil {
		t.Fatalf("switch.skins Err = %v", res.Err)
	}
	if v, _ := f.eng.String("intf-switch"); v != "skins2" {
		t.Fatalf("intf-switch = %q, want skins2", v)
	}

	routerMsg(t, f.router.ToggleDiscovery("sap"))
	if !f.eng.IsLoaded("sap") {
		t.Fatalf("sap not loaded after toggle")
	}
	if cmd := f.router.ToggleDiscovery("upnp"); cmd != nil {
		t.Fatalf("upnp was not registered but returned a command")
	}
}

func TestDialogTokenFollowsWithEnvelope(t *testing.T) {
	f := newFixture(t, nil)
	res := routerMsg(t, f.router.Activate(DialogToken(request.KindMessages)))
	env, ok := res.Follow.(request.Envelope)
	if !ok || env.Kind != request.KindMessages || env.Sender != "menu" {
		t.Fatalf("Follow = %#v, want messages envelope from menu", res.Follow)
	}
}

func TestQuitToken(t *testing.T) {
	f := newFixture(t, nil)
	res := routerMsg(t, f.router.Activate(TokenQuit))
	if _, ok := res.Follow.(tea.QuitMsg); !ok {
		t.Fatalf("Follow = %#v, want tea.QuitMsg", res.Follow)
	}
}
