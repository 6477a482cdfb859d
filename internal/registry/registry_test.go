package registry

import (
	"errors"
	"testing"

	"github.com/five82/dialogs/internal/request"
)

type panel struct {
	kind    request.Kind
	visible bool
	closed  bool
}

func (p *panel) Kind() request.Kind { return p.kind }
func (p *panel) Show()              { p.visible = true }
func (p *panel) Hide()              { p.visible = false }
func (p *panel) Visible() bool      { return p.visible }
func (p *panel) Close()             { p.closed = true; p.visible = false }

type countingFactory struct {
	created map[request.Kind]int
	panels  []*panel
	err     error
}

func (f *countingFactory) build(kind request.Kind) (Dialog, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.created == nil {
		f.created = make(map[request.Kind]int)
	}
	f.created[kind]++
	p := &panel{kind: kind}
	f.panels = append(f.panels, p)
	return p, nil
}

func TestGetOrCreateIsUnique(t *testing.T) {
	f := &countingFactory{}
	r := New(f.build, nil, nil)

	first, err := r.GetOrCreate(request.KindPlaylist)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		d, err := r.GetOrCreate(request.KindPlaylist)
		if err != nil {
			t.Fatalf("GetOrCreate returned error: %v", err)
		}
		if d != first {
			t.Fatalf("GetOrCreate returned a different instance")
		}
	}
	if f.created[request.KindPlaylist] != 1 {
		t.Fatalf("created = %d, want 1", f.created[request.KindPlaylist])
	}
	if !first.Visible() {
		t.Fatalf("new dialog should start visible")
	}
}

func TestToggleAlternates(t *testing.T) {
	r := New((&countingFactory{}).build, nil, nil)
	d, _ := r.GetOrCreate(request.KindMessages)

	want := true
	for i := 0; i < 6; i++ {
		if d.Visible() != want {
			t.Fatalf("toggle %d: Visible = %v, want %v", i, d.Visible(), want)
		}
		r.Toggle(d)
		want = !want
	}
}

func TestRequestCreatesThenToggles(t *testing.T) {
	f := &countingFactory{}
	r := New(f.build, nil, nil)

	if err := r.Request(request.KindPreferences); err != nil {
		t.Fatalf("Request returned error: %v", err)
	}
	d, _ := r.Lookup(request.KindPreferences)
	if !d.Visible() {
		t.Fatalf("first Request should show the dialog")
	}
	_ = r.Request(request.KindPreferences)
	if d.Visible() {
		t.Fatalf("second Request should hide the dialog")
	}
	_ = r.Request(request.KindPreferences)
	if !d.Visible() {
		t.Fatalf("third Request should show the dialog")
	}
	if f.created[request.KindPreferences] != 1 {
		t.Fatalf("created = %d, want 1", f.created[request.KindPreferences])
	}
}

func TestKillIsIdempotent(t *testing.T) {
	f := &countingFactory{}
	r := New(f.build, nil, nil)
	r.Kill(request.KindStreamInfo)

	d, _ := r.GetOrCreate(request.KindStreamInfo)
	r.Kill(request.KindStreamInfo)
	r.Kill(request.KindStreamInfo)
	if !d.(*panel).closed {
		t.Fatalf("Kill did not close the dialog")
	}
	if _, ok := r.Lookup(request.KindStreamInfo); ok {
		t.Fatalf("slot not cleared after Kill")
	}

	again, _ := r.GetOrCreate(request.KindStreamInfo)
	if again == d {
		t.Fatalf("GetOrCreate after Kill returned the killed instance")
	}
	if f.created[request.KindStreamInfo] != 2 {
		t.Fatalf("created = %d, want 2", f.created[request.KindStreamInfo])
	}
}

func TestKillAll(t *testing.T) {
	f := &countingFactory{}
	r := New(f.build, nil, nil)
	for _, k := range Kinds {
		if _, err := r.GetOrCreate(k); err != nil {
			t.Fatalf("GetOrCreate(%s) returned error: %v", k, err)
		}
	}
	r.KillAll()
	if r.Len() != 0 {
		t.Fatalf("Len after KillAll = %d, want 0", r.Len())
	}
	for _, p := range f.panels {
		if !p.closed {
			t.Fatalf("%s not closed by KillAll", p.kind)
		}
	}
}

func TestNonSingletonKind(t *testing.T) {
	r := New((&countingFactory{}).build, nil, nil)
	if _, err := r.GetOrCreate(request.KindInteraction); !errors.Is(err, ErrNotSingleton) {
		t.Fatalf("GetOrCreate(interaction) = %v, want ErrNotSingleton", err)
	}
}

func TestFactoryErrorLeavesSlotEmpty(t *testing.T) {
	boom := errors.New("boom")
	r := New((&countingFactory{err: boom}).build, nil, nil)
	if err := r.Request(request.KindPlaylist); !errors.Is(err, boom) {
		t.Fatalf("Request = %v, want boom", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}

func TestVisibleStackingOrder(t *testing.T) {
	r := New((&countingFactory{}).build, nil, nil)
	pl, _ := r.GetOrCreate(request.KindPlaylist)
	_, _ = r.GetOrCreate(request.KindMessages)

	r.Toggle(pl) // hide
	r.Toggle(pl) // show and raise

	vis := r.Visible()
	if len(vis) != 2 {
		t.Fatalf("Visible = %d dialogs, want 2", len(vis))
	}
	if vis[1].Kind() != request.KindPlaylist {
		t.Fatalf("top dialog = %s, want playlist", vis[1].Kind())
	}
}
