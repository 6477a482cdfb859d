package engine

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the engine state the UI renders.
type Snapshot struct {
	Playlist    []Item
	Library     []Item
	Current     int // index into Playlist of the playing item, -1 when stopped
	Loaded      []string
	Settings    map[string]string
	Version     uint64
	LastUpdated time.Time
	LastError   error
}

// Playing returns the item currently playing.
func (s Snapshot) Playing() (Item, bool) {
	if s.Current < 0 || s.Current >= len(s.Playlist) {
		return Item{}, false
	}
	return s.Playlist[s.Current], true
}

// Memory is an in-memory Engine. The zero value is not usable; call
// NewMemory.
type Memory struct {
	home    string
	modules []string

	mu       sync.RWMutex
	playlist []Item
	library  []Item
	current  int
	loaded   map[string]bool
	settings map[string]string
	version  uint64
	updated  time.Time
	lastErr  error
}

// NewMemory returns an engine whose discovery modules are limited to modules.
func NewMemory(home string, modules []string) *Memory {
	return &Memory{
		home:     home,
		modules:  slices.Clone(modules),
		current:  -1,
		loaded:   make(map[string]bool),
		settings: make(map[string]string),
	}
}

func (m *Memory) Add(ctx context.Context, item Item, flags AddFlags, pos int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.Path == "" {
		return m.fail(fmt.Errorf("add item: empty path"))
	}
	if item.Name == "" {
		item.Name = item.Path
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := insertAt(&m.playlist, item, pos)
	if flags.Has(AddGo) {
		m.current = idx
	} else if m.current >= idx {
		m.current++
	}
	m.touch()
	return nil
}

func (m *Memory) Import(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return m.fail(fmt.Errorf("import playlist: empty path"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlist = append(m.playlist, Item{Path: path, Name: path})
	m.touch()
	return nil
}

func (m *Memory) AddInput(ctx context.Context, item Item, flags AddFlags, pos int, playlistTarget bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.Path == "" {
		return m.fail(fmt.Errorf("add input: empty path"))
	}
	item.Directory = true
	if item.Name == "" {
		item.Name = item.Path
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !playlistTarget {
		insertAt(&m.library, item, pos)
		m.touch()
		return nil
	}
	idx := insertAt(&m.playlist, item, pos)
	if flags.Has(AddGo) {
		m.current = idx
	} else if m.current >= idx {
		m.current++
	}
	m.touch()
	return nil
}

// AddToLibrary appends item to the media library.
func (m *Memory) AddToLibrary(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item.Name == "" {
		item.Name = item.Path
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.library = append(m.library, item)
	m.touch()
	return nil
}

func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Playlist:    slices.Clone(m.playlist),
		Library:     slices.Clone(m.library),
		Current:     m.current,
		Settings:    maps.Clone(m.settings),
		Version:     m.version,
		LastUpdated: m.updated,
	}
	for _, name := range m.modules {
		if m.loaded[name] {
			snap.Loaded = append(snap.Loaded, name)
		}
	}
	if m.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", m.lastErr)
	}
	return snap
}

func (m *Memory) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded[name]
}

func (m *Memory) AddDiscovery(name string) error {
	if !slices.Contains(m.modules, name) {
		return m.fail(fmt.Errorf("load %q: %w", name, ErrUnknownModule))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded[name] {
		m.loaded[name] = true
		m.touch()
	}
	return nil
}

func (m *Memory) RemoveDiscovery(name string) error {
	if !slices.Contains(m.modules, name) {
		return m.fail(fmt.Errorf("unload %q: %w", name, ErrUnknownModule))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded[name] {
		delete(m.loaded, name)
		m.touch()
	}
	return nil
}

func (m *Memory) Modules() []string { return slices.Clone(m.modules) }

func (m *Memory) HomeDir() string { return m.home }

func (m *Memory) SetString(name, value string) error {
	if name == "" {
		return m.fail(fmt.Errorf("set setting: empty name"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[name] = value
	m.touch()
	return nil
}

// String returns a setting value.
func (m *Memory) String(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[name]
	return v, ok
}

// fail records err for display and returns it.
func (m *Memory) fail(err error) error {
	m.mu.Lock()
	m.lastErr = err
	m.updated = time.Now()
	m.mu.Unlock()
	return err
}

// touch must be called with mu held.
func (m *Memory) touch() {
	m.version++
	m.updated = time.Now()
	m.lastErr = nil
}

func insertAt(list *[]Item, item Item, pos int) int {
	if pos < 0 || pos >= len(*list) {
		*list = append(*list, item)
		return len(*list) - 1
	}
	*list = slices.Insert(*list, pos, item)
	return pos
}
