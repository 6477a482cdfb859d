package engine

import (
	"context"
	"errors"
	"strings"
)

// ErrUnknownModule is returned when a discovery module name is not available.
var ErrUnknownModule = errors.New("unknown discovery module")

// PosEnd appends at the end of a list.
const PosEnd = -1

// AddFlags control how an item enters the playlist.
type AddFlags uint8

const (
	AddAppend AddFlags = 1 << iota
	AddGo              // start playback of the item
	AddPreparse        // parse metadata ahead of playback
)

func (f AddFlags) Has(flag AddFlags) bool { return f&flag != 0 }

func (f AddFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(AddAppend) {
		parts = append(parts, "append")
	}
	if f.Has(AddGo) {
		parts = append(parts, "go")
	}
	if f.Has(AddPreparse) {
		parts = append(parts, "preparse")
	}
	return strings.Join(parts, "|")
}

// Item is one playlist or library entry.
type Item struct {
	Path      string
	Name      string
	Directory bool
}

// Playlist is the engine's playlist and media library.
type Playlist interface {
	// Add inserts item into the playlist at pos, or at the end for PosEnd.
	Add(ctx context.Context, item Item, flags AddFlags, pos int) error
	// Import loads the playlist file at path into the playlist.
	Import(ctx context.Context, path string) error
	// AddInput adds a directory input. playlistTarget selects the playlist
	// over the media library.
	AddInput(ctx context.Context, item Item, flags AddFlags, pos int, playlistTarget bool) error
	// AddToLibrary appends item to the media library without playing it.
	AddToLibrary(ctx context.Context, item Item) error
	Snapshot() Snapshot
}

// Discovery manages service discovery modules.
type Discovery interface {
	IsLoaded(name string) bool
	AddDiscovery(name string) error
	RemoveDiscovery(name string) error
	Modules() []string
}

// Settings exposes the engine configuration the dialogs read or write.
type Settings interface {
	HomeDir() string
	SetString(name, value string) error
}

// Engine is everything the dialog layer calls into.
type Engine interface {
	Playlist
	Discovery
	Settings
}
