package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/five82/dialogs/internal/provider"
	"github.com/five82/dialogs/internal/request"
)

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Open flows
	OpenFiles        key.Binding
	PlaylistAppend   key.Binding
	LibraryAppend    key.Binding
	PlaylistImport   key.Binding
	OpenDirectory    key.Binding
	LibraryDirectory key.Binding

	// Singleton dialogs
	Playlist    key.Binding
	Messages    key.Binding
	Preferences key.Binding
	StreamInfo  key.Binding
	Extended    key.Binding

	SwitchSkins key.Binding
	Discovery   key.Binding

	// Focused interaction dialog
	Default   key.Binding
	Alternate key.Binding
	Other     key.Binding
	Cancel    key.Binding
	NextField key.Binding

	// File picker
	PickerDone   key.Binding
	PickerCancel key.Binding
}

// menuBinding ties a key binding to a router menu token.
type menuBinding struct {
	binding key.Binding
	token   string
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		OpenFiles: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open files"),
		),
		PlaylistAppend: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add to playlist"),
		),
		LibraryAppend: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Add to media library"),
		),
		PlaylistImport: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "Import playlist"),
		),
		OpenDirectory: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Open directory"),
		),
		LibraryDirectory: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Add directory to library"),
		),

		Playlist: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Playlist"),
		),
		Messages: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Messages"),
		),
		Preferences: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Preferences"),
		),
		StreamInfo: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Stream info"),
		),
		Extended: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Extended controls"),
		),

		SwitchSkins: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "Switch interface"),
		),
		Discovery: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Toggle discovery module"),
		),

		Default: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Default button"),
		),
		Alternate: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Alternate button"),
		),
		Other: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Other button"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel / dismiss"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field"),
		),

		PickerDone: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Finish selection"),
		),
		PickerCancel: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "Close picker"),
		),
	}
}

// menus returns the bindings that activate router menu tokens.
func (k keyMap) menus() []menuBinding {
	return []menuBinding{
		{k.OpenFiles, provider.TokenOpenSimple},
		{k.PlaylistAppend, provider.TokenPlaylistAppend},
		{k.LibraryAppend, provider.TokenLibraryAppend},
		{k.PlaylistImport, provider.TokenPlaylistImport},
		{k.OpenDirectory, provider.TokenOpenDirectory},
		{k.LibraryDirectory, provider.TokenLibraryDirectory},
		{k.Playlist, provider.DialogToken(request.KindPlaylist)},
		{k.Messages, provider.DialogToken(request.KindMessages)},
		{k.Preferences, provider.DialogToken(request.KindPreferences)},
		{k.StreamInfo, provider.DialogToken(request.KindStreamInfo)},
		{k.Extended, provider.DialogToken(request.KindExtended)},
	}
}

// ShortHelp returns bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.OpenFiles, k.Playlist, k.Messages, k.Help, k.Quit}
}

// FullHelp returns bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.OpenFiles, k.PlaylistAppend, k.LibraryAppend, k.PlaylistImport, k.OpenDirectory, k.LibraryDirectory},
		{k.Playlist, k.Messages, k.Preferences, k.StreamInfo, k.Extended},
		{k.SwitchSkins, k.Discovery},
		{k.Default, k.Alternate, k.Other, k.Cancel, k.NextField},
		{k.PickerDone, k.PickerCancel},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
