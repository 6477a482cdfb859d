// Package picker defines the file chooser collaborator used by the open
// dialogs and a scripted implementation.
package picker

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

// ErrCancelled is returned when the user closes the picker without choosing.
var ErrCancelled = errors.New("picker cancelled")

// Filter restricts the files a picker offers.
type Filter int

const (
	FilterMedia Filter = iota
	FilterVideo
	FilterSound
	FilterPlaylist
	FilterAll
)

var (
	videoExts    = []string{".asf", ".avi", ".divx", ".dv", ".flv", ".m1v", ".m2v", ".m2ts", ".m4v", ".mkv", ".mov", ".mp2", ".mp4", ".mpeg", ".mpg", ".mts", ".mxf", ".ogm", ".ogv", ".ps", ".rm", ".rmvb", ".ts", ".vob", ".webm", ".wmv"}
	soundExts    = []string{".a52", ".aac", ".ac3", ".aiff", ".amr", ".ape", ".dts", ".flac", ".it", ".m4a", ".m4p", ".mka", ".mod", ".mp1", ".mp3", ".mpc", ".oga", ".ogg", ".oma", ".opus", ".spx", ".wav", ".wma", ".wv", ".xm"}
	playlistExts = []string{".asx", ".b4s", ".cue", ".ifo", ".m3u", ".m3u8", ".pls", ".ram", ".sdp", ".vlc", ".wax", ".wvx", ".xspf"}
)

// Extensions lists the lower-case extensions f accepts. FilterAll returns nil.
func (f Filter) Extensions() []string {
	switch f {
	case FilterVideo:
		return slices.Clone(videoExts)
	case FilterSound:
		return slices.Clone(soundExts)
	case FilterPlaylist:
		return slices.Clone(playlistExts)
	case FilterMedia:
		all := make([]string, 0, len(videoExts)+len(soundExts)+len(playlistExts))
		all = append(all, videoExts...)
		all = append(all, soundExts...)
		all = append(all, playlistExts...)
		return all
	default:
		return nil
	}
}

// Match reports whether path passes the filter.
func (f Filter) Match(path string) bool {
	exts := f.Extensions()
	if exts == nil {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

func (f Filter) String() string {
	switch f {
	case FilterMedia:
		return "media"
	case FilterVideo:
		return "video"
	case FilterSound:
		return "sound"
	case FilterPlaylist:
		return "playlist"
	default:
		return "all"
	}
}

// Request describes what to ask the user for.
type Request struct {
	Title    string
	Dir      string // starting directory
	Filter   Filter
	Multiple bool
}

// Picker asks the user for files or a directory. Calls block until the user
// answers or ctx is done, so callers run them off the UI loop.
type Picker interface {
	OpenFiles(ctx context.Context, req Request) ([]string, error)
	OpenDirectory(ctx context.Context, req Request) (string, error)
}

// ResultMsg carries a picker answer back into the UI loop. Token names the
// flow that asked.
type ResultMsg struct {
	Token string
	Paths []string
	Err   error
}

// Fixed answers every request with preset paths.
type Fixed struct {
	Files []string
	Dir   string
	Err   error
}

// OpenFiles returns the preset files that pass req.Filter.
func (f Fixed) OpenFiles(ctx context.Context, req Request) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	var out []string
	for _, p := range f.Files {
		if req.Filter.Match(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, ErrCancelled
	}
	if !req.Multiple {
		out = out[:1]
	}
	return out, nil
}

// OpenDirectory returns the preset directory.
func (f Fixed) OpenDirectory(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	if f.Dir == "" {
		return "", ErrCancelled
	}
	return f.Dir, nil
}
