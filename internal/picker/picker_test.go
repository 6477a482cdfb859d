package picker

import (
	"context"
	"errors"
	"testing"
)

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		filter Filter
		path   string
		want   bool
	}{
		{FilterVideo, "/films/a.MKV", true},
		{FilterVideo, "/music/a.flac", false},
		{FilterSound, "/music/a.flac", true},
		{FilterPlaylist, "/lists/x.m3u8", true},
		{FilterMedia, "/music/a.flac", true},
		{FilterMedia, "/notes.txt", false},
		{FilterAll, "/notes.txt", true},
	}
	for _, tt := range tests {
		if got := tt.filter.Match(tt.path); got != tt.want {
			t.Fatalf("%s.Match(%q) = %v, want %v", tt.filter, tt.path, got, tt.want)
		}
	}
}

func TestExtensionsReturnsCopy(t *testing.T) {
	exts := FilterVideo.Extensions()
	exts[0] = ".zzz"
	if FilterVideo.Extensions()[0] == ".zzz" {
		t.Fatalf("Extensions exposed internal slice")
	}
	if FilterAll.Extensions() != nil {
		t.Fatalf("FilterAll.Extensions() should be nil")
	}
}

func TestFixedOpenFiles(t *testing.T) {
	p := Fixed{Files: []string{"/a.mkv", "/b.txt", "/c.mp3"}}
	ctx := context.Background()

	got, err := p.OpenFiles(ctx, Request{Filter: FilterMedia, Multiple: true})
	if err != nil {
		t.Fatalf("OpenFiles returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "/a.mkv" || got[1] != "/c.mp3" {
		t.Fatalf("OpenFiles = %v, want [/a.mkv /c.mp3]", got)
	}

	one, _ := p.OpenFiles(ctx, Request{Filter: FilterAll})
	if len(one) != 1 {
		t.Fatalf("single select returned %d paths", len(one))
	}

	if _, err := p.OpenFiles(ctx, Request{Filter: FilterPlaylist}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("OpenFiles with no match = %v, want ErrCancelled", err)
	}
}

func TestFixedOpenDirectory(t *testing.T) {
	if _, err := (Fixed{}).OpenDirectory(context.Background(), Request{}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("OpenDirectory = %v, want ErrCancelled", err)
	}
	dir, err := (Fixed{Dir: "/films"}).OpenDirectory(context.Background(), Request{})
	if err != nil || dir != "/films" {
		t.Fatalf("OpenDirectory = %q, %v", dir, err)
	}
}

func TestFixedHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Fixed{Files: []string{"/a.mkv"}}).OpenFiles(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("OpenFiles = %v, want context.Canceled", err)
	}
}
