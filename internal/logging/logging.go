// Package logging builds the slog logger used by every dialogs package. The
// terminal belongs to the UI, so records go to a log file and to an in-memory
// backlog the Messages dialog renders.
package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
)

const (
	timeFormat          = "2006-01-02 15:04:05"
	defaultBacklogLines = 500
)

// Options configure Open.
type Options struct {
	File         string // empty keeps records in the backlog only
	Level        string // debug, info, warn or error
	BacklogLines int
}

// Sink owns the log file and backlog behind a logger.
type Sink struct {
	Logger  *slog.Logger
	Backlog *Backlog
	Level   *slog.LevelVar
	file    *os.File
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	name = strings.TrimSpace(name)
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

// Open creates the log file directory, seeds the backlog with the tail of the
// previous session and returns the sink.
func Open(opts Options) (*Sink, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	lines := opts.BacklogLines
	if lines <= 0 {
		lines = defaultBacklogLines
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	backlog := NewBacklog(lines)
	sink := &Sink{Backlog: backlog, Level: levelVar}

	handlers := []slog.Handler{newHandler(backlog, levelVar)}
	var tailErr error
	if opts.File != "" {
		// The previous tail only seeds the backlog; a bad one is not fatal.
		var previous []string
		previous, tailErr = ReadTail(opts.File, lines)
		backlog.Seed(previous)

		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sink.file = f
		handlers = append(handlers, newHandler(f, levelVar))
	}

	sink.Logger = slog.New(&fanoutHandler{handlers: handlers})
	if tailErr != nil {
		sink.Logger.Warn("previous log not loaded", "file", opts.File, "error", tailErr)
	}
	return sink, nil
}

// Close flushes and closes the log file.
func (s *Sink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func newHandler(w interface{ Write([]byte) (int, error) }, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    true,
	})
}

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}
