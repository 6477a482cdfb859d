package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/interaction"
	"github.com/five82/dialogs/internal/mailbox"
	"github.com/five82/dialogs/internal/request"
)

const (
	defaultSimInterval = 400 * time.Millisecond
	maxBackoff         = 30 * time.Second

	// questionPatience is how many ticks the simulator waits for an answer
	// before it withdraws the question.
	questionPatience = 50
	roundPause       = 20
	sender           = "simulator"
)

var demoItems = []engine.Item{
	{Path: "/media/demo/big-buck-bunny.mkv", Name: "Big Buck Bunny"},
	{Path: "/media/demo/sintel.webm", Name: "Sintel"},
	{Path: "/media/demo/soundtrack.flac", Name: "Soundtrack"},
}

// Simulator plays the engine side of the dialog protocol: it posts
// interaction records and singleton toggles the way a media engine would.
type Simulator struct {
	post     mailbox.Poster
	eng      engine.Engine
	log      *slog.Logger
	interval time.Duration
}

// NewSimulator returns a simulator posting to post. eng may be nil.
func NewSimulator(post mailbox.Poster, eng engine.Engine, logger *slog.Logger, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = defaultSimInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{post: post, eng: eng, log: logger, interval: interval}
}

// StartSimulator launches a background goroutine that repeats the demo round
// until ctx is cancelled or the mailbox closes. It returns immediately.
func StartSimulator(ctx context.Context, post mailbox.Poster, eng engine.Engine, logger *slog.Logger, interval time.Duration) {
	s := NewSimulator(post, eng, logger, interval)
	go func() {
		for {
			if err := s.Round(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.Info("simulator stopped", "error", err)
				}
				return
			}
			if err := s.wait(ctx, roundPause*s.interval); err != nil {
				return
			}
		}
	}()
}

// Round runs one pass of the demo: show the playlist, run a cancellable
// progress dialog, ask a question, and report a non-blocking error.
func (s *Simulator) Round(ctx context.Context) error {
	s.seedPlaylist(ctx)
	if err := s.send(ctx, request.New(request.KindPlaylist).From(sender)); err != nil {
		return err
	}
	if err := s.progress(ctx); err != nil {
		return err
	}
	if err := s.question(ctx); err != nil {
		return err
	}
	return s.playbackError(ctx)
}

func (s *Simulator) seedPlaylist(ctx context.Context) {
	if s.eng == nil || len(s.eng.Snapshot().Playlist) > 0 {
		return
	}
	for i, item := range demoItems {
		flags := engine.AddAppend
		if i == 0 {
			flags |= engine.AddGo
		}
		if err := s.eng.Add(ctx, item, flags, engine.PosEnd); err != nil {
			s.log.Warn("seed playlist failed", "path", item.Path, "error", err)
			return
		}
	}
}

func (s *Simulator) progress(ctx context.Context) error {
	content := interaction.Content{
		Title:       "Scanning media library",
		Description: "Looking for new files in /media/demo",
	}
	rec := interaction.NewRecord(interaction.FlagProgress, content)
	if err := s.send(ctx, rec.Envelope(interaction.ActionNew)); err != nil {
		return err
	}

	const steps = 10
	for step := 1; step <= steps; step++ {
		if err := s.wait(ctx, s.interval); err != nil {
			return err
		}
		if _, answered := rec.Answer(); answered {
			s.log.Info("scan cancelled", "record", rec.String())
			break
		}
		content.Progress = float64(step) * 100 / steps
		content.TimeToGo = time.Duration(steps-step) * s.interval
		rec.SetContent(content)
		if err := s.send(ctx, rec.Envelope(interaction.ActionUpdate)); err != nil {
			return err
		}
	}
	return s.send(ctx, rec.Envelope(interaction.ActionDestroy))
}

func (s *Simulator) question(ctx context.Context) error {
	rec := interaction.NewRecord(interaction.FlagYesNoCancel, interaction.Content{
		Title:           "Resume playback?",
		Description:     "Big Buck Bunny was stopped at 04:12.",
		DefaultButton:   "Resume",
		AlternateButton: "Start over",
	})
	if err := s.send(ctx, rec.Envelope(interaction.ActionNew)); err != nil {
		return err
	}

	for tick := 0; tick < questionPatience; tick++ {
		if answer, ok := rec.Answer(); ok {
			s.log.Info("question answered", "record", rec.String(), "button", answer.Button.String())
			break
		}
		if err := s.wait(ctx, s.interval); err != nil {
			return err
		}
	}
	return s.send(ctx, rec.Envelope(interaction.ActionDestroy))
}

func (s *Simulator) playbackError(ctx context.Context) error {
	rec := interaction.NewRecord(interaction.FlagNonBlockingError, interaction.Content{
		Title:       "Playback error",
		Description: "cannot open /media/demo/missing.mkv: no such file",
	})
	if err := s.send(ctx, rec.Envelope(interaction.ActionNew)); err != nil {
		return err
	}
	if err := s.wait(ctx, s.interval); err != nil {
		return err
	}
	// The dialog outlives the record until the user dismisses it.
	return s.send(ctx, rec.Envelope(interaction.ActionDestroy))
}

// send posts env, backing off while the mailbox is full.
func (s *Simulator) send(ctx context.Context, env request.Envelope) error {
	failures := 0
	for {
		err := s.post.Post(env)
		if err == nil {
			return nil
		}
		if !errors.Is(err, mailbox.ErrFull) {
			return fmt.Errorf("post %s: %w", env.Kind, err)
		}
		failures++
		delay := calculateBackoff(failures, s.interval)
		s.log.Debug("mailbox full, backing off", "envelope", env.String(), "delay", delay)
		if err := s.wait(ctx, delay); err != nil {
			return err
		}
	}
}

func (s *Simulator) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	if failures > 16 {
		return maxBackoff
	}
	d := base << failures
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
