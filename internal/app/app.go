package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/dialogs/internal/config"
	"github.com/five82/dialogs/internal/engine"
	"github.com/five82/dialogs/internal/logging"
	"github.com/five82/dialogs/internal/mailbox"
	"github.com/five82/dialogs/internal/metrics"
	"github.com/five82/dialogs/internal/picker"
	"github.com/five82/dialogs/internal/request"
	"github.com/five82/dialogs/internal/ui"
)

// Options configure the dialogs application.
type Options struct {
	ConfigPath string   // empty uses ~/.config/dialogs/config.toml
	LogLevel   string   // overrides log_level when set
	Simulate   bool     // run the simulated engine
	Pick       []string // scripted picker paths; empty uses the file picker modal
}

// Run boots the dialog provider until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	sink, err := logging.Open(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer sink.Close()
	logger := sink.Logger

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	promReg := prometheus.NewRegistry()
	mx := metrics.New(promReg)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(runCtx, cfg.MetricsAddr, promReg); err != nil {
				logger.Error("metrics endpoint stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	eng := engine.NewMemory(cfg.HomeDir, cfg.DiscoveryModules)
	mb := mailbox.New(mailbox.Options{
		Capacity: cfg.QueueCapacity,
		Logger:   logger.With("component", "mailbox"),
		Metrics:  mx,
	})

	var (
		pk    picker.Picker
		modal *ui.ModalPicker
	)
	if len(opts.Pick) > 0 {
		pk = picker.Fixed{Files: opts.Pick, Dir: opts.Pick[0]}
	} else {
		modal = ui.NewModalPicker()
		pk = modal
	}

	model := ui.New(ui.Options{
		Context:         runCtx,
		Engine:          eng,
		Mailbox:         mb,
		Backlog:         sink.Backlog,
		Picker:          pk,
		Logger:          logger,
		Metrics:         mx,
		Tick:            cfg.Tick,
		InterfaceSwitch: cfg.InterfaceSwitch,
		Discovery:       cfg.DiscoveryModules,
	})
	defer model.Teardown()

	p := tea.NewProgram(model, tea.WithContext(runCtx), tea.WithAltScreen())
	if modal != nil {
		modal.Attach(p.Send)
	}

	go func() {
		err := mb.Run(runCtx, func(env request.Envelope) { p.Send(env) })
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("mailbox stopped", "error", err)
		}
	}()

	if opts.Simulate {
		StartSimulator(runCtx, mb, eng, logger.With("component", "simulator"), 0)
	}

	logger.Info("dialogs starting",
		"home", cfg.HomeDir,
		"log_file", cfg.LogFile,
		"discovery", strings.Join(cfg.DiscoveryModules, ","),
		"simulate", opts.Simulate,
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	logger.Info("dialogs stopped")
	return nil
}
