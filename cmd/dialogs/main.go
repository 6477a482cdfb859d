package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/five82/dialogs/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := pflag.String("config", "", "override config path (optional)")
	logLevel := pflag.String("log-level", "", "log level: debug, info, warn or error (optional)")
	simulate := pflag.Bool("simulate", false, "run a simulated engine that posts demo dialogs")
	pick := pflag.StringSlice("pick", nil, "answer file pickers with these paths instead of the picker modal")
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
		Simulate:   *simulate,
		Pick:       *pick,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "dialogs: %v\n", err)
		return 1
	}
	return 0
}
