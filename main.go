package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/facebookgo/httpdown"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newCommand(cfg).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCommand exposes the environment settings as flags; a flag given on the
// command line wins over the environment.
func newCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "chathub",
		Usage: "relay chat messages to every connected websocket client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: cfg.addr(), Usage: "http service address"},
			&cli.StringSliceFlag{Name: "origin", Value: cfg.AllowedOrigins, Usage: "allowed browser origin scheme://host[:port], * for any"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: cfg.LogFormat, Usage: "text or json"},
			&cli.DurationFlag{Name: "metrics-tick", Value: cfg.MetricsTick, Usage: "metrics: duration between reports, 0 disables"},
			&cli.DurationFlag{Name: "stop-timeout", Value: cfg.StopTimeout, Usage: "stop timeout"},
			&cli.DurationFlag{Name: "kill-timeout", Value: cfg.KillTimeout, Usage: "kill timeout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg.AllowedOrigins = cmd.StringSlice("origin")
			cfg.LogLevel = cmd.String("log-level")
			cfg.LogFormat = cmd.String("log-format")
			cfg.MetricsTick = cmd.Duration("metrics-tick")
			cfg.StopTimeout = cmd.Duration("stop-timeout")
			cfg.KillTimeout = cmd.Duration("kill-timeout")
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg, cmd.String("addr"))
		},
	}
}

func run(cfg *config, addr string) error {
	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	m := newMetrics(nil, os.Stderr, cfg.MetricsTick)
	m.start()

	h := newHub(cfg, logger, m, clockwork.NewRealClock())

	// Prepare the stoppable HTTP server
	server := &http.Server{
		Addr:              addr,
		Handler:           newHandler(h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	hd := &httpdown.HTTP{
		StopTimeout: cfg.StopTimeout,
		KillTimeout: cfg.KillTimeout,
	}

	logger.Info("chathub listening", "addr", addr, "origins", cfg.AllowedOrigins)
	err := httpdown.ListenAndServe(server, hd)

	h.shutdown()
	m.writeOnce()
	if err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
