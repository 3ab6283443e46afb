package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fae-dev/fae-core/internal/config"
	"github.com/fae-dev/fae-core/internal/hostchannel"
	"github.com/fae-dev/fae-core/internal/permissions"
)

func buildServeCmd() *cobra.Command {
	var metricsAddr string
	var watchConfig bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host command/event channel over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, metricsAddr, watchConfig)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (disabled if empty)")
	cmd.Flags().BoolVar(&watchConfig, "watch-config", false, "live-reload the log level on config file changes")
	return cmd
}

func runServe(cmd *cobra.Command, metricsAddr string, watchConfig bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLogLevel(cfg.Logging.Level))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})).With("component", "faecore")

	perms := permissions.New()
	hub := hostchannel.NewHub()
	router := hostchannel.NewRouter(hub, perms)

	if metricsAddr != "" || cfg.Metrics.Enabled {
		addr := metricsAddr
		if addr == "" {
			addr = cfg.Metrics.Addr
		}
		go serveMetrics(addr, logger)
	}

	stop := make(chan struct{})
	if watchConfig {
		go func() {
			// Only log level is hot-swapped here; breaker/turn/provider
			// settings stay snapshotted in cfg for the life of this process.
			err := config.Watch(configPath, logger, stop, func(reloaded *config.Config) {
				levelVar.Set(parseLogLevel(reloaded.Logging.Level))
			})
			if err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	bridge := hostchannel.NewStdioBridge(router, hub, logger)
	logger.Info("serving host channel over stdio")
	return bridge.Run(os.Stdin, os.Stdout, stop)
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
