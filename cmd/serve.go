package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zenoharsh/ragserve/internal/api"
	"github.com/zenoharsh/ragserve/internal/app"
	"github.com/zenoharsh/ragserve/internal/config"
	"github.com/zenoharsh/ragserve/internal/log"
)

// newLogger builds the process logger from config. An unknown level falls
// back to info rather than failing startup.
func newLogger(cfg *config.Config) log.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Provision the vector index (building it on first run) and serve the
chat API. If provisioning fails the server still starts, answering chat
requests with a fixed error notice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("starting ragserve", "version", AppVersion, "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srvCfg := api.ServerConfig{
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		GateCapacity:   cfg.GateCapacity,
		GateQueueDepth: cfg.GateQueueDepth,
	}
	// A degraded app has no engine; the server handles nil explicitly.
	if !a.Degraded() {
		srvCfg.Engine = a.Engine
	}

	return api.NewServer(srvCfg).Run(ctx, cfg.Addr)
}
