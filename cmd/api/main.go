// Package main implements the HTTP API server for propstats.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsjohal14/propstats/internal/app"
	"github.com/dsjohal14/propstats/internal/libs/config"
	"github.com/dsjohal14/propstats/internal/libs/obs"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Addr()).Int32("max_conns", cfg.MaxConns).Msg("starting API server")

	if err := app.Run(ctx, cfg, app.DefaultDeps(), logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
