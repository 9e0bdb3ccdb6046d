// Package main implements the propstats CLI for running and inspecting the service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dsjohal14/propstats/internal/app"
	httpapi "github.com/dsjohal14/propstats/internal/http"
	"github.com/dsjohal14/propstats/internal/libs/config"
	"github.com/dsjohal14/propstats/internal/libs/obs"
	"github.com/dsjohal14/propstats/internal/scope/db"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "propstats",
		Short:         "propstats CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	obs.InitLogger(cfg.LogLevel)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx, cfg, app.DefaultDeps(), obs.Logger("api"))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			return app.Migrate(cmd.Context(), cfg, app.DefaultDeps(), obs.Logger("migrate"))
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the current proposition count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := db.New(cmd.Context(), cfg.Database, 1)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StatsTimeout)
			defer cancel()

			count, err := store.CountPropositions(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(httpapi.StatsResponse{PropositionCount: count})
		},
	}
}
