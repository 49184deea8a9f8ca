package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/storyimport/internal/config"
	"github.com/JonMunkholm/storyimport/internal/core"
	"github.com/JonMunkholm/storyimport/internal/logging"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	cmd := &cobra.Command{
		Use:           "storyctl",
		Short:         "Import stories from the CSV export and attach media",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("load %s: %w", envFile, err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg

			// Logs go to stderr; stdout carries only command output.
			logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
			cmd.SetContext(core.WithRequester(cmd.Context(), core.Requester{Via: "cli"}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to load if present")

	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newAttachMediaCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	return cmd
}

// connectDB opens a pool sized for a single CLI run.
func (a *app) connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(a.cfg.Database.MaxConns)
	poolConfig.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
