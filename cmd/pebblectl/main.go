package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"pebble/internal/config"
	"pebble/internal/database"
	"pebble/internal/seed"
	"pebble/internal/server"
	"pebble/internal/tracker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "pebblectl",
		Short:        "Pebble operations: schema migrations and demo data",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(resetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			return database.MigrateUp(cfg.PostgresURL())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			return database.MigrateDown(cfg.PostgresURL())
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo users, labels, projects and issues",
		Long: `Load the demo workspace into the configured SQL backend.

Issues are created through the store, so keys are allocated exactly as for
API clients. Nothing is written if any project already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), config.Load())
		},
	}
}

func resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop the postgres schema, recreate it and seed demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data, pass --yes to confirm")
			}
			cfg, err := postgresConfig()
			if err != nil {
				return err
			}
			if err := database.MigrateDown(cfg.PostgresURL()); err != nil {
				return err
			}
			if err := database.MigrateUp(cfg.PostgresURL()); err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm data loss")
	return cmd
}

func postgresConfig() (*config.Config, error) {
	cfg := config.Load()
	if cfg.StoreBackend != config.BackendPostgres {
		return nil, fmt.Errorf("migrations apply to the postgres backend, STORE_BACKEND is %q", cfg.StoreBackend)
	}
	return cfg, nil
}

func runSeed(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("the memory backend does not persist, seed it with SEED_DEMO=true instead")
	}
	// Migrations are applied explicitly through "migrate up" or "reset"
	cfg.AutoMigrate = cfg.StoreBackend == config.BackendSQLite

	repos, db, err := server.OpenRepositories(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	store := tracker.NewStore(repos, tracker.WithLogger(server.NewLogger(cfg.LogLevel)))
	if err := seed.Run(ctx, store, repos.Users); err != nil {
		return err
	}
	log.Println("✅ Seed complete")
	return nil
}
