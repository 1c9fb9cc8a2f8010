package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/thefiredev-cloud/vortis/migrations"
	"github.com/thefiredev-cloud/vortis/pkg/pg"
)

var errPostgresRequired = errors.New("migrate: PG_CONN_URL is not set")

type migrateFunc func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the Postgres schema migrations. PG_CONN_URL must be set.`,
	}

	cmd.AddCommand(
		newMigrateStep("up", "Apply all pending migrations",
			func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
				return pg.Migrate(ctx, pool, migrations.FS, cfg, log)
			}),
		newMigrateStep("down", "Roll back the most recent migration",
			func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
				return pg.Rollback(ctx, pool, migrations.FS, cfg, log)
			}),
		newMigrateStep("status", "Show migration status",
			func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
				return pg.MigrationStatus(ctx, pool, migrations.FS, cfg, log)
			}),
	)

	return cmd
}

func newMigrateStep(use, short string, fn migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cfg.Postgres.Enabled() {
				return errPostgresRequired
			}
			log := newLogger(cfg)

			pool, err := pg.Connect(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := fn(ctx, pool, cfg.Postgres, log); err != nil {
				log.ErrorContext(ctx, "migration failed", "command", use, "error", err)
				return err
			}
			log.InfoContext(ctx, "migration finished", "command", use)
			return nil
		},
	}
}
