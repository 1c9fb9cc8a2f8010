package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thefiredev-cloud/vortis/migrations"
	"github.com/thefiredev-cloud/vortis/pkg/pg"
)

func newServeCommand() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the API server. Configuration is read from the environment and an optional .env file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, autoMigrate)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending migrations before serving")

	return cmd
}

func serve(ctx context.Context, autoMigrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg)

	conns, err := connect(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to connect", "error", err)
		return err
	}

	if autoMigrate && conns.pool != nil {
		if err := pg.Migrate(ctx, conns.pool, migrations.FS, cfg.Postgres, log); err != nil {
			conns.pool.Close()
			return err
		}
	}

	a, err := newApp(ctx, cfg, log, conns)
	if err != nil {
		log.ErrorContext(ctx, "failed to start", "error", err)
		return err
	}

	runErr := a.run(ctx)
	if err := a.close(); err != nil {
		log.ErrorContext(context.Background(), "failed to release resources", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
