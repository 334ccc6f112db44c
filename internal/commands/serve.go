package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bensuskins/habit-hub/internal/config"
	"github.com/bensuskins/habit-hub/internal/database"
	"github.com/bensuskins/habit-hub/internal/logging"
	"github.com/bensuskins/habit-hub/internal/server"
	"github.com/spf13/cobra"
)

func addServe(topLevel *cobra.Command) {
	var port string
	var driver string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the profile service.",
		Example: `
habit-hub serve
habit-hub serve --port 9000 --driver mysql
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			if driver != "" {
				cfg.DatabaseDriver = driver
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT).")
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver, sqlite or mysql.")

	topLevel.AddCommand(cmd)
}

func runServe(ctx context.Context, cfg config.Config) error {
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DatabaseDriver); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return server.New(db, cfg).Start(ctx)
}
