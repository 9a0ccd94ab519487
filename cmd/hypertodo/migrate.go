package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	adapterhttp "hypertodo/internal/adapter/http"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the todos schema to DATABASE_URL and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)

			if err != nil {
				return err
			}

			setupSlog(cfg)

			dbConfig, err := cfg.Database()

			if err != nil {
				return err
			}

			// opening the store applies pending migrations
			_, closeDB, err := adapterhttp.OpenTodoRepository(cmd.Context(), cfg, nil)

			if err != nil {
				return err
			}

			closeDB()

			slog.Info("Migrations applied", "driver", dbConfig.Driver)

			return nil
		},
	}
}
