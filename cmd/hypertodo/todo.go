package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	adapterhttp "hypertodo/internal/adapter/http"
	"hypertodo/internal/adapter/http/routes"
)

func newTodoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Serve the todo list demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)

			if err != nil {
				return err
			}

			// fail before anything else starts when DATABASE_URL is unusable
			if _, err := cfg.Database(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := startRuntime(ctx, cfg)

			if err != nil {
				return err
			}

			defer rt.close()

			container, err := adapterhttp.NewTodoContainer(ctx, cfg, rt.logger, rt.telemetry.NewTelemetryProbe())

			if err != nil {
				return err
			}

			defer container.Close()

			router := routes.SetupTodoRouter(routes.TodoHandlers{
				TodoHandler:   container.TodoHandler,
				HealthHandler: container.HealthHandler,
			}, rt.routerDeps(cfg))

			return serve(ctx, cfg, router)
		},
	}

	addPortFlag(cmd)

	return cmd
}
