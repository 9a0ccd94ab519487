package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	adapterhttp "hypertodo/internal/adapter/http"
	"hypertodo/internal/adapter/http/routes"
)

func newCounterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Serve the click counter demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)

			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt, err := startRuntime(ctx, cfg)

			if err != nil {
				return err
			}

			defer rt.close()

			container, err := adapterhttp.NewCounterContainer(ctx, cfg, rt.telemetry.NewTelemetryProbe())

			if err != nil {
				return err
			}

			defer container.Close()

			router := routes.SetupCounterRouter(routes.CounterHandlers{
				CounterHandler: container.CounterHandler,
				HealthHandler:  container.HealthHandler,
			}, rt.routerDeps(cfg))

			return serve(ctx, cfg, router)
		},
	}

	addPortFlag(cmd)

	return cmd
}
