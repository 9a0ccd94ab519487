package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	adapterhttp "hypertodo/internal/adapter/http"
	"hypertodo/internal/adapter/http/routes"
	"hypertodo/internal/adapter/telemetry"
	"hypertodo/pkg/config"
)

const serviceVersion = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "hypertodo",
		Short:        "Server-rendered todo list and click counter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("env-file", "", "path to a .env file (default: ./.env when present)")

	root.AddCommand(newTodoCmd(), newCounterCmd(), newMigrateCmd())

	return root
}

// loadConfig reads env and the optional env file, letting a changed --port flag win.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	v, err := config.NewViper(envFile)

	if err != nil {
		return nil, err
	}

	if flag := cmd.Flags().Lookup("port"); flag != nil {
		if err := v.BindPFlag("PORT", flag); err != nil {
			return nil, err
		}
	}

	return config.Load(v)
}

func addPortFlag(cmd *cobra.Command) {
	cmd.Flags().Int("port", 3000, "HTTP listen port (overrides PORT)")
}

func setupSlog(cfg *config.AppConfig) {
	var handler slog.Handler

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}

	slog.SetDefault(slog.New(handler).With("service", cfg.ServiceName))
}

type runtimeDeps struct {
	logger    *config.Logger
	telemetry *telemetry.Container
}

func startRuntime(ctx context.Context, cfg *config.AppConfig) (*runtimeDeps, error) {
	setupSlog(cfg)

	logger, err := config.NewLogger(cfg)

	if err != nil {
		return nil, err
	}

	tel, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	}, slog.Default())

	if err != nil {
		logger.Sync()
		return nil, err
	}

	return &runtimeDeps{logger: logger, telemetry: tel}, nil
}

func (r *runtimeDeps) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.telemetry.Shutdown(ctx); err != nil {
		slog.Warn("Telemetry shutdown failed", "error", err)
	}

	r.logger.Sync()
}

func (r *runtimeDeps) routerDeps(cfg *config.AppConfig) routes.Dependencies {
	return routes.Dependencies{
		Config:  cfg,
		Logger:  r.logger,
		Metrics: r.telemetry.AppMetrics,
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, handler http.Handler) error {
	return adapterhttp.Serve(ctx, adapterhttp.NewServer(cfg.Port, handler))
}
