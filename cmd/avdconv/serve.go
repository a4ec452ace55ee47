package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/avdconv/service"
	"github.com/benoitkugler/avdconv/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Start the HTTP API.

Routes:
  POST /v1/convert/avd2svg   body: a Vector Drawable
  POST /v1/convert/svg2avd   body: an SVG document
  GET  /healthz
  GET  /metrics              Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(slog.LevelInfo)
			runner, err := newRunner(cfg, logger)
			if err != nil {
				return err
			}
			runner.Telemetry = telemetry.New()

			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("max-body") {
				maxBody = cfg.Server.MaxBodyBytes
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := service.New(runner, service.WithLogger(logger), service.WithMaxBodyBytes(maxBody))
			err = srv.ListenAndServe(ctx, addr)
			if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", 1<<20, "maximum request body size in bytes")

	return cmd
}
