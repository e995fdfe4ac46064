// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/quadrature-engine/internal/analysis"
	"github.com/pdiddy/quadrature-engine/internal/history"
	"github.com/pdiddy/quadrature-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Long: `Serve exposes POST /analyze, GET /methods, GET /health, and GET /metrics.
Requests are rate limited and bounded by the configured request timeout.
With --record (or history.enabled) every successful analysis is journaled.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	level, err := parseLevel(viper.GetString("log_level"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := server.InitTracer(cfg.Server.TraceStdout, os.Stderr)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	var opts []server.Option
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithRecorder(store))
		slog.Info("recording analyses", "dir", store.Dir())
	}

	an := analysis.New(cfg.Analysis, nil)
	return server.New(cfg.Server, an, opts...).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().Bool("trace-stdout", false, "export OpenTelemetry spans to stderr")
	serveCmd.Flags().Bool("record", false, "journal every successful analysis")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.trace_stdout", serveCmd.Flags().Lookup("trace-stdout"))
	viper.BindPFlag("history.enabled", serveCmd.Flags().Lookup("record"))

	rootCmd.AddCommand(serveCmd)
}
