package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uncss/internal/logging"
	"uncss/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reduction service",
	Long: `Serve the reduction endpoint over HTTP.

  POST /api/uncss  {"inputHtml": "...", "inputCss": "..."}  ->  {"outputCss": "..."}
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	srv, err := server.New(server.Config{
		ListenAddr:      addr,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		ShutdownTimeout: cfg.GetShutdownTimeout(),
		Ignore:          cfg.Server.Ignore,
	}, logging.For(logger, logging.CategoryServer))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := srv.Listen(); err != nil {
		return err
	}
	logger.Debug("reduce endpoint ready", zap.String("endpoint", srv.Endpoint()))

	return srv.Run(ctx)
}
