package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zephyrtronium/formula/internal/config"
	"github.com/zephyrtronium/formula/internal/logging"
	"github.com/zephyrtronium/formula/internal/server"
)

func main() {
	if config.LoadEnv() {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	handler := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"columns", cfg.Sheet.Columns,
		"rows", cfg.Sheet.Rows,
	)

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.New(server.Options{
			Columns:      cfg.Sheet.Columns,
			Rows:         cfg.Sheet.Rows,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			LogHandler:   handler,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			slog.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
