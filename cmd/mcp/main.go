package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpadapter "github.com/kirillkom/sitedocs/internal/adapters/mcp"
	"github.com/kirillkom/sitedocs/internal/config"
	"github.com/kirillkom/sitedocs/internal/core/usecase"
	"github.com/kirillkom/sitedocs/internal/observability/logging"
)

const (
	serviceName = "mcp"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	// stdout belongs to the stdio transport.
	logger := logging.New(os.Stderr, serviceName, cfg.LogLevel, "json")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcpadapter.NewServer(usecase.NewClassifyUseCase(), version)

	switch cfg.MCPTransport {
	case config.MCPTransportHTTP:
		err = serveHTTP(ctx, logger, cfg.MCPHTTPAddr, srv.HTTPHandler())
	default:
		logger.Info("mcp_stdio_started")
		err = srv.ServeStdio(ctx, os.Stdin, os.Stdout, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp_server_failed", "transport", cfg.MCPTransport, "error", err)
		os.Exit(1)
	}
}

func serveHTTP(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mcp_http_listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
