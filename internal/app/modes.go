package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sfmcp/internal/config"
	"sfmcp/internal/metrics"
	"sfmcp/pkg/logging"
)

// Run serves the configured transport until ctx is cancelled, SIGINT or
// SIGTERM arrives, or (for stdio) the client closes stdin. The Salesforce
// client is closed on return.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if err := a.Close(); err != nil {
			logging.Warn("Shutdown", "Error during shutdown: %v", err)
		}
	}()

	if a.services.Metrics != nil {
		shutdown, err := startMetrics(a.config.Settings.Metrics.Addr, a.services.Metrics)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	switch a.config.Settings.Server.Transport {
	case config.TransportSSE:
		return a.runSSEMode(ctx)
	default:
		return a.runStdioMode(ctx)
	}
}

func (a *Application) runStdioMode(ctx context.Context) error {
	stdin, stdout := a.config.Stdin, a.config.Stdout
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return a.services.Server.ServeStdio(ctx, stdin, stdout)
}

func (a *Application) runSSEMode(ctx context.Context) error {
	logging.Info("CLI", "Press Ctrl+C to stop.")
	return a.services.Server.ServeSSE(ctx)
}

func startMetrics(addr string, recorder *metrics.Recorder) (func(), error) {
	srv, err := metrics.Listen(addr, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(); err != nil {
			logging.Error("Metrics", err, "Metrics server error")
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("Metrics", err, "Metrics server shutdown error")
		}
		<-done
	}, nil
}
