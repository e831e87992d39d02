package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Shutdowner is a server that can be stopped gracefully
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// WaitForShutdown blocks until ctx is done or SIGINT/SIGTERM arrives,
// then shuts srv down within timeout
func WaitForShutdown(ctx context.Context, srv Shutdowner, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("Stopping preview server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Preview server forced to shut down", "error", err)
		return err
	}
	return nil
}
