package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avkern/authgate/internal/config"
	"github.com/avkern/authgate/internal/observability"
)

// run starts the servers and the config watcher, then blocks until a
// termination signal arrives and shuts everything down gracefully.
func (app *application) run(configPath string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := config.NewWatcher(configPath, app.reloadSeeds,
		config.WithWatcherLogger(app.logger),
	)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			app.logger.Warn("failed to stop config watcher", observability.Error(err))
		}
	}()

	errCh := make(chan error, 3)

	go func() {
		app.logger.Info("http server listening",
			observability.String("addr", app.httpServer.Addr),
		)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		app.logger.Info("metrics server listening",
			observability.String("addr", app.metricsServer.Addr),
		)
		if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if err := app.serveGRPC(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		app.logger.Info("shutdown signal received",
			observability.String("signal", sig.String()),
		)
	case err := <-errCh:
		app.logger.Error("server failed", observability.Error(err))
		return app.shutdown(err)
	}

	return app.shutdown(nil)
}

// shutdown stops all servers within the configured shutdown timeout.
func (app *application) shutdown(cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()

	app.logger.Info("shutting down",
		observability.Duration("timeout", app.cfg.Server.ShutdownTimeout),
	)

	if err := app.httpServer.Shutdown(ctx); err != nil {
		app.logger.Warn("http server shutdown failed", observability.Error(err))
	}
	if err := app.metricsServer.Shutdown(ctx); err != nil {
		app.logger.Warn("metrics server shutdown failed", observability.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		app.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		app.grpcServer.Stop()
	}

	app.logger.Info("shutdown complete")

	return cause
}
