package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run starts the task workers and the HTTP server and blocks until ctx is
// cancelled or the server fails. Shutdown drains HTTP requests first, then
// stops the workers, both bounded by the configured shutdown timeout.
func (app *application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", app.config.Server.Port, err)
	}
	return app.serve(ctx, ln)
}

// serve runs the server on an existing listener.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		// Synchronous generation can take as long as the model does.
		WriteTimeout: app.config.LLM.RequestTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	app.taskManager.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.Server.ShutdownTimeout)
		defer cancel()

		var shutdownErr error
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("Server shutdown failed", "error", err)
			shutdownErr = fmt.Errorf("server shutdown failed: %w", err)
		}
		app.cleanup(shutdownCtx)
		return shutdownErr
	})

	if err := g.Wait(); err != nil {
		return err
	}
	app.logger.Info("Server shutdown completed")
	return nil
}
