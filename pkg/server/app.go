package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	httppkg "auri/pkg/http"
	"auri/pkg/logger"
)

// App owns the process lifecycle: start the HTTP server, wait for a
// termination signal, then shut everything down in order.
type App struct {
	server          *httppkg.Server
	log             *logger.Logger
	shutdownTimeout time.Duration
	closers         []func() error
}

// Option configures App.
type Option func(*App)

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) { a.shutdownTimeout = d }
}

// WithCloser registers a resource closed after the server stops.
func WithCloser(fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, fn) }
}

// New creates an App.
func New(server *httppkg.Server, log *logger.Logger, opts ...Option) *App {
	a := &App{
		server:          server,
		log:             log,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the server and blocks until shutdown completes.
func (a *App) Run() error {
	if err := a.server.Start(); err != nil {
		return err
	}
	a.log.Info("application started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	a.log.Info("shutdown signal received", logger.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("server shutdown failed", logger.Error(err))
	}

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Warn("resource close failed", logger.Error(err))
		}
	}

	a.log.Info("application stopped")
	return nil
}
