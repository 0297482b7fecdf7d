package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "foresight/pkg/http"
	applogger "foresight/pkg/logger"
)

// Runner is a long-lived background loop. Run blocks until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// App encapsulates one service's lifecycle: background loops, an optional
// HTTP server, and resource cleanup, all stopped on SIGINT/SIGTERM.
type App struct {
	name   string
	logger *applogger.Logger

	runners    []namedRunner
	httpServer *xhttp.Server
	closers    []namedCloser

	shutdownTimeout time.Duration
}

type namedRunner struct {
	name   string
	runner Runner
}

type namedCloser struct {
	name  string
	close func() error
}

// New creates an App.
func New(name string, logger *applogger.Logger) *App {
	return &App{
		name:            name,
		logger:          logger,
		shutdownTimeout: 10 * time.Second,
	}
}

// AddRunner registers a background loop started by Run.
func (a *App) AddRunner(name string, r Runner) *App {
	a.runners = append(a.runners, namedRunner{name: name, runner: r})
	return a
}

// SetHTTPServer attaches an HTTP server to the lifecycle.
func (a *App) SetHTTPServer(s *xhttp.Server) *App {
	a.httpServer = s
	return a
}

// AddCloser registers a cleanup function invoked on shutdown, in order.
func (a *App) AddCloser(name string, close func() error) *App {
	a.closers = append(a.closers, namedCloser{name: name, close: close})
	return a
}

// SetShutdownTimeout overrides the HTTP shutdown grace period.
func (a *App) SetShutdownTimeout(d time.Duration) *App {
	if d > 0 {
		a.shutdownTimeout = d
	}
	return a
}

// Run starts everything and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, nr := range a.runners {
		nr := nr
		go func() {
			if err := nr.runner.Run(ctx); err != nil && ctx.Err() == nil {
				a.logger.Error("runner stopped",
					applogger.String("runner", nr.name),
					applogger.Error(err))
			}
		}()
		a.logger.Info("runner started", applogger.String("runner", nr.name))
	}

	if a.httpServer != nil {
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	a.logger.Info("service started", applogger.String("service", a.name))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}

	for _, nc := range a.closers {
		if err := nc.close(); err != nil {
			a.logger.Warn("close error",
				applogger.String("resource", nc.name),
				applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete", applogger.String("service", a.name))
	return nil
}
