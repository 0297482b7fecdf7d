package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the Prometheus scrape endpoint for services that run no
// API server of their own. Run blocks until ctx is cancelled, then shuts
// the listener down, so it plugs into the app lifecycle as a runner.
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer creates a scrape server listening on the given port.
func NewServer(port int, path string) *Server {
	if path == "" {
		path = "/metrics"
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET(path, echo.WrapHandler(promhttp.Handler()))
	return &Server{echo: e, addr: fmt.Sprintf(":%d", port)}
}

// Run serves scrapes until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return ctx.Err()
}
