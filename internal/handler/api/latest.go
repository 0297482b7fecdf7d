package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	drepo "foresight/internal/domain/repository"
	"foresight/pkg/cache"
	xhttp "foresight/pkg/http"
	xlogger "foresight/pkg/logger"

	"github.com/labstack/echo/v4"
)

const latestCacheTTL = 2 * time.Second

// LatestRequest carries the optional query filter for the latest endpoint.
type LatestRequest struct {
	Component string `query:"component" validate:"omitempty,max=64"`
}

// LatestHandler serves the most recent value per indicator component.
type LatestHandler struct {
	logger  *xlogger.Logger
	results drepo.ResultStore
	cache   cache.Service
}

// NewLatestHandler creates the handler. cache may be nil to disable caching.
func NewLatestHandler(logger *xlogger.Logger, results drepo.ResultStore, c cache.Service) *LatestHandler {
	return &LatestHandler{logger: logger, results: results, cache: c}
}

func (h *LatestHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/latest", h.Latest)
	e.GET("/healthz", h.Health)
}

// Latest returns a map of component name to its newest computed value. The
// stored value is raw JSON and is embedded as-is, not re-encoded.
func (h *LatestHandler) Latest(c echo.Context) error {
	ctx := c.Request().Context()

	req := &LatestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.cache != nil && req.Component == "" {
		var cached map[string]json.RawMessage
		if err := h.cache.Get(ctx, "latest", &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("latest cache read failed", xlogger.Error(err))
		}
	}

	rows, err := h.results.Latest(ctx)
	if err != nil {
		h.logger.Error("latest query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to load indicator results").WithError(err))
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, xhttp.APIResponse{
			Status:  http.StatusNotFound,
			Message: "No data available",
		})
	}

	out := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		if req.Component != "" && row.ComponentName != req.Component {
			continue
		}
		out[row.ComponentName] = row.Value
	}
	if len(out) == 0 {
		return c.JSON(http.StatusNotFound, xhttp.APIResponse{
			Status:  http.StatusNotFound,
			Message: "No data available",
		})
	}

	if h.cache != nil && req.Component == "" {
		if err := h.cache.Set(ctx, "latest", out, latestCacheTTL); err != nil {
			h.logger.Warn("latest cache write failed", xlogger.Error(err))
		}
	}

	return xhttp.SuccessResponse(c, out)
}

// Health pings the result store.
func (h *LatestHandler) Health(c echo.Context) error {
	if err := h.results.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return c.JSON(http.StatusServiceUnavailable, xhttp.APIResponse{
			Status:  http.StatusServiceUnavailable,
			Message: "storage unavailable",
		})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
