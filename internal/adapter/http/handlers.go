package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check is a named readiness probe (database, redis).
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	checks   []Check
	registry *prometheus.Registry
}

func NewHandler(registry *prometheus.Registry, checks ...Check) *Handler {
	return &Handler{checks: checks, registry: registry}
}

func (h *Handler) Health(c echo.Context) error {
	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Ping(c.Request().Context()); err != nil {
			deps[chk.Name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "up"
	}
	return c.JSON(code, map[string]any{
		"status":       status,
		"dependencies": deps,
		"time":         time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Metrics serves the private registry only.
func (h *Handler) Metrics() echo.HandlerFunc {
	if h.registry == nil {
		return func(c echo.Context) error { return c.NoContent(http.StatusNotFound) }
	}
	return echo.WrapHandler(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
