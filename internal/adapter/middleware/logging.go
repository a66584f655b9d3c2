package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/observability"
)

// AccessLog writes one line per request and feeds the duration histogram. The route
// pattern is used as label, never the raw path.
func AccessLog(logger *zap.Logger, m *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			d := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordRequestDuration(route, d)

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", d),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			}
			if s := ScopeFrom(c); s != nil {
				fields = append(fields, zap.Uint64("tenant_id", s.TenantID()), zap.Uint64("user_id", s.UserID()))
			}
			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		}
	}
}
