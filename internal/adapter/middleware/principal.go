package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

const scopeKey = "tenancy.scope"

type ScopeResolver interface {
	Resolve(ctx context.Context, token string) (*tenancy.Scope, error)
}

// Authenticate resolves the Bearer token into a scope. Nothing downstream reads the
// tenant from the request itself.
func Authenticate(r ScopeResolver, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			}
			s, err := r.Resolve(c.Request().Context(), token)
			switch {
			case errors.Is(err, errs.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			case err != nil:
				logger.Error("resolve principal", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
			c.Set(scopeKey, s)
			return next(c)
		}
	}
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

// ScopeFrom returns the scope stored by Authenticate, or nil.
func ScopeFrom(c echo.Context) *tenancy.Scope {
	s, _ := c.Get(scopeKey).(*tenancy.Scope)
	return s
}
