package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/middleware"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/auth"
)

type AuthHandler struct {
	uc     *auth.Usecase
	logger *zap.Logger
}

func NewAuthHandler(uc *auth.Usecase, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{uc: uc, logger: logger}
}

type loginResp struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    uint64 `json:"user_id"`
	TenantID  uint64 `json:"tenant_id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in auth.LoginInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.uc.Login(c.Request().Context(), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:    res.User.ID,
		TenantID:  res.User.TenantID,
		Role:      string(res.User.Role),
		Name:      res.User.Name,
	})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var in auth.ChangePasswordInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	if err := h.uc.ChangePassword(c.Request().Context(), middleware.ScopeFrom(c), in); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
