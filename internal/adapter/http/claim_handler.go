package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/middleware"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/negotiation"
)

type ClaimHandler struct {
	uc     *negotiation.Usecase
	logger *zap.Logger
}

func NewClaimHandler(uc *negotiation.Usecase, logger *zap.Logger) *ClaimHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimHandler{uc: uc, logger: logger}
}

func (h *ClaimHandler) Open(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	var in negotiation.OpenClaimInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	dto, err := h.uc.OpenClaim(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ClaimHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	dto, err := h.uc.History(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClaimHandler) SetAgreedPrice(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	var in negotiation.AgreedPriceInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	dto, err := h.uc.RecordAgreedPrice(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto)
}
