package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/adapter/middleware"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/usecase/quote"
)

type QuoteHandler struct {
	uc     *quote.Usecase
	logger *zap.Logger
}

func NewQuoteHandler(uc *quote.Usecase, logger *zap.Logger) *QuoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteHandler{uc: uc, logger: logger}
}

func (h *QuoteHandler) List(c echo.Context) error {
	f := quote.ListFilter{Status: c.QueryParam("status")}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, h.logger, errs.Invalid("limit", "must be an integer"))
		}
		f.Limit = n
	}
	out, err := h.uc.List(c.Request().Context(), middleware.ScopeFrom(c), f)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"quotes": out})
}

func (h *QuoteHandler) Create(c echo.Context) error {
	var in quote.CreateQuoteInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), middleware.ScopeFrom(c), in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *QuoteHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	dto, err := h.uc.Get(c.Request().Context(), middleware.ScopeFrom(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *QuoteHandler) AddItem(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	var in quote.ItemInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	dto, err := h.uc.AddItem(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *QuoteHandler) Transition(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return respondError(c, h.logger, errs.ErrNotFound)
	}
	var in quote.TransitionInput
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	dto, err := h.uc.Transition(c.Request().Context(), middleware.ScopeFrom(c), id, in)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto)
}
