package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/errs"
)

// respondError maps a use-case error to its HTTP form. Access violations and missing
// records produce the exact same body.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	err = errs.Public(err)

	var ve *errs.ValidationError
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: ve.Field, Message: ve.Message}},
		})
	case errors.Is(err, errs.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "concurrent modification, reload and retry"})
	case errors.Is(err, errs.ErrEmptyQuote):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: errs.ErrEmptyQuote.Error()})
	case errors.Is(err, errs.ErrNoClaim):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: errs.ErrNoClaim.Error()})
	}
	logger.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// bindAndValidate reads the body into dst and runs the struct validator. When ok is
// false the error response has already been written.
func bindAndValidate(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	return true, nil
}

// pathID parses the :id segment. A malformed id is reported like an unknown one.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}
