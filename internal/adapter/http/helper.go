package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/adapter/middleware"
	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/apperr"
)

// statusOf maps the ledger error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState),
		errors.Is(err, apperr.ErrAlreadyProcessed),
		errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrIneligible),
		errors.Is(err, apperr.ErrOverpayment):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError renders err. Internal errors are logged and hidden from the caller;
// errors the caller can fix by changing the request only reach debug.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	code := statusOf(err)
	fields := []zap.Field{
		zap.String("method", c.Request().Method), zap.String("path", c.Path()),
		zap.Int("status", code), zap.Error(err),
	}
	switch {
	case code == http.StatusInternalServerError:
		log.Error("request failed", fields...)
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	case apperr.IsClientError(err):
		log.Debug("request rejected", fields...)
	default:
		log.Warn("request failed", fields...)
	}
	resp := ErrorResponse{Error: err.Error()}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) && ve.Field != "" {
		resp.Details = []FieldError{{Field: ve.Field, Message: ve.Message}}
	}
	return c.JSON(code, resp)
}

// bind decodes and validates the body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return nil
}

func actorOf(c echo.Context) (auth.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return auth.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	return a, nil
}

// pathID reads a 32-char hex path parameter.
func pathID(c echo.Context, name string) (string, error) {
	v := c.Param(name)
	if !reHex32.MatchString(v) {
		return "", echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid path parameter",
			Details: []FieldError{{Field: name, Message: "must be 32-char lowercase hex"}},
		})
	}
	return v, nil
}
