package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"postbridge/internal/application/usecase"
	"postbridge/internal/presentation"
	"postbridge/pkg/logger"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, usecase.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal errors are logged and
// replaced by a generic reason.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	reason := err.Error()

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		reason = "internal error, try again later"
	}

	c.Response().Header().Set(presentation.ReasonTag, reason)

	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}

	return c.JSON(status, map[string]string{"error": reason})
}
