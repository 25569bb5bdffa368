package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AlexandreFrancony/Bartending-Back/internal/service"
	"github.com/AlexandreFrancony/Bartending-Back/internal/util"
)

// writeServiceError maps service errors to responses. Unknown errors are
// logged and answered with a generic 500.
func writeServiceError(c echo.Context, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrUserExists):
		return c.JSON(http.StatusConflict, util.Error(service.ErrUserExists.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrInvalidCredentials.Error()))
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.JSON(http.StatusUnauthorized, util.Error(service.ErrPasswordMismatch.Error()))
	case errors.Is(err, service.ErrCannotModifySelf):
		return c.JSON(http.StatusForbidden, util.Error("admins cannot change or delete their own account"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error("insufficient permissions"))
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error(service.ErrUserNotFound.Error()))
	default:
		logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
	}
}
