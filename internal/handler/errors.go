package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/daily-stamp/internal/middleware"
    "github.com/iliyamo/daily-stamp/internal/service"
)

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "invalid username or PIN"})
}

// persistenceFailure maps store errors to 502 with the underlying detail.
// Anything else is an unknown error.
func persistenceFailure(c echo.Context, err error) error {
	var pe *service.PersistenceError
	if errors.As(err, &pe) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "persistence_error", "message": pe.Detail()})
	}
	return UnknownError(c, err)
}

// UnknownError is the catch-all response, also used for recovered panics.
func UnknownError(c echo.Context, err error) error {
	c.Set(middleware.HandlerErrorKey, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unknown_error", "message": "unexpected error"})
}
