package handler // HTTP handlers for the stamp API

import (
    "net/http" // status codes

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint used by load balancers and monitors.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
