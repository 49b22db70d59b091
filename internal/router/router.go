package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                     // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's bundled middleware (recover, CORS)
	"go.uber.org/zap"                                 // structured logging

	"github.com/iliyamo/daily-stamp/internal/handler"    // HTTP handlers
	"github.com/iliyamo/daily-stamp/internal/middleware" // request logging, unlock tokens, rate limit, cache
)

// Setup installs the middleware shared by every route.  A panic inside a
// handler is logged with its stack and answered with unknown_error; Recover
// sits innermost so the request logger still sees the 500.
func Setup(e *echo.Echo, log *zap.Logger, origins []string) {
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: origins}))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return handler.UnknownError(c, err)
		},
	}))
}

// RegisterRoutes registers the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers registration and unlock under /v1/auth.  Both
// check PINs, so both go through the rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AccountHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/unlock", a.Unlock)
}

// RegisterStamps registers stamp submission and the one-shot summary read.
// Only submission checks a PIN and is rate limited.
func RegisterStamps(e *echo.Echo, h *handler.StampHandler, limiter echo.MiddlewareFunc) {
	e.POST("/v1/stamps", h.Submit, limiter)
	e.GET("/v1/stamps/summary/:token", h.Summary)
}

// RegisterHistory registers the public calendar reads.  Anonymous
// responses go through the response cache; a valid unlock token for the
// same username switches the stamp list to the authorized view.
func RegisterHistory(e *echo.Echo, h *handler.HistoryHandler, cache echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/v1/users/:username", cache, middleware.OptionalUnlock(jwtSecret))
	g.GET("/stamps", h.Stamps)
	g.GET("/streak", h.Streak)
}
