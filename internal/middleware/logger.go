package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// HandlerErrorKey holds an error a handler already answered with a 5xx
// body.  RequestLogger reports it alongside the request.
const HandlerErrorKey = "handler_error"

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // Let echo render the error so the logged status is final.
                c.Error(err)
            }
            res := c.Response()
            fields := []zap.Field{
                zap.String("method", c.Request().Method),
                zap.String("path", c.Path()),
                zap.Int("status", res.Status),
                zap.Int64("bytes", res.Size),
                zap.Duration("latency", time.Since(start)),
                zap.String("ip", c.RealIP()),
            }
            if herr, ok := c.Get(HandlerErrorKey).(error); ok && err == nil {
                err = herr
            }
            switch {
            case res.Status >= 500:
                log.Error("request", append(fields, zap.Error(err))...)
            case res.Status >= 400:
                log.Warn("request", fields...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}
