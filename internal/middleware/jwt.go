package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/daily-stamp/internal/utils" // unlock token parsing
)

// UnlockedUserKey is the context key holding the username an unlock token
// was issued for.
const UnlockedUserKey = "unlocked_user"

// OptionalUnlock returns an Echo middleware that inspects a Bearer unlock
// token and, when valid, stores its subject under UnlockedUserKey.  A
// missing, expired or forged token is not an error: the request simply
// continues without the authorized view.
func OptionalUnlock(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if strings.HasPrefix(auth, "Bearer ") {
                raw := strings.TrimPrefix(auth, "Bearer ")
                if sub, err := utils.ParseUnlockToken(secret, raw); err == nil {
                    c.Set(UnlockedUserKey, sub)
                }
            }
            return next(c)
        }
    }
}

// UnlockedUser returns the username unlocked for this request, or "".
func UnlockedUser(c echo.Context) string {
    if s, ok := c.Get(UnlockedUserKey).(string); ok {
        return s
    }
    return ""
}
