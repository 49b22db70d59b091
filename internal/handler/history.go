package handler

import (
    "errors"   // errors.Is against service sentinels
    "net/http" // HTTP status codes
    "time"     // streak timestamps

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/daily-stamp/internal/middleware" // unlocked user lookup
    "github.com/iliyamo/daily-stamp/internal/model"      // history items
    "github.com/iliyamo/daily-stamp/internal/service"    // history reads
)

// HistoryHandler serves the calendar reads.  Both routes are public; the
// stamp list includes mood and notes only for a request unlocked for the
// same username.
type HistoryHandler struct {
	History *service.HistoryService
}

func NewHistoryHandler(h *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{History: h}
}

type historyResp struct {
	Username   string            `json:"username"`
	Authorized bool              `json:"authorized"`
	Stamps     []model.StampView `json:"stamps"`
}

// Stamps handles GET /v1/users/:username/stamps.
func (h *HistoryHandler) Stamps(c echo.Context) error {
	username := c.Param("username")
	authorized := username != "" && middleware.UnlockedUser(c) == username

	items, err := h.History.History(c.Request().Context(), username, authorized)
	if errors.Is(err, service.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user_not_found"})
	}
	if err != nil {
		return persistenceFailure(c, err)
	}
	return c.JSON(http.StatusOK, historyResp{Username: username, Authorized: authorized, Stamps: items})
}

// Streak handles GET /v1/users/:username/streak.
func (h *HistoryHandler) Streak(c echo.Context) error {
	s, ok, err := h.History.Streak(c.Request().Context(), c.Param("username"))
	if err != nil {
		return persistenceFailure(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "streak_not_found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"streak": s.Count, "last_stamp": s.LastStamp.UTC().Format(time.RFC3339Nano)})
}
