package handler

import (
    "context"      // summary lookups
    "errors"       // errors.Is for mood validation
    "fmt"          // message formatting
    "net/http"     // HTTP status codes
    "unicode/utf8" // note length in runes

    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/daily-stamp/internal/model"   // moods and summaries
    "github.com/iliyamo/daily-stamp/internal/service" // stamp workflow
)

// SummaryTaker reads and clears a post-stamp summary.
type SummaryTaker interface {
	Take(ctx context.Context, token string) (model.StampSummary, bool, error)
}

// StampHandler serves stamp submission and the one-shot summary read.
// Summaries is nil when no Redis is configured; the summary is then only
// returned inline with the submission.
type StampHandler struct {
	Stamps     *service.StampService
	Summaries  SummaryTaker
	NoteMaxLen int
}

func NewStampHandler(s *service.StampService, summaries SummaryTaker, noteMaxLen int) *StampHandler {
	if s == nil {
		panic("nil stamp service passed to NewStampHandler")
	}
	return &StampHandler{Stamps: s, Summaries: summaries, NoteMaxLen: noteMaxLen}
}

type submitReq struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
	Notes    string `json:"notes"`
	Mood     string `json:"mood"`
}

type submitResp struct {
	Streak       int                `json:"streak"`
	SummaryToken string             `json:"summary_token,omitempty"`
	Summary      model.StampSummary `json:"summary"`
}

// Submit handles POST /v1/stamps.  Outcomes map to 201, 409 (already
// stamped today), 401 (bad credentials) and 502 (store failure).
func (h *StampHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "invalid body"})
	}
	mood, err := model.ParseMood(req.Mood)
	if errors.Is(err, model.ErrInvalidMood) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "mood must be happy or sad"})
	}
	if h.NoteMaxLen > 0 && utf8.RuneCountInString(req.Notes) > h.NoteMaxLen {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "invalid_input",
			"message": fmt.Sprintf("notes must be at most %d characters", h.NoteMaxLen),
		})
	}

	out := h.Stamps.Submit(c.Request().Context(), service.SubmitInput{
		Username: req.Username,
		PIN:      req.PIN,
		Notes:    req.Notes,
		Mood:     mood,
	})
	switch o := out.(type) {
	case *service.Stamped:
		return c.JSON(http.StatusCreated, submitResp{Streak: o.StreakCount, SummaryToken: o.SummaryToken, Summary: o.Summary})
	case service.AlreadyStamped:
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_stamped", "message": "already stamped within the last 24 hours"})
	case service.InvalidCredentials:
		return invalidCredentials(c)
	case *service.PersistenceError:
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "persistence_error", "message": o.Detail()})
	}
	return UnknownError(c, fmt.Errorf("unexpected outcome %T", out))
}

// Summary handles GET /v1/stamps/summary/:token.  A summary can be read
// once; later reads and expired tokens get 404.
func (h *StampHandler) Summary(c echo.Context) error {
	if h.Summaries == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "summary_not_found"})
	}
	s, ok, err := h.Summaries.Take(c.Request().Context(), c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "persistence_error", "message": err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "summary_not_found"})
	}
	return c.JSON(http.StatusOK, s)
}
