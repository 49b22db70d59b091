package handler

import (
    "errors"   // errors.Is against service sentinels
    "net/http" // HTTP status codes
    "time"     // token expiry in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/daily-stamp/internal/service" // account operations
)

// AccountHandler serves registration and the PIN unlock of the
// authorized history view.
type AccountHandler struct {
	Accounts *service.AccountService
}

func NewAccountHandler(a *service.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: a}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// Register: POST /v1/auth/register.
func (h *AccountHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "invalid body"})
	}

	u, err := h.Accounts.Register(c.Request().Context(), req.Username, req.PIN)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, userPart{ID: u.ID, Username: u.Username})
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username_taken", "message": "username already exists"})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": err.Error()})
	}
	return persistenceFailure(c, err)
}

// Unlock: POST /v1/auth/unlock.  Returns a short-lived token that shows
// mood and notes in the caller's own history.
func (h *AccountHandler) Unlock(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_input", "message": "invalid body"})
	}

	tok, err := h.Accounts.Unlock(c.Request().Context(), req.Username, req.PIN)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: tok.Token, Expires: tok.Exp}})
	case errors.Is(err, service.ErrInvalidCredentials):
		return invalidCredentials(c)
	}
	return persistenceFailure(c, err)
}
