package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/middleware"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/service"
)

// AuthHandler serves the session endpoints and the user account routes.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// tokenForm is the OAuth2 password-grant form posted to /token.
type tokenForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// userOut is the public view of an account.
type userOut struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func toUserOut(u *model.User) userOut {
	return userOut{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Login exchanges username and password for a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req tokenForm
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh issues a new access token for a ledger-held refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout removes the refresh token from the ledger. Repeating it succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, u, strings.TrimSpace(req.RefreshToken)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Register creates an account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req model.UserCreate
	if err := c.Bind(&req); err != nil {
		return writeError(c, bodyError(err))
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserOut(u))
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	return c.JSON(http.StatusOK, toUserOut(u))
}
