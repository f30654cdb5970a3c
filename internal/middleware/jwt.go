package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/service"
)

// Authenticator resolves a bearer token to a user.  *service.AuthService
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*model.User, error)
}

// JWTAuth guards protected routes.  It requires `Authorization: Bearer
// <access token>`, resolves the token's subject to a user and stores the
// user on the context (see CurrentUser).  Every rejection is a 401 with
// `WWW-Authenticate: Bearer` and a {"detail": ...} body.
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(header, " ")
			raw = strings.TrimSpace(raw)
			if !found || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				return Unauthorized(c, "Not authenticated")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := auth.Authenticate(ctx, raw)
			if err != nil {
				var ue *service.UnauthorizedError
				if errors.As(err, &ue) {
					return Unauthorized(c, ue.Detail)
				}
				logging.Error().Err(err).Msg("authenticate bearer token")
				return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "internal server error"})
			}
			SetUser(c, u)
			return next(c)
		}
	}
}

// Unauthorized writes the standard 401 response.
func Unauthorized(c echo.Context, detail string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"detail": detail})
}
