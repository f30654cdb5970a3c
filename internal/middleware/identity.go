package middleware

// identity.go holds the context key under which JWTAuth stores the
// authenticated user, and the accessors shared by handlers and the other
// middleware in this package.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
)

const userKey = "user"

// SetUser stores the authenticated user on the request context.
func SetUser(c echo.Context, u *model.User) { c.Set(userKey, u) }

// CurrentUser returns the user stored by JWTAuth, if any.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// userID identifies the caller in rate-limit keys. It returns "anon" when
// no user is authenticated.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
