package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/handler"
)

// RegisterCollection registers the caller's collection endpoints. Every
// route requires a valid access token.
func RegisterCollection(e *echo.Echo, h *handler.CollectionHandler, guard echo.MiddlewareFunc) {
	g := routes{e: e, mw: []echo.MiddlewareFunc{guard}}

	g.POST("/user_possessions", h.AddPossession)
	g.POST("/user_attendance", h.AddAttendance)
	g.GET("/users/me/possessions", h.MyPossessions)
	g.GET("/users/me/attendance", h.MyAttendance)
}
