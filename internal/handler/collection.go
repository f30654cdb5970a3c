package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/middleware"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/service"
)

// CollectionHandler serves the caller's possessions and attendance. The
// user always comes from the bearer token.
type CollectionHandler struct {
	Collections *service.CollectionService
}

func NewCollectionHandler(svc *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{Collections: svc}
}

func (h *CollectionHandler) AddPossession(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	var in model.PossessionInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Collections.AddPossession(ctx, u, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CollectionHandler) AddAttendance(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	var in model.AttendanceInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Collections.AddAttendance(ctx, u, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CollectionHandler) MyPossessions(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Collections.Possessions(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CollectionHandler) MyAttendance(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.Unauthorized(c, "Not authenticated")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Collections.Attendances(ctx, u)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
