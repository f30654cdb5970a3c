package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

func (h *CatalogHandler) CreatePerformance(c echo.Context) error {
	var in model.PerformanceInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Performances.Create(ctx, in)
	})
}

// ListPerformances lists performances, newest first, optionally for one
// artist (?artist_id=).
func (h *CatalogHandler) ListPerformances(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return writeError(c, err)
	}
	artistID, fe := optionalUint(c, "artist_id")
	if fe != nil {
		return writeError(c, &validation.RequestValidationError{Fields: []validation.FieldError{*fe}})
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Performances.List(ctx, artistID, skip, limit)
	})
}

func (h *CatalogHandler) GetPerformance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Performances.Detail(ctx, id)
	})
}

func (h *CatalogHandler) CreateSetlistEntry(c echo.Context) error {
	var in model.SetlistEntryInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Performances.AddSetlistEntry(ctx, in)
	})
}

func (h *CatalogHandler) CreateRosterEntry(c echo.Context) error {
	var in model.RosterEntryInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Performances.AddRosterEntry(ctx, in)
	})
}
