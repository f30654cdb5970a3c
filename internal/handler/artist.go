package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

func (h *CatalogHandler) CreateArtist(c echo.Context) error {
	var in model.ArtistInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.Create(ctx, in)
	})
}

func (h *CatalogHandler) ListArtists(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.List(ctx, skip, limit)
	})
}

// GetArtist returns the artist with aliases and the songs they worked on.
func (h *CatalogHandler) GetArtist(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.Detail(ctx, id)
	})
}

func (h *CatalogHandler) UpdateArtist(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in model.ArtistInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.Update(ctx, id, in)
	})
}

// ArtistSongs lists the artist's credits. ?roles=a,b narrows by role and
// ?sort_by=title|release_date picks the order.
func (h *CatalogHandler) ArtistSongs(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	sortBy := c.QueryParam("sort_by")
	switch sortBy {
	case "", "release_date", "title":
	default:
		return writeError(c, &validation.RequestValidationError{Fields: []validation.FieldError{{
			Field: "sort_by", Tag: "oneof", Param: "release_date title",
			Message: "sort_by must be one of: release_date title",
		}}})
	}
	roles := splitList(c.QueryParam("roles"))
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.Songs(ctx, id, roles, sortBy)
	})
}

func (h *CatalogHandler) AddArtistAlias(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in model.ArtistAliasInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Artists.AddAlias(ctx, id, in)
	})
}
