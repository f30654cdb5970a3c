package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
)

func (h *CatalogHandler) CreateAlbum(c echo.Context) error {
	var in model.AlbumInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Albums.Create(ctx, in)
	})
}

// GetAlbum returns the album with its tracks ordered by disc and track.
func (h *CatalogHandler) GetAlbum(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Albums.Detail(ctx, id)
	})
}

func (h *CatalogHandler) CreateAlbumTrack(c echo.Context) error {
	var in model.AlbumTrackInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Albums.AddTrack(ctx, in)
	})
}

func (h *CatalogHandler) CreateAlbumRelationship(c echo.Context) error {
	var in model.AlbumRelationshipInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Albums.AddRelationship(ctx, in)
	})
}

func (h *CatalogHandler) CreateMerchandise(c echo.Context) error {
	var in model.MerchandiseInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Goods.CreateMerchandise(ctx, in)
	})
}

func (h *CatalogHandler) CreateMerchandiseRelationship(c echo.Context) error {
	var in model.MerchandiseRelationshipInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Goods.AddRelationship(ctx, in)
	})
}

func (h *CatalogHandler) CreateStore(c echo.Context) error {
	var in model.StoreInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Goods.CreateStore(ctx, in)
	})
}
