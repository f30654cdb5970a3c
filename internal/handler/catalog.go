package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

// CatalogHandler serves the public catalog: artists, songs, links, master
// data, performances, albums and goods.  Writes run in one transaction each.
type CatalogHandler struct {
	Store *repository.Store
}

func NewCatalogHandler(store *repository.Store) *CatalogHandler {
	if store == nil {
		panic("nil store passed to NewCatalogHandler")
	}
	return &CatalogHandler{Store: store}
}

type queryFunc func(ctx context.Context, q *repository.Queries) (any, error)

// write runs fn in a transaction and renders its result with status 200.
func (h *CatalogHandler) write(c echo.Context, fn queryFunc) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	var out any
	err := h.Store.Tx(ctx, func(q *repository.Queries) error {
		var err error
		out, err = fn(ctx, q)
		return err
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// read runs fn outside a transaction.
func (h *CatalogHandler) read(c echo.Context, fn queryFunc) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := fn(ctx, h.Store.Q())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- tie-ups, tours, tags ----

func (h *CatalogHandler) CreateTieup(c echo.Context) error {
	var in model.TieupInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.CreateTieup(ctx, in)
	})
}

func (h *CatalogHandler) ListTieups(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.ListTieups(ctx, skip, limit)
	})
}

func (h *CatalogHandler) CreateTour(c echo.Context) error {
	var in model.NameInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.CreateTour(ctx, in)
	})
}

func (h *CatalogHandler) ListTours(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.ListTours(ctx, skip, limit)
	})
}

func (h *CatalogHandler) CreateTag(c echo.Context) error {
	var in model.NameInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.CreateTag(ctx, in)
	})
}

func (h *CatalogHandler) ListTags(c echo.Context) error {
	skip, limit, err := page(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Masters.ListTags(ctx, skip, limit)
	})
}

// ---- song links ----

func (h *CatalogHandler) CreateSongArtistLink(c echo.Context) error {
	var in model.SongArtistLinkInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	in.Role = strings.TrimSpace(in.Role)
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Links.CreateArtistLink(ctx, in)
	})
}

func (h *CatalogHandler) CreateSongTieupLink(c echo.Context) error {
	var in model.SongTieupLinkInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Links.CreateTieupLink(ctx, in)
	})
}

// optionalUint parses an optional positive integer query parameter.
func optionalUint(c echo.Context, name string) (*uint64, *validation.FieldError) {
	s := c.QueryParam(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, &validation.FieldError{Field: name, Tag: "uint", Message: name + " must be a positive integer"}
	}
	return &n, nil
}

// splitList splits a comma separated query value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
