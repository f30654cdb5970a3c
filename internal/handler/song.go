package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/validation"
)

func (h *CatalogHandler) CreateSong(c echo.Context) error {
	var in model.SongInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Songs.Create(ctx, in)
	})
}

// songSearchQuery reads the song listing filters from the query string.
func songSearchQuery(c echo.Context) (model.SongSearch, error) {
	var s model.SongSearch
	skip, limit, err := page(c)
	if err != nil {
		return s, err
	}
	s.Skip, s.Limit = skip, limit
	s.TitleSearch = c.QueryParam("title_search")
	s.SortBy = c.QueryParam("sort_by")
	s.RoleFilter = c.QueryParam("role_filter")

	var fields []validation.FieldError
	var fe *validation.FieldError
	if s.TieupIDFilter, fe = optionalUint(c, "tieup_id_filter"); fe != nil {
		fields = append(fields, *fe)
	}
	if s.ArtistIDFilter, fe = optionalUint(c, "artist_id_filter"); fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return s, &validation.RequestValidationError{Fields: fields}
	}
	return s, c.Validate(&s)
}

// ListSongs searches songs by title, credited role, artist and tie-up.
func (h *CatalogHandler) ListSongs(c echo.Context) error {
	s, err := songSearchQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Songs.Search(ctx, s)
	})
}

// GenerateSpotifyIDs returns the Spotify ids of every song matching the
// filters in the body, for building playlists.
func (h *CatalogHandler) GenerateSpotifyIDs(c echo.Context) error {
	var s model.SongSearch
	if err := bind(c, &s); err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Songs.SpotifyIDs(ctx, s)
	})
}

func (h *CatalogHandler) GetSong(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	return h.read(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Songs.Detail(ctx, id)
	})
}

func (h *CatalogHandler) UpdateSong(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var in model.SongInput
	if err := bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		return q.Songs.Update(ctx, id, in)
	})
}

// DeleteSong removes the song and every row referencing it.
func (h *CatalogHandler) DeleteSong(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Store.Tx(ctx, func(q *repository.Queries) error {
		return q.Songs.Delete(ctx, id)
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TagSong attaches a tag and returns the updated song detail.
func (h *CatalogHandler) TagSong(c echo.Context) error {
	songID, err := pathID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	tagID, err := pathID(c, "tag_id")
	if err != nil {
		return writeError(c, err)
	}
	return h.write(c, func(ctx context.Context, q *repository.Queries) (any, error) {
		if err := q.Songs.AddTag(ctx, songID, tagID); err != nil {
			return nil, err
		}
		return q.Songs.Detail(ctx, songID)
	})
}
