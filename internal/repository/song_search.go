package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/model"
)

// DefaultListLimit applies when a listing request omits limit.
const DefaultListLimit = 100

// songFilter builds the FROM/WHERE part shared by Search and SpotifyIDs.
// Joins produce one row per matching link, so callers select DISTINCT.
func songFilter(q model.SongSearch) (from string, args []any) {
	from = "FROM songs s"
	where := []string{}

	var roles []string
	for _, r := range strings.Split(q.RoleFilter, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	if len(roles) > 0 || q.ArtistIDFilter != nil {
		from += " JOIN song_artist_links al ON al.song_id = s.id"
		if len(roles) > 0 {
			where = append(where, "al.role IN ("+placeholders(len(roles))+")")
			for _, r := range roles {
				args = append(args, r)
			}
		}
		if q.ArtistIDFilter != nil {
			where = append(where, "al.artist_id = ?")
			args = append(args, *q.ArtistIDFilter)
		}
	}
	if q.TitleSearch != "" {
		where = append(where, "LOWER(s.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.TitleSearch)+"%")
	}
	if q.TieupIDFilter != nil {
		from += " JOIN song_tieup_links tl ON tl.song_id = s.id"
		where = append(where, "tl.tieup_id = ?")
		args = append(args, *q.TieupIDFilter)
	}

	if len(where) > 0 {
		from += " WHERE " + strings.Join(where, " AND ")
	}
	return from, args
}

func songOrder(sortBy string) string {
	switch sortBy {
	case "release_date":
		return " ORDER BY s.release_date DESC, s.id DESC"
	case "title":
		return " ORDER BY s.title ASC, s.id ASC"
	default:
		return " ORDER BY s.id DESC"
	}
}

// Search lists distinct songs matching q, paginated by Skip and Limit.
func (r *SongRepo) Search(ctx context.Context, q model.SongSearch) ([]model.Song, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	from, args := songFilter(q)
	dataSQL := `SELECT DISTINCT s.id, s.title, s.release_date, s.spotify_song_id, s.jasrac_code,
			s.jasrac_title, s.lyrics, s.created_at ` + from + songOrder(q.SortBy) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, q.Skip)

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Song, 0, limit)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// SpotifyIDs returns the Spotify ids of every song matching q, in q's sort
// order, skipping songs without one. Pagination is ignored.
func (r *SongRepo) SpotifyIDs(ctx context.Context, q model.SongSearch) ([]string, error) {
	from, args := songFilter(q)
	dataSQL := `SELECT DISTINCT s.id, s.title, s.release_date, s.spotify_song_id ` + from + songOrder(q.SortBy)

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var (
			id      uint64
			title   string
			release model.Date
			spotify *string
		)
		if err := rows.Scan(&id, &title, &release, &spotify); err != nil {
			return nil, err
		}
		if spotify != nil && *spotify != "" {
			out = append(out, *spotify)
		}
	}
	return out, rows.Err()
}
