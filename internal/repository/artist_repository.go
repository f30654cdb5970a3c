package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// ArtistRepo covers artists and their aliases.
type ArtistRepo struct{ db database.DBTX }

func NewArtistRepo(db database.DBTX) *ArtistRepo { return &ArtistRepo{db: db} }

// ArtistDetail is an artist with aliases and every song they contributed
// to, roles grouped per song.
type ArtistDetail struct {
	model.Artist
	Aliases          []model.ArtistAlias `json:"aliases"`
	SongsContributed []SongContribution  `json:"songs_contributed"`
}

// ArtistSong is one (song, role) pair credited to an artist.
type ArtistSong struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate model.Date `json:"release_date"`
	Role        string     `json:"role"`
}

const artistColumns = "id, name, spotify_artist_id, notes, created_at"

func scanArtist(s interface{ Scan(...any) error }) (*model.Artist, error) {
	var a model.Artist
	if err := s.Scan(&a.ID, &a.Name, &a.SpotifyArtistID, &a.Notes, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an artist. The name and Spotify id must be unused.
func (r *ArtistRepo) Create(ctx context.Context, in model.ArtistInput) (*model.Artist, error) {
	name := strings.TrimSpace(in.Name)
	if err := r.checkUnique(ctx, 0, name, in.SpotifyArtistID); err != nil {
		return nil, err
	}
	a := &model.Artist{Name: name, SpotifyArtistID: in.SpotifyArtistID, Notes: in.Notes, CreatedAt: now()}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO artists (name, spotify_artist_id, notes, created_at) VALUES (?,?,?,?)",
		a.Name, nullString(a.SpotifyArtistID), nullString(a.Notes), a.CreatedAt)
	if err != nil {
		return nil, r.mapErr(err, name, in.SpotifyArtistID)
	}
	if a.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces the artist's fields. Uniqueness checks exclude the artist
// itself.
func (r *ArtistRepo) Update(ctx context.Context, id uint64, in model.ArtistInput) (*model.Artist, error) {
	if err := requireRow(ctx, r.db, "artist", tblArtists, id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := r.checkUnique(ctx, id, name, in.SpotifyArtistID); err != nil {
		return nil, err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE artists SET name = ?, spotify_artist_id = ?, notes = ? WHERE id = ?",
		name, nullString(in.SpotifyArtistID), nullString(in.Notes), id)
	if err != nil {
		return nil, r.mapErr(err, name, in.SpotifyArtistID)
	}
	return r.Get(ctx, id)
}

// checkUnique looks for another artist (id != self) holding name or spotify.
func (r *ArtistRepo) checkUnique(ctx context.Context, self uint64, name string, spotify *string) error {
	var other uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM artists WHERE name = ? AND id <> ? LIMIT 1", name, self).Scan(&other)
	if err == nil {
		return conflict("artist name '%s' is already in use", name)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if spotify == nil || *spotify == "" {
		return nil
	}
	var otherName string
	err = r.db.QueryRowContext(ctx,
		"SELECT name FROM artists WHERE spotify_artist_id = ? AND id <> ? LIMIT 1", *spotify, self).Scan(&otherName)
	if err == nil {
		return conflict("Spotify artist ID %s is already registered to another artist (%s)", *spotify, otherName)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

func (r *ArtistRepo) mapErr(err error, name string, spotify *string) error {
	sp := ""
	if spotify != nil {
		sp = *spotify
	}
	return mapConstraint(err, map[string]string{
		database.UqArtistsName:      "artist name '" + name + "' is already in use",
		database.UqArtistsSpotifyID: "Spotify artist ID " + sp + " is already registered to another artist",
	}, "artist already exists")
}

// Get fetches one artist.
func (r *ArtistRepo) Get(ctx context.Context, id uint64) (*model.Artist, error) {
	a, err := scanArtist(r.db.QueryRowContext(ctx, "SELECT "+artistColumns+" FROM artists WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("artist", id)
	}
	return a, err
}

// List returns artists ordered by id.
func (r *ArtistRepo) List(ctx context.Context, skip, limit int) ([]model.Artist, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+artistColumns+" FROM artists ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Artist{}
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Detail loads an artist with aliases and grouped song contributions.
func (r *ArtistRepo) Detail(ctx context.Context, id uint64) (*ArtistDetail, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	aliases, err := r.Aliases(ctx, id)
	if err != nil {
		return nil, err
	}
	contrib, err := r.contributionRows(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ArtistDetail{Artist: *a, Aliases: aliases, SongsContributed: GroupBySong(contrib)}, nil
}

func (r *ArtistRepo) contributionRows(ctx context.Context, artistID uint64) ([]ContributionRow, error) {
	const q = `SELECT s.id, s.title, s.release_date, a.id, a.name, l.role
		FROM song_artist_links l
		JOIN songs s   ON s.id = l.song_id
		JOIN artists a ON a.id = l.artist_id
		WHERE l.artist_id = ?
		ORDER BY s.id, l.id`
	rows, err := r.db.QueryContext(ctx, q, artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContributionRow
	for rows.Next() {
		var c ContributionRow
		if err := rows.Scan(&c.SongID, &c.SongTitle, &c.ReleaseDate, &c.ArtistID, &c.ArtistName, &c.Role); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Songs lists (song, role) pairs credited to the artist, optionally limited
// to roles, sorted by release date (newest first) or title.
func (r *ArtistRepo) Songs(ctx context.Context, artistID uint64, roles []string, sortBy string) ([]ArtistSong, error) {
	if err := requireRow(ctx, r.db, "artist", tblArtists, artistID); err != nil {
		return nil, err
	}
	q := `SELECT s.id, s.title, s.release_date, l.role
		FROM songs s
		JOIN song_artist_links l ON l.song_id = s.id
		WHERE l.artist_id = ?`
	args := []any{artistID}
	if len(roles) > 0 {
		q += " AND l.role IN (" + placeholders(len(roles)) + ")"
		for _, role := range roles {
			args = append(args, role)
		}
	}
	switch sortBy {
	case "title":
		q += " ORDER BY s.title, s.id"
	default:
		q += " ORDER BY s.release_date DESC, s.id DESC"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ArtistSong{}
	for rows.Next() {
		var s ArtistSong
		if err := rows.Scan(&s.ID, &s.Title, &s.ReleaseDate, &s.Role); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Aliases lists an artist's alternative names.
func (r *ArtistRepo) Aliases(ctx context.Context, artistID uint64) ([]model.ArtistAlias, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, artist_id, alias_name, context FROM artist_aliases WHERE artist_id = ? ORDER BY id", artistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.ArtistAlias{}
	for rows.Next() {
		var al model.ArtistAlias
		if err := rows.Scan(&al.ID, &al.ArtistID, &al.AliasName, &al.Context); err != nil {
			return nil, err
		}
		out = append(out, al)
	}
	return out, rows.Err()
}

// AddAlias attaches an alias to an existing artist.
func (r *ArtistRepo) AddAlias(ctx context.Context, artistID uint64, in model.ArtistAliasInput) (*model.ArtistAlias, error) {
	if err := requireRow(ctx, r.db, "artist", tblArtists, artistID); err != nil {
		return nil, err
	}
	al := &model.ArtistAlias{ArtistID: artistID, AliasName: strings.TrimSpace(in.AliasName), Context: in.Context}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO artist_aliases (artist_id, alias_name, context) VALUES (?,?,?)",
		al.ArtistID, al.AliasName, nullString(al.Context))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{
			database.UqArtistAliasesAlias: "alias '" + al.AliasName + "' is already registered for this artist",
		}, "alias already exists")
	}
	if al.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return al, nil
}
