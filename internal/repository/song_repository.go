package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// SongRepo covers songs, their tags and the song detail view.
type SongRepo struct{ db database.DBTX }

func NewSongRepo(db database.DBTX) *SongRepo { return &SongRepo{db: db} }

// SongTieup is a tie-up as seen from one of its songs.
type SongTieup struct {
	TieupID   uint64  `json:"tieup_id"`
	Name      string  `json:"name"`
	Category  *string `json:"category"`
	Context   *string `json:"context"`
	SortIndex *int    `json:"sort_index"`
}

// SongDetail is a song with credits, tie-ups, tags and live statistics.
type SongDetail struct {
	model.Song
	Contributors   []ArtistContribution `json:"contributors"`
	Tieups         []SongTieup          `json:"tieups"`
	Tags           []model.Tag          `json:"tags"`
	LastPlayedDate model.Date           `json:"last_played_date"`
	PlayCount      int                  `json:"play_count"`
}

const songColumns = "id, title, release_date, spotify_song_id, jasrac_code, jasrac_title, lyrics, created_at"

func scanSong(s interface{ Scan(...any) error }) (*model.Song, error) {
	var so model.Song
	err := s.Scan(&so.ID, &so.Title, &so.ReleaseDate, &so.SpotifySongID,
		&so.JasracCode, &so.JasracTitle, &so.Lyrics, &so.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &so, nil
}

// Create inserts a song. Spotify id and JASRAC code must not belong to
// another song.
func (r *SongRepo) Create(ctx context.Context, in model.SongInput) (*model.Song, error) {
	if err := r.checkExternalIDs(ctx, 0, in); err != nil {
		return nil, err
	}
	s := &model.Song{
		Title:         strings.TrimSpace(in.Title),
		ReleaseDate:   in.ReleaseDate,
		SpotifySongID: in.SpotifySongID,
		JasracCode:    in.JasracCode,
		JasracTitle:   in.JasracTitle,
		Lyrics:        in.Lyrics,
		CreatedAt:     now(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO songs (title, release_date, spotify_song_id, jasrac_code, jasrac_title, lyrics, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		s.Title, s.ReleaseDate, nullString(s.SpotifySongID), nullString(s.JasracCode),
		nullString(s.JasracTitle), nullString(s.Lyrics), s.CreatedAt)
	if err != nil {
		return nil, songConflict(err, in)
	}
	if s.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces every field of song id.
func (r *SongRepo) Update(ctx context.Context, id uint64, in model.SongInput) (*model.Song, error) {
	if err := requireRow(ctx, r.db, "song", tblSongs, id); err != nil {
		return nil, err
	}
	if err := r.checkExternalIDs(ctx, id, in); err != nil {
		return nil, err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE songs SET title = ?, release_date = ?, spotify_song_id = ?, jasrac_code = ?,
		 jasrac_title = ?, lyrics = ? WHERE id = ?`,
		strings.TrimSpace(in.Title), in.ReleaseDate, nullString(in.SpotifySongID), nullString(in.JasracCode),
		nullString(in.JasracTitle), nullString(in.Lyrics), id)
	if err != nil {
		return nil, songConflict(err, in)
	}
	return r.Get(ctx, id)
}

// checkExternalIDs rejects a Spotify id or JASRAC code already held by a
// song other than self. The message names the other song.
func (r *SongRepo) checkExternalIDs(ctx context.Context, self uint64, in model.SongInput) error {
	checks := []struct {
		column, label string
		value         *string
	}{
		{"spotify_song_id", "Spotify ID", in.SpotifySongID},
		{"jasrac_code", "JASRAC code", in.JasracCode},
	}
	for _, c := range checks {
		if c.value == nil || *c.value == "" {
			continue
		}
		var title string
		err := r.db.QueryRowContext(ctx,
			"SELECT title FROM songs WHERE "+c.column+" = ? AND id <> ? LIMIT 1", *c.value, self).Scan(&title)
		switch {
		case err == nil:
			return conflict("%s %s is already registered to another song (%s)", c.label, *c.value, title)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check %s: %w", c.column, err)
		}
	}
	return nil
}

func songConflict(err error, in model.SongInput) error {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return mapConstraint(err, map[string]string{
		database.UqSongsSpotifyID:  "Spotify ID " + deref(in.SpotifySongID) + " is already registered to another song",
		database.UqSongsJasracCode: "JASRAC code " + deref(in.JasracCode) + " is already registered to another song",
	}, "song already exists")
}

// Get fetches one song.
func (r *SongRepo) Get(ctx context.Context, id uint64) (*model.Song, error) {
	s, err := scanSong(r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("song", id)
	}
	return s, err
}

// Delete removes a song together with every row that references it. Run it
// inside Store.Tx so a failure leaves the catalog untouched.
func (r *SongRepo) Delete(ctx context.Context, id uint64) error {
	if err := requireRow(ctx, r.db, "song", tblSongs, id); err != nil {
		return err
	}
	for _, table := range []string{
		"song_artist_links",
		"song_tieup_links",
		"song_tags",
		"setlist_entries",
		"album_tracks",
	} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE song_id = ?", id); err != nil {
			return fmt.Errorf("delete %s of song %d: %w", table, id, err)
		}
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	return nil
}

// AddTag attaches tag to song. Attaching the same tag twice is a conflict.
func (r *SongRepo) AddTag(ctx context.Context, songID, tagID uint64) error {
	if err := requireRow(ctx, r.db, "song", tblSongs, songID); err != nil {
		return err
	}
	if err := requireRow(ctx, r.db, "tag", tblTags, tagID); err != nil {
		return err
	}
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM song_tags WHERE song_id = ? AND tag_id = ?", songID, tagID).Scan(&one)
	if err == nil {
		return conflict("song %d is already tagged with tag %d", songID, tagID)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = r.db.ExecContext(ctx, "INSERT INTO song_tags (song_id, tag_id) VALUES (?,?)", songID, tagID)
	return mapConstraint(err, nil, fmt.Sprintf("song %d is already tagged with tag %d", songID, tagID))
}

// Detail assembles the song detail view.
func (r *SongRepo) Detail(ctx context.Context, id uint64) (*SongDetail, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &SongDetail{Song: *s}

	if d.Contributors, err = r.contributors(ctx, id); err != nil {
		return nil, err
	}
	if d.Tieups, err = r.tieups(ctx, id); err != nil {
		return nil, err
	}
	if d.Tags, err = r.tags(ctx, id); err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT MAX(p.date), COUNT(*)
		 FROM setlist_entries e JOIN performances p ON p.id = e.performance_id
		 WHERE e.song_id = ?`, id).Scan(&d.LastPlayedDate, &d.PlayCount)
	if err != nil {
		return nil, fmt.Errorf("play stats of song %d: %w", id, err)
	}
	return d, nil
}

func (r *SongRepo) contributors(ctx context.Context, songID uint64) ([]ArtistContribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.title, s.release_date, a.id, a.name, l.role
		 FROM song_artist_links l
		 JOIN songs s   ON s.id = l.song_id
		 JOIN artists a ON a.id = l.artist_id
		 WHERE l.song_id = ?
		 ORDER BY l.id`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ContributionRow
	for rows.Next() {
		var c ContributionRow
		if err := rows.Scan(&c.SongID, &c.SongTitle, &c.ReleaseDate, &c.ArtistID, &c.ArtistName, &c.Role); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return GroupByArtist(list), nil
}

func (r *SongRepo) tieups(ctx context.Context, songID uint64) ([]SongTieup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.category, l.context, l.sort_index
		 FROM song_tieup_links l JOIN tieups t ON t.id = l.tieup_id
		 WHERE l.song_id = ?
		 ORDER BY l.id`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SongTieup{}
	for rows.Next() {
		var t SongTieup
		if err := rows.Scan(&t.TieupID, &t.Name, &t.Category, &t.Context, &t.SortIndex); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SongRepo) tags(ctx context.Context, songID uint64) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name FROM song_tags st JOIN tags t ON t.id = st.tag_id
		 WHERE st.song_id = ? ORDER BY t.name`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
