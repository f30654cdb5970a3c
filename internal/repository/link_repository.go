package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// LinkRepo writes the song association tables.
type LinkRepo struct{ db database.DBTX }

func NewLinkRepo(db database.DBTX) *LinkRepo { return &LinkRepo{db: db} }

// CreateArtistLink credits an artist with a role on a song. The same artist
// may hold several roles on one song, never the same role twice.
func (r *LinkRepo) CreateArtistLink(ctx context.Context, in model.SongArtistLinkInput) (*model.SongArtistLink, error) {
	if err := requireRow(ctx, r.db, "song", tblSongs, in.SongID); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "artist", tblArtists, in.ArtistID); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	msg := "artist " + u64(in.ArtistID) + " is already credited as '" + role + "' on song " + u64(in.SongID)

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM song_artist_links WHERE song_id = ? AND artist_id = ? AND role = ?",
		in.SongID, in.ArtistID, role).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	l := &model.SongArtistLink{SongID: in.SongID, ArtistID: in.ArtistID, Role: role}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO song_artist_links (song_id, artist_id, role) VALUES (?,?,?)", l.SongID, l.ArtistID, l.Role)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqSongArtistLinksRole: msg}, msg)
	}
	if l.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return l, nil
}

// CreateTieupLink attaches a song to a tie-up. A song appears once per
// tie-up and a sort index is used once per tie-up.
func (r *LinkRepo) CreateTieupLink(ctx context.Context, in model.SongTieupLinkInput) (*model.SongTieupLink, error) {
	if err := requireRow(ctx, r.db, "song", tblSongs, in.SongID); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "tieup", tblTieups, in.TieupID); err != nil {
		return nil, err
	}
	pairMsg := "song " + u64(in.SongID) + " is already linked to tieup " + u64(in.TieupID)
	sortMsg := ""
	if in.SortIndex != nil {
		sortMsg = "sort_index " + itoa(*in.SortIndex) + " is already used on tieup " + u64(in.TieupID)
	}

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM song_tieup_links WHERE song_id = ? AND tieup_id = ?", in.SongID, in.TieupID).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: pairMsg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if in.SortIndex != nil {
		err = r.db.QueryRowContext(ctx,
			"SELECT 1 FROM song_tieup_links WHERE tieup_id = ? AND sort_index = ?", in.TieupID, *in.SortIndex).Scan(&one)
		if err == nil {
			return nil, &ConflictError{Message: sortMsg}
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	l := &model.SongTieupLink{SongID: in.SongID, TieupID: in.TieupID, Context: in.Context, SortIndex: in.SortIndex}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO song_tieup_links (song_id, tieup_id, context, sort_index) VALUES (?,?,?,?)",
		l.SongID, l.TieupID, nullString(l.Context), nullInt(l.SortIndex))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{
			database.UqSongTieupLinksPair: pairMsg,
			database.UqSongTieupLinksSort: sortMsg,
		}, pairMsg)
	}
	if l.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return l, nil
}
