package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// AlbumRepo covers albums, their track lists and album relationships.
type AlbumRepo struct{ db database.DBTX }

func NewAlbumRepo(db database.DBTX) *AlbumRepo { return &AlbumRepo{db: db} }

// TrackItem is an album track with the song title.
type TrackItem struct {
	model.AlbumTrack
	SongTitle string `json:"song_title"`
}

// AlbumDetail is an album with tracks ordered by disc then track number.
type AlbumDetail struct {
	model.Album
	Tracks []TrackItem `json:"tracks"`
}

const albumColumns = "id, title, artist_id, album_type, release_date, spotify_album_id"

// Create inserts an album. The optional artist must exist and the Spotify
// album id must be unused.
func (r *AlbumRepo) Create(ctx context.Context, in model.AlbumInput) (*model.Album, error) {
	if err := requireOptionalRow(ctx, r.db, "artist", tblArtists, in.ArtistID); err != nil {
		return nil, err
	}
	msg := ""
	if in.SpotifyAlbumID != nil && *in.SpotifyAlbumID != "" {
		msg = "Spotify album ID " + *in.SpotifyAlbumID + " is already registered"
		var title string
		err := r.db.QueryRowContext(ctx,
			"SELECT title FROM albums WHERE spotify_album_id = ? LIMIT 1", *in.SpotifyAlbumID).Scan(&title)
		if err == nil {
			return nil, conflict("%s (%s)", msg, title)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	a := &model.Album{
		Title:          strings.TrimSpace(in.Title),
		ArtistID:       in.ArtistID,
		AlbumType:      in.AlbumType,
		ReleaseDate:    in.ReleaseDate,
		SpotifyAlbumID: in.SpotifyAlbumID,
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO albums (title, artist_id, album_type, release_date, spotify_album_id) VALUES (?,?,?,?,?)`,
		a.Title, nullID(a.ArtistID), nullString(a.AlbumType), a.ReleaseDate, nullString(a.SpotifyAlbumID))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqAlbumsSpotifyID: msg}, "album already exists")
	}
	if a.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return a, nil
}

// Get fetches one album.
func (r *AlbumRepo) Get(ctx context.Context, id uint64) (*model.Album, error) {
	var a model.Album
	err := r.db.QueryRowContext(ctx, "SELECT "+albumColumns+" FROM albums WHERE id = ?", id).
		Scan(&a.ID, &a.Title, &a.ArtistID, &a.AlbumType, &a.ReleaseDate, &a.SpotifyAlbumID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("album", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Detail loads an album and its ordered track list.
func (r *AlbumRepo) Detail(ctx context.Context, id uint64) (*AlbumDetail, error) {
	a, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.album_id, t.song_id, t.disc_number, t.track_number, s.title
		 FROM album_tracks t JOIN songs s ON s.id = t.song_id
		 WHERE t.album_id = ?
		 ORDER BY t.disc_number, t.track_number`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d := &AlbumDetail{Album: *a, Tracks: []TrackItem{}}
	for rows.Next() {
		var t TrackItem
		if err := rows.Scan(&t.ID, &t.AlbumID, &t.SongID, &t.DiscNumber, &t.TrackNumber, &t.SongTitle); err != nil {
			return nil, err
		}
		d.Tracks = append(d.Tracks, t)
	}
	return d, rows.Err()
}

// AddTrack places a song on an album. Within one disc a song appears once
// and a track number is used once.
func (r *AlbumRepo) AddTrack(ctx context.Context, in model.AlbumTrackInput) (*model.AlbumTrack, error) {
	if err := requireRow(ctx, r.db, "album", tblAlbums, in.AlbumID); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "song", tblSongs, in.SongID); err != nil {
		return nil, err
	}
	disc := in.DiscNumber
	if disc == 0 {
		disc = 1
	}
	songMsg := "song " + u64(in.SongID) + " is already on disc " + itoa(disc) + " of album " + u64(in.AlbumID)
	orderMsg := "track " + itoa(in.TrackNumber) + " on disc " + itoa(disc) + " of album " + u64(in.AlbumID) + " is already taken"

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM album_tracks WHERE album_id = ? AND disc_number = ? AND song_id = ?",
		in.AlbumID, disc, in.SongID).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: songMsg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT 1 FROM album_tracks WHERE album_id = ? AND disc_number = ? AND track_number = ?",
		in.AlbumID, disc, in.TrackNumber).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: orderMsg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	t := &model.AlbumTrack{AlbumID: in.AlbumID, SongID: in.SongID, DiscNumber: disc, TrackNumber: in.TrackNumber}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO album_tracks (album_id, song_id, disc_number, track_number) VALUES (?,?,?,?)",
		t.AlbumID, t.SongID, t.DiscNumber, t.TrackNumber)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{
			database.UqAlbumTracksSong:  songMsg,
			database.UqAlbumTracksOrder: orderMsg,
		}, orderMsg)
	}
	if t.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return t, nil
}

// AddRelationship links two distinct albums with a typed relationship.
func (r *AlbumRepo) AddRelationship(ctx context.Context, in model.AlbumRelationshipInput) (*model.AlbumRelationship, error) {
	if err := requireRow(ctx, r.db, "album", tblAlbums, in.AlbumID1); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "album", tblAlbums, in.AlbumID2); err != nil {
		return nil, err
	}
	kind := strings.TrimSpace(in.RelationshipType)
	id, err := insertRelationship(ctx, r.db, "album_relationships", "album_id_1", "album_id_2",
		database.UqAlbumRelationships, in.AlbumID1, in.AlbumID2, kind)
	if err != nil {
		return nil, err
	}
	return &model.AlbumRelationship{ID: id, AlbumID1: in.AlbumID1, AlbumID2: in.AlbumID2, RelationshipType: kind}, nil
}

// insertRelationship writes a (left, right, type) row once. Albums and
// merchandise share this shape.
func insertRelationship(ctx context.Context, db database.DBTX, table, leftCol, rightCol, constraint string,
	left, right uint64, kind string) (uint64, error) {
	if left == right {
		return 0, conflict("an item cannot be related to itself")
	}
	msg := "relationship '" + kind + "' between " + u64(left) + " and " + u64(right) + " already exists"

	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE "+leftCol+" = ? AND "+rightCol+" = ? AND relationship_type = ?",
		left, right, kind).Scan(&one)
	if err == nil {
		return 0, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		"INSERT INTO "+table+" ("+leftCol+", "+rightCol+", relationship_type) VALUES (?,?,?)", left, right, kind)
	if err != nil {
		return 0, mapConstraint(err, map[string]string{constraint: msg}, msg)
	}
	return insertID(res)
}
