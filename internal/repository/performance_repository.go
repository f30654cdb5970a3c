package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// PerformanceRepo covers performances, setlists and rosters.
type PerformanceRepo struct{ db database.DBTX }

func NewPerformanceRepo(db database.DBTX) *PerformanceRepo { return &PerformanceRepo{db: db} }

// SetlistItem is a setlist entry with its song title.
type SetlistItem struct {
	model.SetlistEntry
	SongTitle string `json:"song_title"`
}

// RosterItem is a roster entry with the artist name.
type RosterItem struct {
	model.RosterEntry
	ArtistName string `json:"artist_name"`
}

// PerformanceDetail is a performance with its artist, tour, ordered setlist
// and roster.
type PerformanceDetail struct {
	model.Performance
	Artist  model.Artist  `json:"artist"`
	Tour    *model.Tour   `json:"tour"`
	Setlist []SetlistItem `json:"setlist"`
	Roster  []RosterItem  `json:"roster"`
}

const performanceColumns = "id, artist_id, tour_id, performance_type, name, date, venue, start_time"

func scanPerformance(s interface{ Scan(...any) error }) (*model.Performance, error) {
	var p model.Performance
	err := s.Scan(&p.ID, &p.ArtistID, &p.TourID, &p.PerformanceType, &p.Name, &p.Date, &p.Venue, &p.StartTime)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a performance after checking artist and tour exist.
func (r *PerformanceRepo) Create(ctx context.Context, in model.PerformanceInput) (*model.Performance, error) {
	if err := requireRow(ctx, r.db, "artist", tblArtists, in.ArtistID); err != nil {
		return nil, err
	}
	if err := requireOptionalRow(ctx, r.db, "tour", tblTours, in.TourID); err != nil {
		return nil, err
	}
	p := &model.Performance{
		ArtistID:        in.ArtistID,
		TourID:          in.TourID,
		PerformanceType: in.PerformanceType,
		Name:            strings.TrimSpace(in.Name),
		Date:            in.Date,
		Venue:           in.Venue,
		StartTime:       in.StartTime,
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO performances (artist_id, tour_id, performance_type, name, date, venue, start_time)
		 VALUES (?,?,?,?,?,?,?)`,
		p.ArtistID, nullID(p.TourID), nullString(p.PerformanceType), p.Name, p.Date,
		nullString(p.Venue), nullString(p.StartTime))
	if err != nil {
		return nil, err
	}
	if p.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return p, nil
}

// Get fetches one performance.
func (r *PerformanceRepo) Get(ctx context.Context, id uint64) (*model.Performance, error) {
	p, err := scanPerformance(r.db.QueryRowContext(ctx,
		"SELECT "+performanceColumns+" FROM performances WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("performance", id)
	}
	return p, err
}

// List returns performances newest first, optionally for one artist.
func (r *PerformanceRepo) List(ctx context.Context, artistID *uint64, skip, limit int) ([]model.Performance, error) {
	q := "SELECT " + performanceColumns + " FROM performances"
	args := []any{}
	if artistID != nil {
		q += " WHERE artist_id = ?"
		args = append(args, *artistID)
	}
	q += " ORDER BY date DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Performance{}
	for rows.Next() {
		p, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Detail assembles a performance with artist, tour, setlist and roster.
func (r *PerformanceRepo) Detail(ctx context.Context, id uint64) (*PerformanceDetail, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &PerformanceDetail{Performance: *p, Setlist: []SetlistItem{}, Roster: []RosterItem{}}

	a, err := scanArtist(r.db.QueryRowContext(ctx, "SELECT "+artistColumns+" FROM artists WHERE id = ?", p.ArtistID))
	if err != nil {
		return nil, err
	}
	d.Artist = *a

	if p.TourID != nil {
		var t model.Tour
		if err := r.db.QueryRowContext(ctx, "SELECT id, name FROM tours WHERE id = ?", *p.TourID).Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		d.Tour = &t
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.performance_id, e.song_id, e.order_index, e.notes, s.title
		 FROM setlist_entries e JOIN songs s ON s.id = e.song_id
		 WHERE e.performance_id = ? ORDER BY e.order_index`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var it SetlistItem
		if err := rows.Scan(&it.ID, &it.PerformanceID, &it.SongID, &it.OrderIndex, &it.Notes, &it.SongTitle); err != nil {
			rows.Close()
			return nil, err
		}
		d.Setlist = append(d.Setlist, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT pr.id, pr.performance_id, pr.artist_id, pr.role, pr.context, a.name
		 FROM performance_roster pr JOIN artists a ON a.id = pr.artist_id
		 WHERE pr.performance_id = ? ORDER BY pr.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it RosterItem
		if err := rows.Scan(&it.ID, &it.PerformanceID, &it.ArtistID, &it.Role, &it.Context, &it.ArtistName); err != nil {
			return nil, err
		}
		d.Roster = append(d.Roster, it)
	}
	return d, rows.Err()
}

// AddSetlistEntry places a song at order_index in a performance's setlist.
// Each position is taken once per performance.
func (r *PerformanceRepo) AddSetlistEntry(ctx context.Context, in model.SetlistEntryInput) (*model.SetlistEntry, error) {
	if err := requireRow(ctx, r.db, "performance", tblPerformances, in.PerformanceID); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "song", tblSongs, in.SongID); err != nil {
		return nil, err
	}
	msg := "order_index " + itoa(in.OrderIndex) + " is already used in performance " + u64(in.PerformanceID)

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM setlist_entries WHERE performance_id = ? AND order_index = ?",
		in.PerformanceID, in.OrderIndex).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	e := &model.SetlistEntry{PerformanceID: in.PerformanceID, SongID: in.SongID, OrderIndex: in.OrderIndex, Notes: in.Notes}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO setlist_entries (performance_id, song_id, order_index, notes) VALUES (?,?,?,?)",
		e.PerformanceID, e.SongID, e.OrderIndex, nullString(e.Notes))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqSetlistEntriesOrder: msg}, msg)
	}
	if e.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return e, nil
}

// AddRosterEntry records an artist appearing in a performance in a role.
func (r *PerformanceRepo) AddRosterEntry(ctx context.Context, in model.RosterEntryInput) (*model.RosterEntry, error) {
	if err := requireRow(ctx, r.db, "performance", tblPerformances, in.PerformanceID); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "artist", tblArtists, in.ArtistID); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	msg := "artist " + u64(in.ArtistID) + " is already on the roster of performance " +
		u64(in.PerformanceID) + " as '" + role + "'"

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM performance_roster WHERE performance_id = ? AND artist_id = ? AND role = ?",
		in.PerformanceID, in.ArtistID, role).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	e := &model.RosterEntry{PerformanceID: in.PerformanceID, ArtistID: in.ArtistID, Role: role, Context: in.Context}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO performance_roster (performance_id, artist_id, role, context) VALUES (?,?,?,?)",
		e.PerformanceID, e.ArtistID, e.Role, nullString(e.Context))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqPerformanceRosterEntry: msg}, msg)
	}
	if e.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return e, nil
}
