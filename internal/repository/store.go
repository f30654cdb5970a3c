package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iliyamo/musicuration-desk/internal/database"
)

// Store hands out repositories bound either to the connection pool or to a
// transaction. Every write that touches more than one statement goes
// through Tx so it commits or rolls back as a unit.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool (health checks, migrations).
func (s *Store) DB() *sql.DB { return s.db }

// Q returns repositories running outside a transaction, for reads.
func (s *Store) Q() *Queries { return NewQueries(s.db) }

// Tx runs fn with repositories bound to a single transaction.
func (s *Store) Tx(ctx context.Context, fn func(q *Queries) error) error {
	return database.WithTx(ctx, s.db, func(tx database.DBTX) error {
		return fn(NewQueries(tx))
	})
}

// Queries groups every repository over one DBTX.
type Queries struct {
	Users        *UserRepo
	Tokens       *TokenRepo
	Artists      *ArtistRepo
	Songs        *SongRepo
	Links        *LinkRepo
	Masters      *MasterRepo
	Performances *PerformanceRepo
	Albums       *AlbumRepo
	Goods        *GoodsRepo
	Collections  *CollectionRepo
}

// NewQueries binds all repositories to db.
func NewQueries(db database.DBTX) *Queries {
	return &Queries{
		Users:        NewUserRepo(db),
		Tokens:       NewTokenRepo(db),
		Artists:      NewArtistRepo(db),
		Songs:        NewSongRepo(db),
		Links:        NewLinkRepo(db),
		Masters:      NewMasterRepo(db),
		Performances: NewPerformanceRepo(db),
		Albums:       NewAlbumRepo(db),
		Goods:        NewGoodsRepo(db),
		Collections:  NewCollectionRepo(db),
	}
}

// Tables that may be existence-checked. Names are never taken from input.
const (
	tblUsers        = "users"
	tblArtists      = "artists"
	tblSongs        = "songs"
	tblTieups       = "tieups"
	tblTours        = "tours"
	tblTags         = "tags"
	tblPerformances = "performances"
	tblAlbums       = "albums"
	tblMerchandise  = "merchandise"
	tblStores       = "stores"
)

// requireRow returns a *NotFoundError naming entity when table has no row
// with the given id.
func requireRow(ctx context.Context, db database.DBTX, entity, table string, id uint64) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(entity, id)
	case err != nil:
		return fmt.Errorf("check %s %d: %w", entity, id, err)
	}
	return nil
}

// requireOptionalRow is requireRow for nullable foreign keys.
func requireOptionalRow(ctx context.Context, db database.DBTX, entity, table string, id *uint64) error {
	if id == nil {
		return nil
	}
	return requireRow(ctx, db, entity, table, *id)
}

func insertID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// now is the timestamp source for created_at columns. Stored times are UTC
// with second precision so both drivers compare them consistently.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullID(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

func itoa(v int) string { return strconv.Itoa(v) }
