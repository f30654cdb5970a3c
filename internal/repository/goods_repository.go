package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// GoodsRepo covers merchandise, merchandise relationships and stores.
type GoodsRepo struct{ db database.DBTX }

func NewGoodsRepo(db database.DBTX) *GoodsRepo { return &GoodsRepo{db: db} }

// CreateMerchandise inserts a merchandise item with a unique name.
func (r *GoodsRepo) CreateMerchandise(ctx context.Context, in model.MerchandiseInput) (*model.Merchandise, error) {
	if err := requireOptionalRow(ctx, r.db, "artist", tblArtists, in.ArtistID); err != nil {
		return nil, err
	}
	if err := requireOptionalRow(ctx, r.db, "tour", tblTours, in.TourID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	msg := "merchandise '" + name + "' already exists"
	if err := r.nameFree(ctx, tblMerchandise, name, msg); err != nil {
		return nil, err
	}

	m := &model.Merchandise{
		Name:        name,
		Category:    in.Category,
		ArtistID:    in.ArtistID,
		TourID:      in.TourID,
		PriceYen:    in.PriceYen,
		ReleaseDate: in.ReleaseDate,
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO merchandise (name, category, artist_id, tour_id, price_yen, release_date) VALUES (?,?,?,?,?,?)`,
		m.Name, nullString(m.Category), nullID(m.ArtistID), nullID(m.TourID), nullInt(m.PriceYen), m.ReleaseDate)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqMerchandiseName: msg}, msg)
	}
	if m.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return m, nil
}

// AddRelationship links two distinct merchandise items.
func (r *GoodsRepo) AddRelationship(ctx context.Context, in model.MerchandiseRelationshipInput) (*model.MerchandiseRelationship, error) {
	if err := requireRow(ctx, r.db, "merchandise", tblMerchandise, in.MerchandiseID1); err != nil {
		return nil, err
	}
	if err := requireRow(ctx, r.db, "merchandise", tblMerchandise, in.MerchandiseID2); err != nil {
		return nil, err
	}
	kind := strings.TrimSpace(in.RelationshipType)
	id, err := insertRelationship(ctx, r.db, "merchandise_relationships", "merchandise_id_1", "merchandise_id_2",
		database.UqMerchandiseRelationships, in.MerchandiseID1, in.MerchandiseID2, kind)
	if err != nil {
		return nil, err
	}
	return &model.MerchandiseRelationship{
		ID:               id,
		MerchandiseID1:   in.MerchandiseID1,
		MerchandiseID2:   in.MerchandiseID2,
		RelationshipType: kind,
	}, nil
}

// CreateStore inserts a store with a unique name.
func (r *GoodsRepo) CreateStore(ctx context.Context, in model.StoreInput) (*model.Store, error) {
	name := strings.TrimSpace(in.Name)
	msg := "store '" + name + "' already exists"
	if err := r.nameFree(ctx, tblStores, name, msg); err != nil {
		return nil, err
	}
	s := &model.Store{Name: name, URL: in.URL, Notes: in.Notes}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stores (name, url, notes) VALUES (?,?,?)", s.Name, nullString(s.URL), nullString(s.Notes))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqStoresName: msg}, msg)
	}
	if s.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *GoodsRepo) nameFree(ctx context.Context, table, name, msg string) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE name = ? LIMIT 1", name).Scan(&one)
	switch {
	case err == nil:
		return &ConflictError{Message: msg}
	case errors.Is(err, sql.ErrNoRows):
		return nil
	default:
		return err
	}
}
