package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// CollectionRepo records what a user owns, wants and attended.
type CollectionRepo struct{ db database.DBTX }

func NewCollectionRepo(db database.DBTX) *CollectionRepo { return &CollectionRepo{db: db} }

// ErrUnknownEntityType is returned for a possession whose entity_type is
// neither album nor merchandise.
var ErrUnknownEntityType = errors.New("entity_type must be 'album' or 'merchandise'")

// AddPossession records that userID owns or wants an album or merchandise
// item. Status defaults to Owned.
func (r *CollectionRepo) AddPossession(ctx context.Context, userID uint64, in model.PossessionInput) (*model.UserPossession, error) {
	var table string
	switch in.EntityType {
	case model.EntityAlbum:
		table = tblAlbums
	case model.EntityMerchandise:
		table = tblMerchandise
	default:
		return nil, ErrUnknownEntityType
	}
	if err := requireRow(ctx, r.db, in.EntityType, table, in.EntityID); err != nil {
		return nil, err
	}
	if err := requireOptionalRow(ctx, r.db, "store", tblStores, in.StoreID); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("%s %d is already in the collection", in.EntityType, in.EntityID)

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM user_possessions WHERE user_id = ? AND entity_type = ? AND entity_id = ?",
		userID, in.EntityType, in.EntityID).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.StatusOwned
	}
	p := &model.UserPossession{
		UserID:       userID,
		EntityType:   in.EntityType,
		EntityID:     in.EntityID,
		Status:       status,
		StoreID:      in.StoreID,
		AcquiredDate: in.AcquiredDate,
		Notes:        in.Notes,
		CreatedAt:    now(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO user_possessions (user_id, entity_type, entity_id, status, store_id, acquired_date, notes, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		p.UserID, p.EntityType, p.EntityID, p.Status, nullID(p.StoreID), p.AcquiredDate, nullString(p.Notes), p.CreatedAt)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqUserPossessionsEntity: msg}, msg)
	}
	if p.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return p, nil
}

// AddAttendance records that userID attended a performance, once.
func (r *CollectionRepo) AddAttendance(ctx context.Context, userID uint64, in model.AttendanceInput) (*model.UserAttendance, error) {
	if err := requireRow(ctx, r.db, "performance", tblPerformances, in.PerformanceID); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("performance %d is already recorded as attended", in.PerformanceID)

	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM user_attendances WHERE user_id = ? AND performance_id = ?", userID, in.PerformanceID).Scan(&one)
	if err == nil {
		return nil, &ConflictError{Message: msg}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	a := &model.UserAttendance{UserID: userID, PerformanceID: in.PerformanceID, Notes: in.Notes, CreatedAt: now()}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_attendances (user_id, performance_id, notes, created_at) VALUES (?,?,?,?)",
		a.UserID, a.PerformanceID, nullString(a.Notes), a.CreatedAt)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqUserAttendancesPerf: msg}, msg)
	}
	if a.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return a, nil
}

// Possessions lists userID's collection, newest first.
func (r *CollectionRepo) Possessions(ctx context.Context, userID uint64) ([]model.UserPossession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, entity_type, entity_id, status, store_id, acquired_date, notes, created_at
		 FROM user_possessions WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserPossession{}
	for rows.Next() {
		var p model.UserPossession
		if err := rows.Scan(&p.ID, &p.UserID, &p.EntityType, &p.EntityID, &p.Status,
			&p.StoreID, &p.AcquiredDate, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Attendances lists the performances userID attended, newest first.
func (r *CollectionRepo) Attendances(ctx context.Context, userID uint64) ([]model.UserAttendance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, performance_id, notes, created_at
		 FROM user_attendances WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserAttendance{}
	for rows.Next() {
		var a model.UserAttendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.PerformanceID, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
