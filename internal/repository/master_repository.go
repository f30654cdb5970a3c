package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// MasterRepo covers the small lookup tables: tie-ups, tours and tags.
type MasterRepo struct{ db database.DBTX }

func NewMasterRepo(db database.DBTX) *MasterRepo { return &MasterRepo{db: db} }

// nameTaken reports whether table already has a row called name.
func (r *MasterRepo) nameTaken(ctx context.Context, table, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE name = ? LIMIT 1", name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateTieup inserts a tie-up with a unique name.
func (r *MasterRepo) CreateTieup(ctx context.Context, in model.TieupInput) (*model.Tieup, error) {
	name := strings.TrimSpace(in.Name)
	msg := "tieup '" + name + "' already exists"
	if taken, err := r.nameTaken(ctx, tblTieups, name); err != nil {
		return nil, err
	} else if taken {
		return nil, &ConflictError{Message: msg}
	}
	t := &model.Tieup{Name: name, Category: in.Category}
	res, err := r.db.ExecContext(ctx, "INSERT INTO tieups (name, category) VALUES (?,?)", t.Name, nullString(t.Category))
	if err != nil {
		return nil, mapConstraint(err, map[string]string{database.UqTieupsName: msg}, msg)
	}
	if t.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTieups returns tie-ups ordered by id.
func (r *MasterRepo) ListTieups(ctx context.Context, skip, limit int) ([]model.Tieup, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, category FROM tieups ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Tieup{}
	for rows.Next() {
		var t model.Tieup
		if err := rows.Scan(&t.ID, &t.Name, &t.Category); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTour inserts a tour with a unique name.
func (r *MasterRepo) CreateTour(ctx context.Context, in model.NameInput) (*model.Tour, error) {
	id, name, err := r.createNamed(ctx, tblTours, database.UqToursName, "tour", in.Name)
	if err != nil {
		return nil, err
	}
	return &model.Tour{ID: id, Name: name}, nil
}

// ListTours returns tours ordered by id.
func (r *MasterRepo) ListTours(ctx context.Context, skip, limit int) ([]model.Tour, error) {
	var out []model.Tour
	err := r.listNamed(ctx, tblTours, skip, limit, func(id uint64, name string) {
		out = append(out, model.Tour{ID: id, Name: name})
	})
	if out == nil {
		out = []model.Tour{}
	}
	return out, err
}

// CreateTag inserts a tag with a unique name.
func (r *MasterRepo) CreateTag(ctx context.Context, in model.NameInput) (*model.Tag, error) {
	id, name, err := r.createNamed(ctx, tblTags, database.UqTagsName, "tag", in.Name)
	if err != nil {
		return nil, err
	}
	return &model.Tag{ID: id, Name: name}, nil
}

// ListTags returns tags ordered by id.
func (r *MasterRepo) ListTags(ctx context.Context, skip, limit int) ([]model.Tag, error) {
	var out []model.Tag
	err := r.listNamed(ctx, tblTags, skip, limit, func(id uint64, name string) {
		out = append(out, model.Tag{ID: id, Name: name})
	})
	if out == nil {
		out = []model.Tag{}
	}
	return out, err
}

func (r *MasterRepo) createNamed(ctx context.Context, table, constraint, entity, raw string) (uint64, string, error) {
	name := strings.TrimSpace(raw)
	msg := entity + " '" + name + "' already exists"
	if taken, err := r.nameTaken(ctx, table, name); err != nil {
		return 0, "", err
	} else if taken {
		return 0, "", &ConflictError{Message: msg}
	}
	res, err := r.db.ExecContext(ctx, "INSERT INTO "+table+" (name) VALUES (?)", name)
	if err != nil {
		return 0, "", mapConstraint(err, map[string]string{constraint: msg}, msg)
	}
	id, err := insertID(res)
	return id, name, err
}

func (r *MasterRepo) listNamed(ctx context.Context, table string, skip, limit int, each func(uint64, string)) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM "+table+" ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   uint64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		each(id, name)
	}
	return rows.Err()
}
