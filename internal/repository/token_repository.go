package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/musicuration-desk/internal/database"
)

// TokenRepo is the refresh-token ledger. A refresh token is usable only
// while its exact string has a row here; logout deletes the row.
type TokenRepo struct{ db database.DBTX }

func NewTokenRepo(db database.DBTX) *TokenRepo { return &TokenRepo{db: db} }

// Store records an issued refresh token for userID.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, token string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES (?,?,?,?)",
		userID, token, exp.UTC().Truncate(time.Second), now())
	return mapConstraint(err, nil, "refresh token already recorded")
}

// Exists reports whether token is present in the ledger.
func (r *TokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM refresh_tokens WHERE token = ? LIMIT 1", token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes every row holding token. Deleting an absent token is not
// an error.
func (r *TokenRepo) Delete(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token = ?", token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredForUser prunes ledger rows of userID whose expiry has passed.
func (r *TokenRepo) DeleteExpiredForUser(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id = ? AND expires_at < ?",
		userID, at.UTC().Truncate(time.Second))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
