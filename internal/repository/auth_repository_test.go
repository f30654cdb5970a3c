package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestTokenRepo_Store(t *testing.T) {
	db, mock := newMock(t)
	exp := time.Date(2026, 1, 2, 3, 4, 5, 999, time.UTC)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\?,\?,\?,\?\)$`).
		WithArgs(uint64(7), "tok", exp.Truncate(time.Second), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewTokenRepo(db).Store(context.Background(), 7, "tok", exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_StoreDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'tok' for key 'refresh_tokens.uq_refresh_tokens_token'"})

	err := NewTokenRepo(db).Store(context.Background(), 7, "tok", time.Now())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTokenRepo_Exists(t *testing.T) {
	db, mock := newMock(t)
	q := `^SELECT id FROM refresh_tokens WHERE token = \? LIMIT 1$`
	mock.ExpectQuery(q).WithArgs("present").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(q).WithArgs("absent").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("broken").WillReturnError(errors.New("db down"))

	repo := NewTokenRepo(db)
	ok, err := repo.Exists(context.Background(), "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Exists(context.Background(), "broken")
	assert.EqualError(t, err, "db down")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_DeleteIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	q := `^DELETE FROM refresh_tokens WHERE token = \?$`
	mock.ExpectExec(q).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenRepo(db)
	n, err := repo.Delete(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(context.Background(), "tok")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepo_DeleteExpiredForUser(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`^DELETE FROM refresh_tokens WHERE user_id = \? AND expires_at < \?$`).
		WithArgs(uint64(3), at).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewTokenRepo(db).DeleteExpiredForUser(context.Background(), 3, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = orig })

	mock.ExpectQuery(`FROM users WHERE username = \?`).WithArgs("alice").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT 1 FROM users WHERE email = \?`).WithArgs("alice@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("alice", "alice@example.com", "hash", fixed).
		WillReturnResult(sqlmock.NewResult(42, 1))

	u, err := NewUserRepo(db).Create(context.Background(), " alice ", "Alice@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, fixed, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_CreateTakenUsername(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "username", "email", "hashed_password", "created_at"}).
		AddRow(1, "alice", "a@example.com", "h", time.Now())
	mock.ExpectQuery(`FROM users WHERE username = \?`).WithArgs("alice").WillReturnRows(rows)

	_, err := NewUserRepo(db).Create(context.Background(), "alice", "other@example.com", "hash")
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "alice")
}

func TestUserRepo_GetByUsernameMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE username = \?`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
