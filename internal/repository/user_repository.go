package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/model"
)

// ErrUserNotFound is returned by lookups that match no user.
var ErrUserNotFound = errors.New("user not found")

// UserRepo is the credential store over the `users` table.
type UserRepo struct{ db database.DBTX }

func NewUserRepo(db database.DBTX) *UserRepo { return &UserRepo{db: db} }

const userColumns = "id, username, email, hashed_password, created_at"

// Create inserts a user with an already hashed password. Username and email
// are checked first so the conflict names the taken key; a concurrent insert
// that slips past the check still surfaces as a ConflictError.
func (r *UserRepo) Create(ctx context.Context, username, email, hashedPassword string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := r.GetByUsername(ctx, username); err == nil {
		return nil, conflict("username '%s' is already taken", username)
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email = ? LIMIT 1", email).Scan(&one)
	if err == nil {
		return nil, conflict("email '%s' is already registered", email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	u := &model.User{Username: username, Email: email, HashedPassword: hashedPassword, CreatedAt: now()}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email, hashed_password, created_at) VALUES (?,?,?,?)",
		u.Username, u.Email, u.HashedPassword, u.CreatedAt)
	if err != nil {
		return nil, mapConstraint(err, map[string]string{
			database.UqUsersUsername: "username '" + username + "' is already taken",
			database.UqUsersEmail:    "email '" + email + "' is already registered",
		}, "user already exists")
	}
	if u.ID, err = insertID(res); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
