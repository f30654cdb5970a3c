// Package service holds the authentication and session lifecycle: login,
// refresh, logout and bearer-token resolution, plus the audit publisher.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/queue"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/utils"
)

// ErrUnauthorized matches every *UnauthorizedError.
var ErrUnauthorized = errors.New("unauthorized")

// UnauthorizedError carries the detail returned to the client with a 401.
type UnauthorizedError struct {
	Detail string
}

func (e *UnauthorizedError) Error() string { return e.Detail }

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

var (
	// ErrBadCredentials is shared by "no such user" and "wrong password".
	ErrBadCredentials = &UnauthorizedError{Detail: "Incorrect username or password"}
	// ErrInvalidCredentials rejects a bearer token that fails decoding or
	// names no user.
	ErrInvalidCredentials = &UnauthorizedError{Detail: "Could not validate credentials"}

	ErrInvalidRefresh  = &UnauthorizedError{Detail: "Invalid refresh token"}
	ErrNotRefreshToken = &UnauthorizedError{Detail: "Token is not a refresh token"}
	ErrRevokedRefresh  = &UnauthorizedError{Detail: "Refresh token has been revoked"}
	ErrRefreshNoUser   = &UnauthorizedError{Detail: "User not found"}
)

// TokenType is the token_type of every issued pair.
const TokenType = "bearer"

// AuthService orchestrates credentials, tokens and the refresh-token ledger.
type AuthService struct {
	store      *repository.Store
	codec      *utils.TokenCodec
	bcryptCost int
	events     Publisher
}

// NewAuthService wires the service. events may be nil.
func NewAuthService(store *repository.Store, codec *utils.TokenCodec, bcryptCost int, events Publisher) *AuthService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AuthService{store: store, codec: codec, bcryptCost: bcryptCost, events: events}
}

// Register creates a user. Username and email must be unused.
func (s *AuthService) Register(ctx context.Context, in model.UserCreate) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	var u *model.User
	err = s.store.Tx(ctx, func(q *repository.Queries) error {
		var err error
		u, err = q.Users.Create(ctx, in.Username, in.Email, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Info().Uint64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return u, nil
}

// Login verifies the credentials, issues an access/refresh pair and records
// the refresh token in the ledger. The caller's expired ledger rows are
// pruned in the same transaction.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	username = strings.TrimSpace(username)
	var (
		pair *model.TokenPair
		user *model.User
	)
	err := s.store.Tx(ctx, func(q *repository.Queries) error {
		u, err := q.Users.GetByUsername(ctx, username)
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrBadCredentials
		}
		if err != nil {
			return err
		}
		if !utils.VerifyPassword(u.HashedPassword, password) {
			return ErrBadCredentials
		}

		access, _, err := s.codec.IssueAccess(u.Username)
		if err != nil {
			return err
		}
		refresh, refreshExp, err := s.codec.IssueRefresh(u.Username)
		if err != nil {
			return err
		}
		if _, err := q.Tokens.DeleteExpiredForUser(ctx, u.ID, s.codec.CurrentTime()); err != nil {
			return fmt.Errorf("prune refresh tokens: %w", err)
		}
		if err := q.Tokens.Store(ctx, u.ID, refresh, refreshExp); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
		user = u
		pair = &model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenType}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.NewSessionEvent(queue.EventLogin, user.ID, user.Username))
	return pair, nil
}

// Refresh exchanges a ledger-held refresh token for a new access token. The
// refresh token is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if !claims.IsRefresh() {
		return nil, ErrNotRefreshToken
	}

	q := s.store.Q()
	ok, err := q.Tokens.Exists(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRevokedRefresh
	}
	u, err := q.Users.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrRefreshNoUser
	}
	if err != nil {
		return nil, err
	}

	access, _, err := s.codec.IssueAccess(u.Username)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: TokenType}, nil
}

// Logout deletes refreshToken from the ledger. Deleting a token that is not
// there succeeds.
func (s *AuthService) Logout(ctx context.Context, user *model.User, refreshToken string) error {
	n, err := s.store.Q().Tokens.Delete(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	logging.Debug().Uint64("user_id", user.ID).Int64("deleted", n).Msg("logout")
	publish(ctx, s.events, queue.NewSessionEvent(queue.EventLogout, user.ID, user.Username))
	return nil
}

// Authenticate resolves an access token to its user. Refresh tokens are not
// accepted as bearer tokens.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*model.User, error) {
	claims, err := s.codec.Decode(bearer)
	if err != nil || claims.IsRefresh() || claims.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.store.Q().Users.GetByUsername(ctx, claims.Subject)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
