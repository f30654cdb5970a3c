package model

import "time"

// User represents an account row in the `users` table.
//
// Fields:
//
//	ID             – primary key identifier of the user.
//	Username       – unique login name.
//	Email          – unique email address.
//	HashedPassword – bcrypt hash; never serialized.
//	CreatedAt      – timestamp of creation (UTC).
type User struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// RefreshToken models an entry in the `refresh_tokens` ledger. The token is
// stored verbatim; presence of the row is what makes a refresh token usable.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	Token     – the signed refresh JWT exactly as issued.
//	ExpiresAt – expiry copied from the token's exp claim.
//	CreatedAt – timestamp of issuance.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenPair is the body returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
