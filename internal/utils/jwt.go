package utils // package utils provides the token codec and password hashing helpers

import (
	"errors" // sentinel errors for token decoding
	"fmt"    // error wrapping
	"time"   // expirations and clocks

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
	"github.com/google/uuid"       // random token identifiers (jti)
)

// TokenTypeRefresh is the value of the "type" claim on refresh tokens.
// Access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

// ErrInvalidToken is returned for any token that fails decoding: bad
// signature, unexpected algorithm, malformed input or passed expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both access and refresh tokens.  Subject
// holds the username.  ID (jti) is random per token so two tokens issued for
// the same user within one second still differ.
type Claims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c Claims) IsRefresh() bool { return c.Type == TokenTypeRefresh }

// TokenCodec signs and verifies HS256 tokens with a shared secret.  Now is
// the clock used for issuing and for expiry checks; nil means time.Now.
type TokenCodec struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// NewTokenCodec builds a codec from the configured secret and lifetimes.
func NewTokenCodec(secret string, accessTTLMin, refreshTTLDays int) *TokenCodec {
	return &TokenCodec{
		Secret:     []byte(secret),
		AccessTTL:  time.Duration(accessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

func (c *TokenCodec) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// CurrentTime reads the codec clock, so ledger expiry checks agree with the
// expiries the codec stamps.
func (c *TokenCodec) CurrentTime() time.Time { return c.now() }

// IssueAccess returns a signed access token for username and its expiry.
func (c *TokenCodec) IssueAccess(username string) (string, time.Time, error) {
	return c.issue(username, "", c.AccessTTL)
}

// IssueRefresh returns a signed refresh token (type=refresh) and its expiry.
func (c *TokenCodec) IssueRefresh(username string) (string, time.Time, error) {
	return c.issue(username, TokenTypeRefresh, c.RefreshTTL)
}

func (c *TokenCodec) issue(subject, typ string, ttl time.Duration) (string, time.Time, error) {
	// exp/iat are whole seconds on the wire; truncate so the returned expiry
	// matches what Decode will later see
	now := c.now().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := c.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Encode signs arbitrary claims with HS256.
func (c *TokenCodec) Encode(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies signature, algorithm and expiry and returns the claims.
// Every failure is reported as ErrInvalidToken wrapping the parser error.
func (c *TokenCodec) Decode(token string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
