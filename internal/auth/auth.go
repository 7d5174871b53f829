// Package auth issues and validates bearer tokens and carries the caller
// identity through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
}

// DisplayName is the most human-readable attribution available.
func (i Identity) DisplayName() string {
	switch {
	case i.Username != "":
		return i.Username
	case i.Email != "":
		return i.Email
	default:
		return i.UserID
	}
}

// Claims carries the identity inside a token. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller identity, if the request was authenticated.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for id that expires after the configured TTL.
func (t *Tokens) Issue(id Identity) (string, error) {
	return t.sign(id, t.ttl)
}

// IssueNonExpiring signs a token without an expiry, for service-to-service callers.
func (t *Tokens) IssueNonExpiring(id Identity) (string, error) {
	return t.sign(id, 0)
}

func (t *Tokens) sign(id Identity, ttl time.Duration) (string, error) {
	now := t.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id.UserID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Username: id.Username,
		Email:    id.Email,
		Roles:    id.Roles,
	}

	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Validate parses the token and returns the identity it carries.
func (t *Tokens) Validate(token string) (Identity, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: invalid token payload", ErrUnauthorized)
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}

	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Roles:    roles,
	}, nil
}
