// Package token issues and verifies the bearer tokens that carry a caller's
// identity and role between requests.
package token

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/user"
)

// ErrInvalidToken is returned for malformed, tampered, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload: the user's identity plus the role claim the
// access layer resolves into an Actor.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HMAC-SHA256 tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a Manager with the given signing secret and token
// lifetime.
func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl}
}

// Issue signs a token for the given user.
func (m *Manager) Issue(u *user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Parse verifies a raw token and returns the Actor it carries.
func (m *Manager) Parse(raw string) (auth.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return auth.Actor{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return auth.Actor{}, ErrInvalidToken
	}

	return auth.Actor{
		UserID: claims.UserID,
		Role:   user.Role(claims.Role),
	}, nil
}
