// Package session issues and verifies the signed tokens that carry the
// logged-in user's id, role and display name between requests. Logout is
// modeled as revocation: the token's jti is parked in a store until the
// token would have expired anyway.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the cookie the browser client stores the session token in.
const CookieName = "hms_session"

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrRevoked is returned when a token has been logged out.
	ErrRevoked = errors.New("session: token revoked")
)

// Claims carries the session payload inside the JWT.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// RevocationStore tracks logged-out token ids until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Manager issues and verifies HMAC-signed session tokens.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

// NewManager constructs a session manager. The revocation store may be nil,
// in which case logout is a client-side no-op.
func NewManager(secret string, ttl time.Duration, revoked RevocationStore) *Manager {
	if secret == "" {
		panic("session: secret required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// Issue signs a token for the given identity.
func (m *Manager) Issue(id Identity) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		Role: id.Role,
		Name: id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token, checks its signature and revocation state, and
// returns the identity it carries.
func (m *Manager) Verify(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return Identity{}, err
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Identity{}, fmt.Errorf("session: revocation check: %w", err)
		}
		if revoked {
			return Identity{}, ErrRevoked
		}
	}
	return Identity{UserID: claims.Subject, Role: claims.Role, Name: claims.Name}, nil
}

// Revoke invalidates a token for its remaining lifetime.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	if m.revoked == nil {
		return nil
	}
	claims, err := m.parse(tokenString)
	if err != nil {
		return err
	}
	ttl := m.ttl
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(m.now().UTC()); remaining > 0 {
			ttl = remaining
		}
	}
	if err := m.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	return nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
