// Package session issues and verifies the signed login cookie and carries
// one-shot flash messages between requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the cookie holding the session token.
	CookieName = "worklog_session"

	issuer           = "worklog"
	revokedKeyPrefix = "session:revoked:%s"
)

var (
	// ErrNoSession is returned when the request carries no session cookie.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession covers bad signatures, expired tokens and malformed claims.
	ErrInvalidSession = errors.New("invalid session")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    uint
	ID        string
	ExpiresAt time.Time
}

// Manager signs session tokens with HS256 and, when a Redis client is set,
// tracks revoked token ids until they expire.
type Manager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	secure bool
}

// NewManager creates a session manager. rdb may be nil, in which case logout
// only clears the cookie.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client, secure bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		secure: secure,
	}
}

// Issue signs a token for userID.
func (m *Manager) Issue(userID uint) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies token and returns its claims.
func (m *Manager) Parse(token string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	return &Claims{
		UserID:    uint(userID),
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Login issues a token for userID and sets it as the session cookie.
func (m *Manager) Login(c *fiber.Ctx, userID uint) error {
	token, err := m.Issue(userID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Current returns the claims of the request's session cookie. Revoked
// tokens are rejected; a revocation lookup failure is returned as is so the
// caller can decide whether to fail open.
func (m *Manager) Current(c *fiber.Ctx) (*Claims, error) {
	token := c.Cookies(CookieName)
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := m.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.IsRevoked(c.UserContext(), claims.ID)
	if err != nil {
		return claims, err
	}
	if revoked {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Logout revokes the request's session, if any, and clears the cookie.
func (m *Manager) Logout(c *fiber.Ctx) error {
	defer expireCookie(c, CookieName, m.secure)

	token := c.Cookies(CookieName)
	if token == "" {
		return nil
	}
	claims, err := m.Parse(token)
	if err != nil {
		return nil
	}
	return m.Revoke(c.UserContext(), claims)
}

// Revoke marks claims as unusable until the token would have expired.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedKey(claims.ID), "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked by a logout.
func (m *Manager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.rdb == nil {
		return false, nil
	}
	n, err := m.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(jti string) string {
	return fmt.Sprintf(revokedKeyPrefix, jti)
}

func expireCookie(c *fiber.Ctx, name string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
