// Package session issues and verifies the signed bearer tokens carried by API calls.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/pkg/id"
)

const tokenType = "session"

// MaxTTL bounds a session from issuance to expiry.
const MaxTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("session: invalid token")

// Claims binds a session to one user of one tenant.
type Claims struct {
	TenantID uint64 `json:"tid"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager clamps ttl to MaxTTL.
func NewManager(secret string, ttl time.Duration, issuer string) *Manager {
	if ttl <= 0 || ttl > MaxTTL {
		ttl = MaxTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// WithClock is used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue signs a session for u and returns it with its expiry.
func (m *Manager) Issue(u *user.User) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		TenantID: u.TenantID,
		Role:     string(u.Role),
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.NewID32(),
			Subject:   strconv.FormatUint(u.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify accepts only HS256 session tokens from this issuer that carry an issue time and
// an expiry at most MaxTTL apart.
func (m *Manager) Verify(token string) (*tenancy.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time) > MaxTTL {
		return nil, ErrInvalidToken
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 || claims.TenantID == 0 {
		return nil, ErrInvalidToken
	}
	return &tenancy.Session{
		ID:        claims.ID,
		UserID:    uid,
		TenantID:  claims.TenantID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
