package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSessionTTL = 7 * 24 * time.Hour

var (
	ErrMissingSigningSecret = errors.New("sessions: signing secret required")
	ErrMissingCookieName    = errors.New("sessions: cookie name required")
	ErrMissingSessionToken  = errors.New("sessions: token required")
	ErrInvalidSessionToken  = errors.New("sessions: invalid token")
	ErrExpiredSessionToken  = errors.New("sessions: token expired")
)

// SessionManagerConfig describes how session tokens are issued and validated.
type SessionManagerConfig struct {
	SigningSecret []byte
	CookieName    string
	Issuer        string
	Audience      string
	SessionTTL    time.Duration
	Clock         func() time.Time
}

// SessionManager issues and validates HS256 session tokens carried in an
// http-only cookie.
type SessionManager struct {
	signingSecret []byte
	cookieName    string
	issuer        string
	audience      string
	sessionTTL    time.Duration
	clock         func() time.Time
}

// NewSessionManager constructs a SessionManager with sane defaults.
func NewSessionManager(cfg SessionManagerConfig) (*SessionManager, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, ErrMissingSigningSecret
	}
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		return nil, ErrMissingCookieName
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SessionManager{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		cookieName:    cookieName,
		issuer:        strings.TrimSpace(cfg.Issuer),
		audience:      strings.TrimSpace(cfg.Audience),
		sessionTTL:    ttl,
		clock:         clock,
	}, nil
}

// CookieName returns the cookie name configured for session lookups.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// SessionTTL returns the configured token lifetime.
func (m *SessionManager) SessionTTL() time.Duration {
	return m.sessionTTL
}

// IssueToken produces a signed session token for the given user identifier.
func (m *SessionManager) IssueToken(userID uint) (string, error) {
	now := m.clock().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    m.issuer,
		Audience:  jwt.ClaimStrings{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingSecret)
}

// ValidateToken verifies the supplied token and returns the embedded user id.
func (m *SessionManager) ValidateToken(tokenString string) (uint, error) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return 0, ErrMissingSessionToken
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		trimmed,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("%w: unexpected signing algorithm %s", ErrInvalidSessionToken, t.Method.Alg())
			}
			return m.signingSecret, nil
		},
		jwt.WithTimeFunc(m.clock),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredSessionToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	if parsed == nil || !parsed.Valid {
		return 0, ErrInvalidSessionToken
	}

	userID, err := strconv.ParseUint(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrInvalidSessionToken
	}
	return uint(userID), nil
}

// ValidateRequest extracts the session cookie from the request and validates it.
func (m *SessionManager) ValidateRequest(r *http.Request) (uint, error) {
	if r == nil {
		return 0, ErrMissingSessionToken
	}
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie == nil {
		return 0, ErrMissingSessionToken
	}
	return m.ValidateToken(cookie.Value)
}
