package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testSigningSecret = "test-signing-secret"

func newTestManager(t *testing.T, clock func() time.Time) *SessionManager {
	t.Helper()
	manager, err := NewSessionManager(SessionManagerConfig{
		SigningSecret: []byte(testSigningSecret),
		CookieName:    "inkpad_session",
		Issuer:        "inkpad-auth",
		Audience:      "inkpad-api",
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("failed to construct session manager: %v", err)
	}
	return manager
}

func TestNewSessionManagerRequiresSecretAndCookie(t *testing.T) {
	_, err := NewSessionManager(SessionManagerConfig{CookieName: "session"})
	if !errors.Is(err, ErrMissingSigningSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	_, err = NewSessionManager(SessionManagerConfig{SigningSecret: []byte("secret")})
	if !errors.Is(err, ErrMissingCookieName) {
		t.Fatalf("expected missing cookie name error, got %v", err)
	}
}

func TestIssueAndValidateTokenRoundTrip(t *testing.T) {
	manager := newTestManager(t, nil)

	token, err := manager.IssueToken(42)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	userID, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user id 42, got %d", userID)
	}
}

func TestValidateTokenRejectsExpiredSession(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0).UTC()
	issuer := newTestManager(t, func() time.Time { return issuedAt })

	token, err := issuer.IssueToken(7)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	eightDaysLater := issuedAt.Add(8 * 24 * time.Hour)
	validator := newTestManager(t, func() time.Time { return eightDaysLater })

	if _, err := validator.ValidateToken(token); !errors.Is(err, ErrExpiredSessionToken) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	manager := newTestManager(t, nil)

	forged, err := NewSessionManager(SessionManagerConfig{
		SigningSecret: []byte("some-other-secret"),
		CookieName:    "inkpad_session",
		Issuer:        "inkpad-auth",
		Audience:      "inkpad-api",
	})
	if err != nil {
		t.Fatalf("failed to construct forging manager: %v", err)
	}

	token, err := forged.IssueToken(7)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrInvalidSessionToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestValidateTokenRejectsMalformedInput(t *testing.T) {
	manager := newTestManager(t, nil)

	testCases := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: ErrMissingSessionToken},
		{name: "whitespace", token: "   ", want: ErrMissingSessionToken},
		{name: "garbage", token: "not.a.jwt", want: ErrInvalidSessionToken},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := manager.ValidateToken(testCase.token); !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}

func TestValidateRequestReadsSessionCookie(t *testing.T) {
	manager := newTestManager(t, nil)

	token, err := manager.IssueToken(9)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/notes", http.NoBody)
	request.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: token})

	userID, err := manager.ValidateRequest(request)
	if err != nil {
		t.Fatalf("failed to validate request: %v", err)
	}
	if userID != 9 {
		t.Fatalf("expected user id 9, got %d", userID)
	}

	bare := httptest.NewRequest(http.MethodGet, "/api/notes", http.NoBody)
	if _, err := manager.ValidateRequest(bare); !errors.Is(err, ErrMissingSessionToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	manager := newTestManager(t, nil)

	cookie := manager.SessionCookie("token-value")
	if !cookie.HttpOnly {
		t.Fatalf("expected http-only cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected same-site lax, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("unexpected max age %d", cookie.MaxAge)
	}

	cleared := manager.ExpiredSessionCookie()
	if cleared.MaxAge >= 0 {
		t.Fatalf("expected clearing cookie to carry negative max age, got %d", cleared.MaxAge)
	}
	if cleared.Value != "" {
		t.Fatalf("expected clearing cookie to carry no value")
	}
}
