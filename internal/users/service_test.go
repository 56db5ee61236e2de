package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:users_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build users service: %v", err)
	}
	return service
}

func TestRegisterThenAuthenticate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if registered.ID == 0 {
		t.Fatalf("expected a persisted user id")
	}
	if registered.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", registered.Email)
	}

	authenticated, err := service.Authenticate(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if authenticated.ID != registered.ID {
		t.Fatalf("expected user id %d, got %d", registered.ID, authenticated.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "bob@example.com", "first"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if _, err := service.Register(ctx, "bob@example.com", "second"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	// Email comparison is case-insensitive.
	if _, err := service.Register(ctx, "BOB@example.com", "third"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected duplicate email error for upper-cased email, got %v", err)
	}
}

func TestRegisterRejectsMissingCredentials(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty-email", email: "", password: "secret"},
		{name: "empty-password", email: "carol@example.com", password: ""},
		{name: "blank-email", email: "   ", password: "secret"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Register(ctx, testCase.email, testCase.password)
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("expected missing credentials error, got %v", err)
			}
		})
	}
}

func TestAuthenticateFailsIdenticallyForUnknownEmailAndWrongPassword(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, "dave@example.com", "correct"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	_, unknownErr := service.Authenticate(ctx, "nobody@example.com", "correct")
	_, wrongErr := service.Authenticate(ctx, "dave@example.com", "incorrect")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("expected identical errors, got %q and %q", unknownErr, wrongErr)
	}
}

func TestPublicProjectionStripsPasswordHash(t *testing.T) {
	account := User{ID: 5, Email: "eve@example.com", PasswordHash: "$2a$10$hash"}
	public := account.Public()
	if public.ID != 5 || public.Email != "eve@example.com" {
		t.Fatalf("unexpected projection %+v", public)
	}
}
