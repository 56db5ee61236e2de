package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrMissingCredentials indicates an empty email or password.
	ErrMissingCredentials = errors.New("users: email and password required")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials covers both an unknown email and a password
	// mismatch so callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("users: invalid credentials")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the dependencies of the account service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service manages account registration and credential verification.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: %w", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// Register stores a new account with a bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, email, password string) (PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return PublicUser{}, ErrMissingCredentials
	}

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return PublicUser{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("account lookup failed", zap.Error(err))
		return PublicUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return PublicUser{}, err
	}

	account := User{Email: email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		s.logger.Error("account insert failed", zap.Error(err))
		return PublicUser{}, err
	}

	s.logger.Info("account registered", zap.Uint("user_id", account.ID))
	return account.Public(), nil
}

// Authenticate verifies an email/password pair and returns the matching
// account. Unknown emails and wrong passwords fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (PublicUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return PublicUser{}, ErrMissingCredentials
	}

	var account User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PublicUser{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("account lookup failed", zap.Error(err))
		return PublicUser{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return PublicUser{}, ErrInvalidCredentials
	}

	return account.Public(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
