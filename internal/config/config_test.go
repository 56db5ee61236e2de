package config

import (
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("session.signing_secret", "secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:4000" {
		t.Fatalf("unexpected http address %q", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != "inkpad.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.UploadsDir != "uploads" {
		t.Fatalf("unexpected uploads dir %q", cfg.UploadsDir)
	}
	if cfg.SessionCookieName != "inkpad_session" {
		t.Fatalf("unexpected cookie name %q", cfg.SessionCookieName)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	configViper := NewViper()

	if _, err := Load(configViper); err == nil || !strings.Contains(err.Error(), "signing_secret") {
		t.Fatalf("expected signing secret error, got %v", err)
	}
}

func TestLoadRejectsBlankRequiredValues(t *testing.T) {
	testCases := []struct {
		name string
		key  string
	}{
		{name: "cookie-name", key: "session.cookie_name"},
		{name: "database-path", key: "database.path"},
		{name: "uploads-dir", key: "uploads.dir"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set("session.signing_secret", "secret")
			configViper.Set(testCase.key, "   ")

			if _, err := Load(configViper); err == nil {
				t.Fatalf("expected validation error for blank %s", testCase.key)
			}
		})
	}
}
