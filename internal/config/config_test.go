package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("STREAMGATE_JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when STREAMGATE_JWT_SECRET is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STREAMGATE_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080 got %d", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("expected access ttl 1h got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected refresh ttl 168h got %v", cfg.RefreshTokenTTL)
	}
	if cfg.LoginWindow != 5*time.Minute || cfg.LoginMaxAttempts != 5 {
		t.Fatalf("unexpected login limiter defaults %v/%d", cfg.LoginWindow, cfg.LoginMaxAttempts)
	}
	if cfg.EmbedBaseURL == "" {
		t.Fatal("expected a default embed base url")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STREAMGATE_JWT_SECRET", "test-secret")
	t.Setenv("STREAMGATE_PORT", "9090")
	t.Setenv("STREAMGATE_ACCESS_TOKEN_TTL", "30m")
	t.Setenv("STREAMGATE_LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected port 9090 got %d", cfg.AppPort)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected access ttl 30m got %v", cfg.AccessTokenTTL)
	}
	if cfg.LoginMaxAttempts != 3 {
		t.Fatalf("expected 3 attempts got %d", cfg.LoginMaxAttempts)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("STREAMGATE_JWT_SECRET", "test-secret")
	t.Setenv("STREAMGATE_PORT", "not-a-number")
	t.Setenv("STREAMGATE_LOGIN_WINDOW", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected fallback port got %d", cfg.AppPort)
	}
	if cfg.LoginWindow != 5*time.Minute {
		t.Fatalf("expected fallback window got %v", cfg.LoginWindow)
	}
}
