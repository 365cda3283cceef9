package app

import (
	"testing"
	"time"

	"github.com/streamgate/backend/internal/config"
	"github.com/streamgate/backend/internal/db"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:        "test-secret",
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		PlaybackTokenTTL: time.Hour,
		LoginWindow:      5 * time.Minute,
		LoginMaxAttempts: 5,
		SignupRequests:   30,
		SignupWindow:     time.Minute,
		SignupBurst:      10,
		EmbedBaseURL:     "https://www.youtube.com/embed",
		CatalogCacheTTL:  30 * time.Second,
	}
}

func TestBuildDependencies(t *testing.T) {
	deps, err := buildDependencies(&db.Database{}, testConfig())
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user store to be wired")
	}
	if deps.Tokens == nil {
		t.Fatal("expected token service to be wired")
	}
	if deps.Catalog == nil {
		t.Fatal("expected catalog to be wired")
	}
	if deps.LoginLimiter == nil {
		t.Fatal("expected login limiter to be wired")
	}
	if deps.SignupLimiter == nil {
		t.Fatal("expected signup limiter to be wired")
	}
}

func TestBuildDependenciesRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""

	if _, err := buildDependencies(&db.Database{}, cfg); err == nil {
		t.Fatal("expected an error when the signing secret is empty")
	}
}
