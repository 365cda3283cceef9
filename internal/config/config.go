package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// ObjectStoreConfig describes the optional S3-compatible bucket used by the
// seed command to host thumbnail assets.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Config captures the runtime configuration for the StreamGate backend service.
type Config struct {
	AppPort  int
	MongoURI string
	LogLevel string
	SeedDir  string

	// JWTSecret signs every issued token. It has no default: startup fails
	// when it is absent.
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	PlaybackTokenTTL time.Duration

	LoginWindow      time.Duration
	LoginMaxAttempts int

	SignupRequests int
	SignupWindow   time.Duration
	SignupBurst    int

	EmbedBaseURL    string
	CatalogCacheTTL time.Duration

	ObjectStore ObjectStoreConfig
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides through environment
// variables. The JWT signing secret is required.
func Load() (Config, error) {
	cfg := Config{
		AppPort:  getInt("STREAMGATE_PORT", 8080),
		MongoURI: getString("STREAMGATE_MONGO_URI", "mongodb://localhost:27017/streamgate"),
		LogLevel: getString("STREAMGATE_LOG_LEVEL", "info"),
		SeedDir:  getString("STREAMGATE_SEED_DIR", "seeds"),

		JWTSecret:        os.Getenv("STREAMGATE_JWT_SECRET"),
		AccessTokenTTL:   getDuration("STREAMGATE_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:  getDuration("STREAMGATE_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		PlaybackTokenTTL: getDuration("STREAMGATE_PLAYBACK_TOKEN_TTL", time.Hour),

		LoginWindow:      getDuration("STREAMGATE_LOGIN_WINDOW", 5*time.Minute),
		LoginMaxAttempts: getInt("STREAMGATE_LOGIN_MAX_ATTEMPTS", 5),

		SignupRequests: getInt("STREAMGATE_SIGNUP_REQUESTS", 30),
		SignupWindow:   getDuration("STREAMGATE_SIGNUP_WINDOW", time.Minute),
		SignupBurst:    getInt("STREAMGATE_SIGNUP_BURST", 10),

		EmbedBaseURL:    getString("STREAMGATE_EMBED_BASE_URL", "https://www.youtube.com/embed"),
		CatalogCacheTTL: getDuration("STREAMGATE_CATALOG_CACHE_TTL", 30*time.Second),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("STREAMGATE_S3_BUCKET", ""),
			Region:        getString("STREAMGATE_S3_REGION", "us-east-1"),
			Endpoint:      getString("STREAMGATE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("STREAMGATE_S3_PUBLIC_BASE_URL", ""),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: STREAMGATE_JWT_SECRET is required")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
