package app

import (
	"github.com/streamgate/backend/internal/config"
	"github.com/streamgate/backend/internal/db"
	"github.com/streamgate/backend/internal/handlers"
	"github.com/streamgate/backend/internal/middleware"
	"github.com/streamgate/backend/internal/ratelimit"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/token"
	"github.com/streamgate/backend/internal/videos"
)

// buildDependencies assembles the handler collaborators from configuration and
// the connected database.
func buildDependencies(database *db.Database, cfg config.Config) (handlers.Dependencies, error) {
	tokens, err := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.PlaybackTokenTTL)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewMongoUserRepository(database.Users)

	videoStore := videos.NewCachingStore(repositories.NewMongoVideoRepository(database.Videos), cfg.CatalogCacheTTL)
	catalog := videos.NewCatalog(videoStore, tokens, cfg.EmbedBaseURL)

	loginLimiter := ratelimit.NewLoginLimiter(cfg.LoginWindow, cfg.LoginMaxAttempts)
	signupLimiter := middleware.NewIPRateLimiter(cfg.SignupRequests, cfg.SignupWindow, cfg.SignupBurst, 2*cfg.SignupWindow)

	return handlers.Dependencies{
		Users:         users,
		Tokens:        tokens,
		Catalog:       catalog,
		LoginLimiter:  loginLimiter,
		SignupLimiter: signupLimiter,
	}, nil
}
