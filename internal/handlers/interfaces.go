package handlers

import (
	"context"
	"time"

	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/token"
	"github.com/streamgate/backend/internal/videos"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) (string, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// TokenIssuer mints and verifies the signed tokens backing every session.
type TokenIssuer interface {
	IssueAccess(userID string) (string, time.Time, error)
	IssueRefresh(userID string) (string, time.Time, error)
	Verify(tokenStr string, expected token.Kind) (token.Claims, error)
}

// VideoCatalog is the indirection layer servicing all video endpoints.
type VideoCatalog interface {
	ListPublic(ctx context.Context, page, limit int) ([]models.PublicVideo, videos.Pagination, error)
	RequestPlayback(ctx context.Context, videoID, userID string) (videos.PlaybackGrant, error)
	VerifyPlayback(tokenStr string) (string, error)
}

// LoginLimiter guards the login endpoint against credential stuffing.
type LoginLimiter interface {
	Allow(key string) bool
	RecordFailure(key string)
}
