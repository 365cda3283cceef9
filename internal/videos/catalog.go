package videos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/token"
)

var (
	// ErrVideoNotFound indicates the requested video id does not exist.
	ErrVideoNotFound = errors.New("video not found")
)

const (
	// DefaultPageSize is applied when the caller does not request a limit.
	DefaultPageSize = 2
	// MaxPageSize caps the number of videos returned per page.
	MaxPageSize = 20
)

// Store captures the catalog persistence operations the indirection layer needs.
type Store interface {
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListActive(ctx context.Context, offset, limit int) ([]models.Video, int64, error)
}

// PlaybackTokens mints and verifies the playback credentials that gate
// embed-URL resolution.
type PlaybackTokens interface {
	IssuePlayback(videoID, userID string) (string, time.Time, error)
	Verify(tokenStr string, expected token.Kind) (token.Claims, error)
}

// Pagination describes the page of results returned by ListPublic.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// PlaybackGrant is the server-side answer to a playback request. EmbedURL is
// a safe, embeddable pointer derived from the source id; the source id itself
// never appears in it as a lookup credential.
type PlaybackGrant struct {
	VideoID       string `json:"video_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PlaybackToken string `json:"playback_token"`
	EmbedURL      string `json:"embed_url"`
}

// Catalog is the indirection layer between opaque video ids and the upstream
// media provider. Public projections are built from PublicVideo, which has no
// source id field, so the identifier cannot leak by serialization.
type Catalog struct {
	store     Store
	tokens    PlaybackTokens
	embedBase string
}

// NewCatalog constructs the catalog service. embedBase is the provider embed
// URL prefix, e.g. "https://www.youtube.com/embed".
func NewCatalog(store Store, tokens PlaybackTokens, embedBase string) *Catalog {
	return &Catalog{
		store:     store,
		tokens:    tokens,
		embedBase: strings.TrimRight(embedBase, "/"),
	}
}

// ListPublic returns a page of active videos in their public form. page is
// clamped to >= 1 and limit to [1, MaxPageSize]; limit 0 selects the default
// page size.
func (c *Catalog) ListPublic(ctx context.Context, page, limit int) ([]models.PublicVideo, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	videos, total, err := c.store.ListActive(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list active videos: %w", err)
	}

	items := make([]models.PublicVideo, 0, len(videos))
	for _, v := range videos {
		items = append(items, v.Public())
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return items, Pagination{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// RequestPlayback looks up the video, mints a playback token bound to the
// video/user pair and resolves the embed URL from the stored source id. The
// source id is only ever read here, server-side.
func (c *Catalog) RequestPlayback(ctx context.Context, videoID, userID string) (PlaybackGrant, error) {
	video, err := c.store.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return PlaybackGrant{}, ErrVideoNotFound
		}
		return PlaybackGrant{}, fmt.Errorf("find video: %w", err)
	}

	playbackToken, _, err := c.tokens.IssuePlayback(video.ID, userID)
	if err != nil {
		return PlaybackGrant{}, fmt.Errorf("issue playback token: %w", err)
	}

	return PlaybackGrant{
		VideoID:       video.ID,
		Title:         video.Title,
		Description:   video.Description,
		PlaybackToken: playbackToken,
		EmbedURL:      c.embedURL(video.SourceID),
	}, nil
}

// VerifyPlayback validates a playback token and returns the bound video id.
func (c *Catalog) VerifyPlayback(tokenStr string) (string, error) {
	claims, err := c.tokens.Verify(tokenStr, token.KindPlayback)
	if err != nil {
		return "", err
	}
	return claims.VideoID, nil
}

func (c *Catalog) embedURL(sourceID string) string {
	return c.embedBase + "/" + url.PathEscape(sourceID)
}
