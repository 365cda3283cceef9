package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/middleware"
	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/videos"
)

// VideoHandler provides the token-gated video endpoints.
type VideoHandler struct {
	Catalog VideoCatalog
}

// Dashboard handles GET /dashboard requests, returning a page of the public
// video catalog.
func (h VideoHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("video catalog unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video catalog unavailable"})
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", videos.DefaultPageSize)

	items, pagination, err := h.Catalog.ListPublic(ctx, page, limit)
	if err != nil {
		logger.Error("dashboard listing failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load dashboard"})
		return
	}

	logger.Info("dashboard served", "userId", middleware.UserIDFromContext(ctx), "page", pagination.Page)
	respondJSON(ctx, w, http.StatusOK, dashboardResponse{Videos: items, Pagination: pagination})
}

// Stream handles GET /video/{id}/stream requests. The response carries a
// playback token and an embed URL; the upstream source id never appears.
func (h VideoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("video catalog unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video catalog unavailable"})
		return
	}

	videoID := r.PathValue("id")
	userID := middleware.UserIDFromContext(ctx)

	grant, err := h.Catalog.RequestPlayback(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, videos.ErrVideoNotFound) {
			logger.Warn("stream requested for unknown video", "videoId", videoID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("playback request failed", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to prepare playback"})
		return
	}

	logger.Info("video stream granted", "videoId", videoID, "userId", userID)
	respondJSON(ctx, w, http.StatusOK, grant)
}

// VerifyToken handles POST /video/verify-token requests.
func (h VideoHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Catalog == nil {
		logger.Error("video catalog unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video catalog unavailable"})
		return
	}

	var req verifyTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.PlaybackToken = strings.TrimSpace(req.PlaybackToken)
	if req.PlaybackToken == "" {
		logger.Warn("missing playback token")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "playback token is required"})
		return
	}

	videoID, err := h.Catalog.VerifyPlayback(req.PlaybackToken)
	if err != nil {
		logger.Warn("playback token rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired playback token"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, verifyTokenResponse{Valid: true, VideoID: videoID})
}

type dashboardResponse struct {
	Videos     []models.PublicVideo `json:"videos"`
	Pagination videos.Pagination    `json:"pagination"`
}

type verifyTokenRequest struct {
	PlaybackToken string `json:"playback_token"`
}

type verifyTokenResponse struct {
	Valid   bool   `json:"valid"`
	VideoID string `json:"video_id"`
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}
