package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/middleware"
	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/token"
)

const invalidCredentialsMessage = "invalid email or password"

// AuthHandler implements user authentication endpoints.
type AuthHandler struct {
	Users   UserStore
	Tokens  TokenIssuer
	Limiter LoginLimiter
	Signup  RateLimiter
	NowFunc func() time.Time
}

// SignUp handles POST /auth/signup requests.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasTokens", h.Tokens != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Signup, r, "signup") {
		logger.Warn("signup throttled", "remote_addr", r.RemoteAddr)
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests, please try again later"})
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		logger.Warn("signup missing fields", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "name, email, and password are required"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("signup invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	if len(req.Password) < 6 {
		logger.Warn("signup password too short", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "password must be at least 6 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("signup failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		CreatedAt:    h.now(),
	}

	// Duplicate emails are caught by the store's unique index, not by a
	// check-then-insert, so concurrent signups cannot both succeed.
	id, err := h.Users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("signup conflict", "email", req.Email)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "email already exists"})
			return
		}
		logger.Error("signup failed to create user", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}
	user.ID = id

	pair, err := h.issuePair(user.ID)
	if err != nil {
		logger.Error("signup failed to issue tokens", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	logger.Info("new user registered", "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Public(),
	})
}

// Login handles POST /auth/login requests. The endpoint is guarded by a
// per-client sliding window of failed attempts.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Tokens == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasTokens", h.Tokens != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	// Malformed requests are rejected before the limiter is consulted and
	// never count as attempts.
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		logger.Warn("login missing credentials")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	clientKey := clientIP(r)
	if h.Limiter != nil && !h.Limiter.Allow(clientKey) {
		logger.Warn("login rate limited", "client", clientKey)
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many login attempts, please try again later"})
		return
	}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("login user lookup failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to process login"})
			return
		}
		h.recordFailure(clientKey)
		logger.Warn("login unknown email", "client", clientKey)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMessage})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.recordFailure(clientKey)
		logger.Warn("login password mismatch", "userId", user.ID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": invalidCredentialsMessage})
		return
	}

	pair, err := h.issuePair(user.ID)
	if err != nil {
		logger.Error("login failed to issue tokens", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		return
	}

	logger.Info("user logged in", "userId", user.ID)
	respondJSON(ctx, w, http.StatusOK, authResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user.Public(),
	})
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// itself is not rotated.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Tokens == nil {
		logger.Error("token service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "token service unavailable"})
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		logger.Warn("missing refresh token")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "refresh token is required"})
		return
	}

	claims, err := h.Tokens.Verify(req.RefreshToken, token.KindRefresh)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			logger.Warn("refresh token expired")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "refresh token expired, please login again"})
			return
		}
		logger.Warn("invalid refresh token", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		return
	}

	accessToken, _, err := h.Tokens.IssueAccess(claims.UserID)
	if err != nil {
		logger.Error("refresh failed to issue access token", "error", err, "userId", claims.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to refresh session"})
		return
	}

	logger.Info("token refreshed", "userId", claims.UserID)
	respondJSON(ctx, w, http.StatusOK, refreshResponse{AccessToken: accessToken})
}

// Me handles GET /auth/me requests for the authenticated user's profile.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.UserIDFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "access token required"})
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Account deleted after the token was issued.
			logger.Warn("profile for missing user", "userId", userID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("profile lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, profileResponse{User: user.Public()})
}

// Logout handles POST /auth/logout requests. Tokens are stateless, so logout
// only acknowledges; clients discard their tokens.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logging.FromContext(ctx).Info("user logged out", "userId", middleware.UserIDFromContext(ctx))
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h AuthHandler) issuePair(userID string) (models.TokenPair, error) {
	access, accessExp, err := h.Tokens.IssueAccess(userID)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, refreshExp, err := h.Tokens.IssueRefresh(userID)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (h AuthHandler) recordFailure(clientKey string) {
	if h.Limiter != nil {
		h.Limiter.RecordFailure(clientKey)
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type authResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         models.PublicUser `json:"user"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

type profileResponse struct {
	User models.PublicUser `json:"user"`
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}
