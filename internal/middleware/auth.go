package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/token"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// TokenVerifier validates bearer tokens presented on protected routes.
type TokenVerifier interface {
	Verify(tokenStr string, expected token.Kind) (token.Claims, error)
}

// RequireAuth gates a handler behind a valid access token. On success the
// authenticated user id is attached to the request context; every failure
// short-circuits with a 401.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.FromContext(r.Context())

			raw := bearerToken(r)
			if raw == "" {
				logger.Warn("missing access token", "path", r.URL.Path)
				unauthorized(w, "access token required")
				return
			}

			claims, err := tokens.Verify(raw, token.KindAccess)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					logger.Warn("expired access token", "path", r.URL.Path)
					unauthorized(w, "access token expired")
				case errors.Is(err, token.ErrKindMismatch):
					logger.Warn("wrong token kind presented", "path", r.URL.Path)
					unauthorized(w, "invalid access token")
				default:
					logger.Warn("invalid access token", "path", r.URL.Path)
					unauthorized(w, "invalid access token")
				}
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID stores the authenticated user id on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
