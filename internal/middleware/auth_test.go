package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamgate/backend/internal/token"
)

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService("test-secret", time.Hour, 7*24*time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return svc
}

func protectedHandler(t *testing.T, gotUserID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthMissingToken(t *testing.T) {
	svc := newTokenService(t)

	var userID string
	handler := RequireAuth(svc)(protectedHandler(t, &userID))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if userID != "" {
		t.Fatal("handler should not run without a token")
	}
}

func TestRequireAuthMalformedToken(t *testing.T) {
	svc := newTokenService(t)

	var userID string
	handler := RequireAuth(svc)(protectedHandler(t, &userID))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	svc := newTokenService(t)

	refresh, _, err := svc.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	var userID string
	handler := RequireAuth(svc)(protectedHandler(t, &userID))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token got %d", rec.Code)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	svc := newTokenService(t)

	issuedAt := time.Now().UTC()
	svc.NowFunc = func() time.Time { return issuedAt }

	access, _, err := svc.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	svc.NowFunc = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	var userID string
	handler := RequireAuth(svc)(protectedHandler(t, &userID))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token got %d", rec.Code)
	}
}

func TestRequireAuthAttachesUserID(t *testing.T) {
	svc := newTokenService(t)

	access, _, err := svc.IssueAccess("user-42")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	var userID string
	handler := RequireAuth(svc)(protectedHandler(t, &userID))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42 in context got %q", userID)
	}
}
