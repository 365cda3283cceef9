package handlers

import (
	"net/http"

	"github.com/streamgate/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenIssuer
	Catalog       VideoCatalog
	LoginLimiter  LoginLimiter
	SignupLimiter RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Every route
// except health, signup, login, and refresh passes through the auth gate.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Tokens: deps.Tokens, Limiter: deps.LoginLimiter, Signup: deps.SignupLimiter}
	catalog := VideoHandler{Catalog: deps.Catalog}

	requireAuth := middleware.RequireAuth(deps.Tokens)

	mux.HandleFunc("/health", health.Handle)
	mux.HandleFunc("/auth/signup", auth.SignUp)
	mux.HandleFunc("/auth/login", auth.Login)
	mux.HandleFunc("/auth/refresh", auth.Refresh)
	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(auth.Me)))
	mux.Handle("/auth/logout", requireAuth(http.HandlerFunc(auth.Logout)))
	mux.Handle("/dashboard", requireAuth(http.HandlerFunc(catalog.Dashboard)))
	mux.Handle("/video/{id}/stream", requireAuth(http.HandlerFunc(catalog.Stream)))
	mux.Handle("/video/verify-token", requireAuth(http.HandlerFunc(catalog.VerifyToken)))
}
