// Package http provides HTTP routing and middleware configuration
// for the gophauth service.
package http

import (
	"net/http"

	"github.com/atinyakov/gophauth/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// authentication pages.
//
// Parameters:
//
//	authHandler  - handler for registration, login and logout
//	pageHandler  - handler for the landing, hello and profile pages
//	sessions     - session reader used to resolve the current user
//	users        - user lookup used to resolve the current user
//	logger       - structured logger for middleware
//
// Routes:
//
//	GET  /               → pageHandler.Index
//	GET  /hello          → pageHandler.Hello
//	GET  /profile        → pageHandler.Profile (login required)
//	GET  /auth/register  → authHandler.RegisterForm
//	POST /auth/register  → authHandler.Register
//	GET  /auth/login     → authHandler.LoginForm
//	POST /auth/login     → authHandler.Login
//	GET  /auth/logout    → authHandler.Logout (POST accepted too)
//
// Middleware chain (applied in order):
//  1. RealIP : takes the client address from proxy headers
//  2. WithRequestLogging(logger) : logs incoming requests
//  3. Recoverer : turns panics into 500 responses
//  4. LoadLoggedInUser : resolves the session into the current user
func NewRouter(
	authHandler *AuthHandler,
	pageHandler *PageHandler,
	sessions middleware.SessionLoader,
	users middleware.UserFinder,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	// Resolve the current user before any route runs
	r.Use(middleware.LoadLoggedInUser(sessions, users, logger))

	r.Get("/", pageHandler.Index)
	r.Get("/hello", pageHandler.Hello)

	// Protected group: anonymous users are sent to the login page
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRequired(LoginPath, logger))
		r.Get("/profile", pageHandler.Profile)
	})

	r.Route("/auth", func(r chi.Router) {
		// Only accept form submissions
		r.Use(chiMiddleware.AllowContentType("application/x-www-form-urlencoded", "multipart/form-data"))

		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Post("/logout", authHandler.Logout)
	})

	return r
}
