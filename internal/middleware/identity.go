// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/common"
	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/session"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionLoader reads the session carried by a request.
type SessionLoader interface {
	Load(r *http.Request) *session.Session
}

// UserFinder loads users by id.
type UserFinder interface {
	// UserByID returns common.ErrNotFound for unknown ids.
	UserByID(ctx context.Context, id int64) (*models.User, error)
}

// LoadLoggedInUser resolves the session of every request into a user record
// and stores it in the request context, where UserFromContext finds it.
//
// A request without a user id, with an id that no longer exists, or whose
// lookup fails proceeds as anonymous. The middleware never writes the
// session and never fails the request.
func LoadLoggedInUser(sessions SessionLoader, users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *models.User

			if id, ok := sessions.Load(r).UserID(); ok {
				u, err := users.UserByID(r.Context(), id)
				switch {
				case err == nil:
					user = u
				case errors.Is(err, common.ErrNotFound):
					logger.Debug("session refers to unknown user", zap.Int64("user_id", id))
				default:
					logger.Error("failed to load session user", zap.Int64("user_id", id), zap.Error(err))
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user. A nil user means anonymous.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user resolved for the current request,
// or nil for an anonymous request.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}
