// Package http provides HTTP handlers for user registration, login and
// logout backed by signed-cookie sessions.
package http

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/middleware"
	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/service"
	"github.com/atinyakov/gophauth/internal/session"
)

const (
	// LoginPath is where anonymous users are sent.
	LoginPath = "/auth/login"
	// IndexPath is the landing page.
	IndexPath = "/"

	registeredMessage = "Registration complete, please log in."
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates a user. Validation and duplicate-username failures
	// carry a message meant for the user.
	Register(ctx context.Context, username, password string) error
	// Login returns the user matching the credentials.
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// SessionStore reads and writes the session and flash cookies.
type SessionStore interface {
	Load(r *http.Request) *session.Session
	Save(w http.ResponseWriter, s *session.Session) error
	SetFlash(w http.ResponseWriter, message string) error
	PopFlash(w http.ResponseWriter, r *http.Request) string
}

// AuthHandler handles HTTP requests for user registration, login and logout.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Sessions    SessionStore
	Views       *Views
	Logger      *zap.Logger
}

// RegisterForm renders the registration form.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", h.Sessions.PopFlash(w, r))
}

// Register handles a submitted registration form. On success the client is
// sent to the login page; no session is created. Otherwise the form is shown
// again with the error message.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, password := credentials(r)

	err := h.AuthService.Register(r.Context(), username, password)
	if err == nil {
		h.Logger.Info("user registered", zap.String("username", username))
		if err := h.Sessions.SetFlash(w, registeredMessage); err != nil {
			h.Logger.Warn("failed to set flash", zap.Error(err))
		}
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	msg, ok := userMessage(err)
	if !ok {
		h.internalError(w, "registration failed", err)
		return
	}
	h.render(w, r, "register", msg)
}

// LoginForm renders the login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", h.Sessions.PopFlash(w, r))
}

// Login handles a submitted login form. On success any previous session
// state is discarded, the user id is stored and the client is sent to the
// landing page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password := credentials(r)

	user, err := h.AuthService.Login(r.Context(), username, password)
	if err != nil {
		msg, ok := userMessage(err)
		if !ok {
			h.internalError(w, "login failed", err)
			return
		}
		h.render(w, r, "login", msg)
		return
	}

	s := h.Sessions.Load(r)
	s.Clear()
	s.SetUserID(user.ID)
	if err := h.Sessions.Save(w, s); err != nil {
		h.internalError(w, "failed to save session", err)
		return
	}

	h.Logger.Info("user logged in", zap.Int64("user_id", user.ID))
	http.Redirect(w, r, IndexPath, http.StatusFound)
}

// Logout clears the session and returns to the landing page.
// It is safe to call without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Load(r)
	s.Clear()
	if err := h.Sessions.Save(w, s); err != nil {
		h.internalError(w, "failed to clear session", err)
		return
	}
	http.Redirect(w, r, IndexPath, http.StatusFound)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, page, message string) {
	data := PageData{User: middleware.UserFromContext(r.Context()), Message: message}
	if err := h.Views.Render(w, http.StatusOK, page, data); err != nil {
		h.internalError(w, "failed to render page", err)
	}
}

func (h *AuthHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.Logger.Error(msg, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// credentials reads the submitted form. Missing fields read as empty.
func credentials(r *http.Request) (username, password string) {
	return r.PostFormValue("username"), r.PostFormValue("password")
}

// userMessage returns the text to show for errors caused by the submitted
// credentials. ok is false for anything else.
func userMessage(err error) (msg string, ok bool) {
	var verr *service.ValidationError
	var dup *service.DuplicateUsernameError
	switch {
	case errors.As(err, &verr):
		return verr.Message, true
	case errors.As(err, &dup):
		return dup.Error(), true
	case errors.Is(err, service.ErrIncorrectUsername),
		errors.Is(err, service.ErrIncorrectPassword):
		return err.Error(), true
	}
	return "", false
}
