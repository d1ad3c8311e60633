package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/middleware"
)

// PageHandler serves the non-auth pages.
type PageHandler struct {
	Views  *Views
	Logger *zap.Logger
}

// Index renders the landing page.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index")
}

// Profile shows the logged-in user. It must be mounted behind
// middleware.LoginRequired.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "profile")
}

// Hello is a liveness page.
func (h *PageHandler) Hello(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, World!"))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string) {
	data := PageData{User: middleware.UserFromContext(r.Context())}
	if err := h.Views.Render(w, http.StatusOK, page, data); err != nil {
		h.Logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
