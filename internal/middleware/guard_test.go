package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/models"
)

func TestLoginRequired_AnonymousRedirects(t *testing.T) {
	sideEffects := 0
	h := LoginRequired("/auth/login", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sideEffects++
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profile", nil))

	if rec.Code != http.StatusFound {
		t.Errorf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("expected redirect to /auth/login, got %q", loc)
	}
	if sideEffects != 0 {
		t.Errorf("wrapped handler ran %d times for an anonymous request", sideEffects)
	}
}

func TestLoginRequired_AuthenticatedPassesThrough(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	var seen *http.Request
	h := LoginRequired("/auth/login", zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		w.Header().Set("X-Handled", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile?tab=1", nil)
	req = req.WithContext(WithUser(req.Context(), alice))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != req {
		t.Error("wrapped handler must receive the original request")
	}
	if rec.Code != http.StatusTeapot || rec.Body.String() != "body" || rec.Header().Get("X-Handled") != "yes" {
		t.Errorf("response was altered: %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoginRequiredFunc(t *testing.T) {
	called := false
	h := LoginRequiredFunc("/login", zap.NewNop(), func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/secret", nil))
	if called || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous request: called=%v location=%q", called, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req = req.WithContext(WithUser(req.Context(), &models.User{ID: 3}))
	h(httptest.NewRecorder(), req)
	if !called {
		t.Error("expected handler to run for a logged-in user")
	}
}
