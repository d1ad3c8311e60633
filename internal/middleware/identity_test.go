package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/common"
	"github.com/atinyakov/gophauth/internal/models"
	"github.com/atinyakov/gophauth/internal/session"
)

// dummyHandler is a placeholder that records if it was called and the context it received.
type dummyHandler struct {
	called bool
	ctx    context.Context
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	d.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type fakeSessions struct {
	userID int64
	has    bool
}

func (f fakeSessions) Load(*http.Request) *session.Session {
	s := &session.Session{}
	if f.has {
		s.SetUserID(f.userID)
	}
	return s
}

type fakeUsers struct {
	users map[int64]*models.User
	err   error
	calls int
}

func (f *fakeUsers) UserByID(_ context.Context, id int64) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func TestLoadLoggedInUser(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}

	tests := []struct {
		name      string
		sessions  fakeSessions
		users     *fakeUsers
		wantUser  *models.User
		wantCalls int
	}{
		{
			name:     "no session is anonymous",
			sessions: fakeSessions{},
			users:    &fakeUsers{},
		},
		{
			name:      "known user is loaded",
			sessions:  fakeSessions{userID: 1, has: true},
			users:     &fakeUsers{users: map[int64]*models.User{1: alice}},
			wantUser:  alice,
			wantCalls: 1,
		},
		{
			name:      "deleted user is anonymous",
			sessions:  fakeSessions{userID: 2, has: true},
			users:     &fakeUsers{users: map[int64]*models.User{1: alice}},
			wantCalls: 1,
		},
		{
			name:      "store failure is anonymous",
			sessions:  fakeSessions{userID: 1, has: true},
			users:     &fakeUsers{err: errors.New("db down")},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dummy := &dummyHandler{}
			h := LoadLoggedInUser(tt.sessions, tt.users, zap.NewNop())(dummy)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if !dummy.called {
				t.Fatal("expected next handler to be called")
			}
			if rec.Code != http.StatusOK {
				t.Errorf("expected 200 OK, got %d", rec.Code)
			}
			if got := UserFromContext(dummy.ctx); got != tt.wantUser {
				t.Errorf("UserFromContext = %+v; want %+v", got, tt.wantUser)
			}
			if tt.users.calls != tt.wantCalls {
				t.Errorf("UserByID calls = %d; want %d", tt.users.calls, tt.wantCalls)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("resolver must not write the session cookie")
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	if u := UserFromContext(context.Background()); u != nil {
		t.Errorf("expected nil for missing user, got %+v", u)
	}
	bob := &models.User{ID: 2, Username: "bob"}
	if u := UserFromContext(WithUser(context.Background(), bob)); u != bob {
		t.Errorf("expected bob, got %+v", u)
	}
	if u := UserFromContext(WithUser(context.Background(), nil)); u != nil {
		t.Errorf("expected nil for anonymous, got %+v", u)
	}
}
