// Package session keeps per-browser authentication state in a signed cookie.
//
// The whole session is serialized into the cookie value and signed with
// HMAC-SHA256 by securecookie; the server keeps no session table. A cookie
// that is missing, expired, or fails signature verification loads as an
// empty (anonymous) session.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	// DefaultCookieName is the name of the session cookie.
	DefaultCookieName = "session"
	// DefaultMaxAge matches the lifetime of a permanent browser session.
	DefaultMaxAge = 31 * 24 * time.Hour

	flashCookieName = "flash"
)

// ErrNoSecret is returned when no signing secret is configured.
var ErrNoSecret = errors.New("session: at least one secret is required")

// Options configures the session cookie.
type Options struct {
	// CookieName overrides DefaultCookieName.
	CookieName string
	// MaxAge bounds both the cookie lifetime and the accepted age of the
	// signed timestamp. Zero means DefaultMaxAge.
	MaxAge time.Duration
	// Secure marks cookies as HTTPS-only.
	Secure bool
}

// Manager reads and writes sessions.
type Manager struct {
	codecs []securecookie.Codec
	name   string
	maxAge int
	secure bool
	log    *zap.Logger
}

// NewManager builds a Manager. The first secret signs new cookies; the
// remaining ones are only used to verify cookies signed before a key rotation.
func NewManager(secrets []string, opts Options, log *zap.Logger) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}
	if log == nil {
		log = zap.NewNop()
	}

	name := opts.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	codecs := make([]securecookie.Codec, 0, len(secrets))
	for _, secret := range secrets {
		sc := securecookie.New([]byte(secret), nil).MaxAge(int(maxAge.Seconds()))
		sc.SetSerializer(securecookie.JSONEncoder{})
		codecs = append(codecs, sc)
	}

	return &Manager{
		codecs: codecs,
		name:   name,
		maxAge: int(maxAge.Seconds()),
		secure: opts.Secure,
		log:    log,
	}, nil
}

// Load returns the session carried by r. It never fails: an absent or
// untrusted cookie yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	s := &Session{}
	c, err := r.Cookie(m.name)
	if err != nil {
		return s
	}
	if err := securecookie.DecodeMulti(m.name, c.Value, &s.data, m.codecs...); err != nil {
		m.log.Debug("discarding invalid session cookie", zap.Error(err))
		return &Session{}
	}
	return s
}

// Save writes s to the response. An empty session expires the cookie.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s.IsEmpty() {
		http.SetCookie(w, m.cookie(m.name, "", -1))
		return nil
	}
	value, err := securecookie.EncodeMulti(m.name, s.data, m.codecs...)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	http.SetCookie(w, m.cookie(m.name, value, m.maxAge))
	return nil
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// Session is the decoded content of one session cookie. It is owned by a
// single request and must not be shared.
type Session struct {
	data payload
}

type payload struct {
	UserID *int64 `json:"user_id,omitempty"`
}

// UserID returns the logged-in user id, if any.
func (s *Session) UserID() (int64, bool) {
	if s.data.UserID == nil {
		return 0, false
	}
	return *s.data.UserID, true
}

// SetUserID records id as the logged-in user.
func (s *Session) SetUserID(id int64) {
	s.data.UserID = &id
}

// Clear removes every field from the session.
func (s *Session) Clear() {
	s.data = payload{}
}

// IsEmpty reports whether the session carries no fields.
func (s *Session) IsEmpty() bool {
	return s.data == payload{}
}
