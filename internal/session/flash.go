package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// SetFlash stores a single message to be shown on the next page the client
// loads. A newer message replaces a pending one.
func (m *Manager) SetFlash(w http.ResponseWriter, message string) error {
	value, err := securecookie.EncodeMulti(flashCookieName, message, m.codecs...)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	// Flash cookies live for the browser session only.
	http.SetCookie(w, m.cookie(flashCookieName, value, 0))
	return nil
}

// PopFlash returns the pending message, if any, and removes it.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, m.cookie(flashCookieName, "", -1))

	var message string
	if err := securecookie.DecodeMulti(flashCookieName, c.Value, &message, m.codecs...); err != nil {
		m.log.Debug("discarding invalid flash cookie", zap.Error(err))
		return ""
	}
	return message
}
