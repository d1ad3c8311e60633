package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/gophauth/internal/common"
)

// LoginRequired guards handlers that need a logged-in user. Anonymous
// requests are redirected to loginPath and never reach the wrapped handler.
// It relies on LoadLoggedInUser having run earlier in the chain.
func LoginRequired(loginPath string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				logger.Debug("redirecting to login",
					zap.String("path", r.URL.Path),
					zap.Error(common.ErrUnauthenticated),
				)
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRequiredFunc is LoginRequired for a single handler function.
func LoginRequiredFunc(loginPath string, logger *zap.Logger, h http.HandlerFunc) http.HandlerFunc {
	return LoginRequired(loginPath, logger)(h).ServeHTTP
}
