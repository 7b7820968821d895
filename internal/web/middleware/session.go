package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/JonMunkholm/StudioUsers/internal/core"
	"github.com/JonMunkholm/StudioUsers/internal/logging"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_id"

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (core.Session, error)
}

// SessionToken returns the token from the session cookie or, failing that,
// an "Authorization: Bearer" header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// LoadSession attaches the caller's session to the request context when the
// token is valid. Requests without a valid session pass through unchanged.
func LoadSession(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("session rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := core.ContextWithSession(r.Context(), sess)
			ctx = logging.WithAttrs(ctx, "admin", sess.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession calls unauthorized instead of next when the request has no
// session.
func RequireSession(unauthorized http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := core.SessionFromContext(r.Context()); !ok {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
