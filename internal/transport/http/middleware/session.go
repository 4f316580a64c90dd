package middleware

import (
	"context"
	"net/http"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// Session reads the sealed cookie once per request and, when the seal
// verifies, injects the Session into the context. A missing, malformed or
// expired token leaves the context without a session rather than rejecting:
// the authorization guard downstream decides what each route requires.
func Session(manager *session.Manager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := manager.Read(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the verified session, or nil when the request
// carried none.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}

// WithSession returns a context carrying the given session. Test helper for
// handlers that read SessionFromContext.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}
