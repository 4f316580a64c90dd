package middleware

import (
	"net/http"

	"github.com/onehope/resources-api/internal/authz"
	"github.com/onehope/resources-api/internal/domain"
)

// RequireRole returns middleware that allows the request through only when
// the context session satisfies the minimum role: 401 without a valid
// session, 403 with one whose role is insufficient.
func RequireRole(min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := authz.Require(SessionFromContext(r.Context()), min); err {
			case nil:
				next.ServeHTTP(w, r)
			case domain.ErrUnauthenticated:
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			default:
				writeJSONError(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}
