package handler

import (
	"net/http"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/transport/http/middleware"
)

// sessionOrFail pulls the session out of the request context, writing a 401
// and returning nil when there is none.
func sessionOrFail(w http.ResponseWriter, r *http.Request) *domain.Session {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil
	}
	return sess
}
