package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onehope/resources-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LoginEnvelope wraps successful login responses. The sealed token travels
// in the Set-Cookie header, never in the body.
type LoginEnvelope struct {
	Role string `json:"role"`
}

// URLEnvelope wraps a minted presigned URL.
type URLEnvelope struct {
	URL string `json:"url"`
	Key string `json:"key,omitempty"`
}

// ListEnvelope wraps string-list responses (recent downloads, saved ids).
type ListEnvelope struct {
	Data []string `json:"data"`
}

// UsersEnvelope wraps the admin user list.
type UsersEnvelope struct {
	Data []domain.User `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps the domain sentinels onto HTTP statuses. Unrecognized
// errors become a 500 with a generic body so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrAccountBlocked):
		writeError(w, http.StatusForbidden, "account blocked")
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
