package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/pkg/validate"
)

// UserService is the surface the admin users handler requires.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role) error
	SetBlocked(ctx context.Context, email string, blocked bool) error
}

// UserHandler handles the admin user-management endpoints. Route-level
// middleware already enforces the admin role before these run.
type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List returns every directory record.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersEnvelope{Data: users})
}

// Update applies role and blocked changes to a record, addressed by email.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	email := domain.NormalizeEmail(chi.URLParam(r, "email"))
	if !validate.Email(email) {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == nil && req.Blocked == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}
		if err := h.svc.SetRole(r.Context(), email, role); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	if req.Blocked != nil {
		if err := h.svc.SetBlocked(r.Context(), email, *req.Blocked); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "updated"})
}
