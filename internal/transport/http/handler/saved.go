package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/onehope/resources-api/internal/domain"
)

// SavedService is the surface the saved-resources handler requires.
type SavedService interface {
	SaveResource(ctx context.Context, sess *domain.Session, resourceID string) error
	UnsaveResource(ctx context.Context, sess *domain.Session, resourceID string) error
	SavedResources(ctx context.Context, sess *domain.Session) ([]string, error)
}

// SavedHandler handles the saved-resources endpoints.
type SavedHandler struct {
	svc SavedService
}

func NewSavedHandler(svc SavedService) *SavedHandler {
	return &SavedHandler{svc: svc}
}

// List returns the caller's saved resource ids.
func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	ids, err := h.svc.SavedResources(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: ids})
}

// Save pins a resource to the caller's list.
func (h *SavedHandler) Save(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "resource id required")
		return
	}
	if err := h.svc.SaveResource(r.Context(), sess, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "saved"})
}

// Unsave removes a resource from the caller's list.
func (h *SavedHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "resource id required")
		return
	}
	if err := h.svc.UnsaveResource(r.Context(), sess, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "removed"})
}
