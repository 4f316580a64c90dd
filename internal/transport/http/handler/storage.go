package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/onehope/resources-api/internal/application/storage"
	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/pkg/validate"
)

// StorageService is the surface the storage handler requires.
type StorageService interface {
	PresignUpload(ctx context.Context, sess *domain.Session, req storage.UploadRequest) (*storage.PresignedUpload, error)
	PresignDownload(ctx context.Context, sess *domain.Session, key, filename string) (string, error)
	PresignPreview(ctx context.Context, sess *domain.Session, key string) (string, error)
	RecentDownloads(ctx context.Context, sess *domain.Session) ([]string, error)
}

// StorageHandler handles the presigned-URL endpoints.
type StorageHandler struct {
	svc StorageService
}

func NewStorageHandler(svc StorageService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

// PresignUpload mints a PUT capability for a new object. Admin only; the
// role check lives in the service so it holds for every caller.
func (h *StorageHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	var req storage.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "filename required")
		return
	}
	out, err := h.svc.PresignUpload(r.Context(), sess, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: out.URL, Key: out.Key})
}

// PresignDownload mints a GET capability that forces an attachment download.
func (h *StorageHandler) PresignDownload(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key required")
		return
	}
	url, err := h.svc.PresignDownload(r.Context(), sess, key, r.URL.Query().Get("filename"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
}

// PresignPreview mints a GET capability that renders inline.
func (h *StorageHandler) PresignPreview(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key required")
		return
	}
	url, err := h.svc.PresignPreview(r.Context(), sess, key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
}

// RecentDownloads lists the caller's latest distinct downloads.
func (h *StorageHandler) RecentDownloads(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	keys, err := h.svc.RecentDownloads(r.Context(), sess)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListEnvelope{Data: keys})
}
