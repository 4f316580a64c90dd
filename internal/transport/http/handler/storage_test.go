package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onehope/resources-api/internal/application/storage"
	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/transport/http/middleware"
)

type mockStorageSvc struct{ mock.Mock }

func (m *mockStorageSvc) PresignUpload(ctx context.Context, sess *domain.Session, req storage.UploadRequest) (*storage.PresignedUpload, error) {
	args := m.Called(ctx, sess, req)
	if r, _ := args.Get(0).(*storage.PresignedUpload); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageSvc) PresignDownload(ctx context.Context, sess *domain.Session, key, filename string) (string, error) {
	args := m.Called(ctx, sess, key, filename)
	return args.String(0), args.Error(1)
}

func (m *mockStorageSvc) PresignPreview(ctx context.Context, sess *domain.Session, key string) (string, error) {
	args := m.Called(ctx, sess, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorageSvc) RecentDownloads(ctx context.Context, sess *domain.Session) ([]string, error) {
	args := m.Called(ctx, sess)
	return args.Get(0).([]string), args.Error(1)
}

func withSess(r *http.Request, sess *domain.Session) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), sess))
}

var (
	userSess  = &domain.Session{Email: "u@x.com", Role: domain.RoleUser}
	adminSess = &domain.Session{Email: "a@x.com", Role: domain.RoleAdmin}
)

func TestPresignUpload_Success(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("PresignUpload", mock.Anything, adminSess, storage.UploadRequest{Filename: "deck.pdf", ContentType: "application/pdf", Folder: "decks"}).
		Return(&storage.PresignedUpload{URL: "https://s3/put", Key: "collections/decks/1-deck.pdf"}, nil)
	h := NewStorageHandler(svc)

	req := withSess(postJSON("/v1/storage/presign/upload", `{"filename":"deck.pdf","content_type":"application/pdf","folder":"decks"}`), adminSess)
	rr := httptest.NewRecorder()
	h.PresignUpload(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://s3/put")
	assert.Contains(t, rr.Body.String(), "collections/decks/1-deck.pdf")
}

func TestPresignUpload_NoSession(t *testing.T) {
	h := NewStorageHandler(new(mockStorageSvc))

	rr := httptest.NewRecorder()
	h.PresignUpload(rr, postJSON("/v1/storage/presign/upload", `{"filename":"deck.pdf"}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPresignUpload_NonAdminForbidden(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("PresignUpload", mock.Anything, userSess, mock.Anything).
		Return(nil, domain.ErrForbidden)
	h := NewStorageHandler(svc)

	req := withSess(postJSON("/v1/storage/presign/upload", `{"filename":"deck.pdf"}`), userSess)
	rr := httptest.NewRecorder()
	h.PresignUpload(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestPresignUpload_MissingFilename(t *testing.T) {
	svc := new(mockStorageSvc)
	h := NewStorageHandler(svc)

	req := withSess(postJSON("/v1/storage/presign/upload", `{"folder":"decks"}`), adminSess)
	rr := httptest.NewRecorder()
	h.PresignUpload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestPresignDownload_Success(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("PresignDownload", mock.Anything, userSess, "collections/decks/deck.pdf", "deck.pdf").
		Return("https://s3/get", nil)
	h := NewStorageHandler(svc)

	req := withSess(httptest.NewRequest(http.MethodGet, "/v1/storage/presign/download?key=collections%2Fdecks%2Fdeck.pdf&filename=deck.pdf", nil), userSess)
	rr := httptest.NewRecorder()
	h.PresignDownload(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://s3/get")
}

func TestPresignDownload_MissingKey(t *testing.T) {
	h := NewStorageHandler(new(mockStorageSvc))

	req := withSess(httptest.NewRequest(http.MethodGet, "/v1/storage/presign/download", nil), userSess)
	rr := httptest.NewRecorder()
	h.PresignDownload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPresignDownload_StorageUnconfigured(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("PresignDownload", mock.Anything, userSess, "k", "").
		Return("", domain.ErrUnavailable)
	h := NewStorageHandler(svc)

	req := withSess(httptest.NewRequest(http.MethodGet, "/v1/storage/presign/download?key=k", nil), userSess)
	rr := httptest.NewRecorder()
	h.PresignDownload(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPresignPreview_Success(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("PresignPreview", mock.Anything, userSess, "k").Return("https://s3/inline", nil)
	h := NewStorageHandler(svc)

	req := withSess(httptest.NewRequest(http.MethodGet, "/v1/storage/presign/preview?key=k", nil), userSess)
	rr := httptest.NewRecorder()
	h.PresignPreview(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "https://s3/inline")
}

func TestRecentDownloads_Success(t *testing.T) {
	svc := new(mockStorageSvc)
	svc.On("RecentDownloads", mock.Anything, userSess).Return([]string{"a", "b"}, nil)
	h := NewStorageHandler(svc)

	req := withSess(httptest.NewRequest(http.MethodGet, "/v1/downloads/recent", nil), userSess)
	rr := httptest.NewRecorder()
	h.RecentDownloads(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":["a","b"]}`, rr.Body.String())
}
