package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onehope/resources-api/internal/domain"
)

// --- mocks ---

type mockPresigner struct{ mock.Mock }

func (m *mockPresigner) UploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockPresigner) DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, filename, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockPresigner) PreviewURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type mockDownloadLog struct{ mock.Mock }

func (m *mockDownloadLog) Put(ctx context.Context, e *domain.DownloadEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockDownloadLog) ListRecent(ctx context.Context, userID string, limit int32) ([]domain.DownloadEntry, error) {
	args := m.Called(ctx, userID, limit)
	if es, _ := args.Get(0).([]domain.DownloadEntry); es != nil {
		return es, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSaved struct{ mock.Mock }

func (m *mockSaved) Put(ctx context.Context, s *domain.SavedResource) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSaved) Delete(ctx context.Context, userID, resourceID string) error {
	return m.Called(ctx, userID, resourceID).Error(0)
}
func (m *mockSaved) ListByUser(ctx context.Context, userID string) ([]domain.SavedResource, error) {
	args := m.Called(ctx, userID)
	if ss, _ := args.Get(0).([]domain.SavedResource); ss != nil {
		return ss, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Resolve(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var (
	userSess  = &domain.Session{Email: "a@x.com", Role: domain.RoleUser}
	adminSess = &domain.Session{Email: "admin@x.com", Role: domain.RoleAdmin}
	fixedNow  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newSvc(p *mockPresigner, dl *mockDownloadLog, sv *mockSaved, dir *mockDirectory) *Service {
	deps := ServiceDeps{
		Log:       dl,
		Saved:     sv,
		Directory: dir,
		Now:       func() time.Time { return fixedNow },
		Logger:    zerolog.Nop(),
	}
	if p != nil {
		deps.Presigner = p
	}
	return NewService(deps)
}

// --- PresignUpload ---

func TestPresignUpload_SanitizesAndNamespacesKey(t *testing.T) {
	p := &mockPresigner{}
	wantKey := fmt.Sprintf("collections/summer-camp/%d-weird_name_1_.pdf", fixedNow.UnixMilli())
	p.On("UploadURL", mock.Anything, wantKey, "application/pdf", time.Hour).Return("https://signed/put", nil)

	svc := newSvc(p, nil, nil, nil)
	out, err := svc.PresignUpload(context.Background(), adminSess, UploadRequest{
		Filename:    "weird name/1!.pdf",
		ContentType: "application/pdf",
		Folder:      "summer-camp",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://signed/put", out.URL)
	assert.Equal(t, wantKey, out.Key)
}

func TestPresignUpload_DefaultsFolderAndContentType(t *testing.T) {
	p := &mockPresigner{}
	wantKey := fmt.Sprintf("collections/uploads/%d-report.pdf", fixedNow.UnixMilli())
	p.On("UploadURL", mock.Anything, wantKey, "application/octet-stream", time.Hour).Return("https://signed/put", nil)

	svc := newSvc(p, nil, nil, nil)
	out, err := svc.PresignUpload(context.Background(), adminSess, UploadRequest{Filename: "report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, wantKey, out.Key)
}

func TestPresignUpload_RequiresAdmin(t *testing.T) {
	svc := newSvc(&mockPresigner{}, nil, nil, nil)

	_, err := svc.PresignUpload(context.Background(), userSess, UploadRequest{Filename: "f.pdf"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.PresignUpload(context.Background(), nil, UploadRequest{Filename: "f.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestPresignUpload_StorageUnconfigured(t *testing.T) {
	svc := newSvc(nil, nil, nil, nil)
	_, err := svc.PresignUpload(context.Background(), adminSess, UploadRequest{Filename: "f.pdf"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

// --- PresignDownload ---

func TestPresignDownload_LogsDownload(t *testing.T) {
	p := &mockPresigner{}
	dl := &mockDownloadLog{}
	dir := &mockDirectory{}
	p.On("DownloadURL", mock.Anything, "collections/c1/file.pdf", "file.pdf", 10*time.Minute).Return("https://signed/get", nil)
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1", Email: "a@x.com"}, nil)
	dl.On("Put", mock.Anything, mock.MatchedBy(func(e *domain.DownloadEntry) bool {
		return e.UserID == "u1" && e.ResourceKey == "collections/c1/file.pdf" && e.EntryID != ""
	})).Return(nil)

	svc := newSvc(p, dl, nil, dir)
	url, err := svc.PresignDownload(context.Background(), userSess, "collections/c1/file.pdf", "file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/get", url)
	dl.AssertExpectations(t)
}

func TestPresignDownload_LogFailureDoesNotBlock(t *testing.T) {
	p := &mockPresigner{}
	dl := &mockDownloadLog{}
	dir := &mockDirectory{}
	p.On("DownloadURL", mock.Anything, "k", "", 10*time.Minute).Return("https://signed/get", nil)
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	dl.On("Put", mock.Anything, mock.Anything).Return(errors.New("table down"))

	svc := newSvc(p, dl, nil, dir)
	url, err := svc.PresignDownload(context.Background(), userSess, "k", "")
	require.NoError(t, err)
	assert.NotEmpty(t, url)
}

func TestPresignDownload_RequiresSession(t *testing.T) {
	svc := newSvc(&mockPresigner{}, nil, nil, nil)
	_, err := svc.PresignDownload(context.Background(), nil, "k", "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestPresignDownload_StorageUnconfigured(t *testing.T) {
	svc := newSvc(nil, nil, nil, nil)
	_, err := svc.PresignDownload(context.Background(), userSess, "k", "")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

// --- PresignPreview ---

func TestPresignPreview_UserAllowed(t *testing.T) {
	p := &mockPresigner{}
	p.On("PreviewURL", mock.Anything, "k", 10*time.Minute).Return("https://signed/inline", nil)

	svc := newSvc(p, nil, nil, nil)
	url, err := svc.PresignPreview(context.Background(), userSess, "k")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/inline", url)
}

// --- RecentDownloads ---

func TestRecentDownloads_DedupesNewestFirst(t *testing.T) {
	dl := &mockDownloadLog{}
	dir := &mockDirectory{}
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	dl.On("ListRecent", mock.Anything, "u1", int32(50)).Return([]domain.DownloadEntry{
		{ResourceKey: "c"}, {ResourceKey: "a"}, {ResourceKey: "c"}, {ResourceKey: "b"}, {ResourceKey: "a"},
	}, nil)

	svc := newSvc(nil, dl, nil, dir)
	keys, err := svc.RecentDownloads(context.Background(), userSess)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keys)
}

func TestRecentDownloads_CapsAtTwelve(t *testing.T) {
	dl := &mockDownloadLog{}
	dir := &mockDirectory{}
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	var entries []domain.DownloadEntry
	for i := 0; i < 30; i++ {
		entries = append(entries, domain.DownloadEntry{ResourceKey: fmt.Sprintf("key-%d", i)})
	}
	dl.On("ListRecent", mock.Anything, "u1", int32(50)).Return(entries, nil)

	svc := newSvc(nil, dl, nil, dir)
	keys, err := svc.RecentDownloads(context.Background(), userSess)
	require.NoError(t, err)
	assert.Len(t, keys, 12)
}

// --- saved resources ---

func TestSaveAndListSavedResources(t *testing.T) {
	sv := &mockSaved{}
	dir := &mockDirectory{}
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	sv.On("Put", mock.Anything, mock.MatchedBy(func(s *domain.SavedResource) bool {
		return s.UserID == "u1" && s.ResourceID == "res-1" && s.SavedAt.Equal(fixedNow)
	})).Return(nil)
	sv.On("ListByUser", mock.Anything, "u1").Return([]domain.SavedResource{
		{ResourceID: "res-1"}, {ResourceID: "res-2"},
	}, nil)

	svc := newSvc(nil, nil, sv, dir)
	require.NoError(t, svc.SaveResource(context.Background(), userSess, "res-1"))

	ids, err := svc.SavedResources(context.Background(), userSess)
	require.NoError(t, err)
	assert.Equal(t, []string{"res-1", "res-2"}, ids)
}

func TestUnsaveResource(t *testing.T) {
	sv := &mockSaved{}
	dir := &mockDirectory{}
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	sv.On("Delete", mock.Anything, "u1", "res-1").Return(nil)

	svc := newSvc(nil, nil, sv, dir)
	require.NoError(t, svc.UnsaveResource(context.Background(), userSess, "res-1"))
	sv.AssertExpectations(t)
}
