// Package storage is the capability-URL side of the portal: it turns an
// authorized request plus an object key into a short-lived, method-scoped
// presigned URL, and keeps the identity-consuming bookkeeping (download log,
// saved resources) around it.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/onehope/resources-api/internal/authz"
	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/pkg/id"
)

// Presigner is the object-store surface. A nil Presigner dependency means
// storage is unconfigured; every mint returns domain.ErrUnavailable.
type Presigner interface {
	UploadURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	PreviewURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// DownloadLog records presigned downloads per user.
type DownloadLog interface {
	Put(ctx context.Context, e *domain.DownloadEntry) error
	ListRecent(ctx context.Context, userID string, limit int32) ([]domain.DownloadEntry, error)
}

// SavedResources stores a user's pinned resources.
type SavedResources interface {
	Put(ctx context.Context, s *domain.SavedResource) error
	Delete(ctx context.Context, userID, resourceID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.SavedResource, error)
}

// Directory resolves the session email to the durable record, needed for
// the user_id the log and saved tables key on.
type Directory interface {
	Resolve(ctx context.Context, email string) (*domain.User, error)
}

const (
	uploadTTL   = time.Hour
	downloadTTL = 10 * time.Minute
	previewTTL  = 10 * time.Minute

	recentDownloadLimit = 12
	recentScanWindow    = 50
)

// unsafeKeyChars is the inverse of the filename allow-list. Everything
// outside [A-Za-z0-9._-] becomes an underscore before the name reaches a
// storage path, the one place caller input touches object keys.
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type Service struct {
	presigner Presigner
	log       DownloadLog
	saved     SavedResources
	directory Directory
	now       func() time.Time
	logger    zerolog.Logger
}

type ServiceDeps struct {
	Presigner Presigner
	Log       DownloadLog
	Saved     SavedResources
	Directory Directory
	Now       func() time.Time
	Logger    zerolog.Logger
}

func NewService(d ServiceDeps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		presigner: d.Presigner,
		log:       d.Log,
		saved:     d.Saved,
		directory: d.Directory,
		now:       d.Now,
		logger:    d.Logger,
	}
}

// UploadRequest carries the caller-chosen pieces of an upload key.
type UploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
	Folder      string `json:"folder"`
}

// PresignedUpload is the minted capability plus the key the client must
// reference when registering the uploaded resource.
type PresignedUpload struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignUpload mints a PUT capability. Admin only.
func (s *Service) PresignUpload(ctx context.Context, sess *domain.Session, req UploadRequest) (*PresignedUpload, error) {
	if err := authz.Require(sess, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if s.presigner == nil {
		return nil, fmt.Errorf("storage not configured: %w", domain.ErrUnavailable)
	}
	key := s.buildUploadKey(req.Folder, req.Filename)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := s.presigner.UploadURL(ctx, key, contentType, uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("mint upload url: %w", domain.ErrUnavailable)
	}
	return &PresignedUpload{URL: url, Key: key}, nil
}

// PresignDownload mints a GET-attachment capability for any authenticated
// user and appends a download-log entry. Logging is best-effort: its failure
// is recorded but never blocks the download.
func (s *Service) PresignDownload(ctx context.Context, sess *domain.Session, key, filename string) (string, error) {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return "", err
	}
	if s.presigner == nil {
		return "", fmt.Errorf("storage not configured: %w", domain.ErrUnavailable)
	}
	url, err := s.presigner.DownloadURL(ctx, key, filename, downloadTTL)
	if err != nil {
		return "", fmt.Errorf("mint download url: %w", domain.ErrUnavailable)
	}
	s.recordDownload(ctx, sess.Email, key)
	return url, nil
}

// PresignPreview mints a GET-inline capability for any authenticated user.
// Previews are not logged.
func (s *Service) PresignPreview(ctx context.Context, sess *domain.Session, key string) (string, error) {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return "", err
	}
	if s.presigner == nil {
		return "", fmt.Errorf("storage not configured: %w", domain.ErrUnavailable)
	}
	url, err := s.presigner.PreviewURL(ctx, key, previewTTL)
	if err != nil {
		return "", fmt.Errorf("mint preview url: %w", domain.ErrUnavailable)
	}
	return url, nil
}

// RecentDownloads returns the user's most recent distinct resource keys,
// newest first, capped at recentDownloadLimit.
func (s *Service) RecentDownloads(ctx context.Context, sess *domain.Session) ([]string, error) {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return nil, err
	}
	u, err := s.directory.Resolve(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	entries, err := s.log.ListRecent(ctx, u.UserID, recentScanWindow)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	keys := make([]string, 0, recentDownloadLimit)
	for _, e := range entries {
		if e.ResourceKey == "" || seen[e.ResourceKey] {
			continue
		}
		seen[e.ResourceKey] = true
		keys = append(keys, e.ResourceKey)
		if len(keys) == recentDownloadLimit {
			break
		}
	}
	return keys, nil
}

// SaveResource pins a resource to the user's list.
func (s *Service) SaveResource(ctx context.Context, sess *domain.Session, resourceID string) error {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return err
	}
	u, err := s.directory.Resolve(ctx, sess.Email)
	if err != nil {
		return err
	}
	return s.saved.Put(ctx, &domain.SavedResource{
		UserID:     u.UserID,
		ResourceID: resourceID,
		SavedAt:    s.now().UTC(),
	})
}

// UnsaveResource removes a pinned resource.
func (s *Service) UnsaveResource(ctx context.Context, sess *domain.Session, resourceID string) error {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return err
	}
	u, err := s.directory.Resolve(ctx, sess.Email)
	if err != nil {
		return err
	}
	return s.saved.Delete(ctx, u.UserID, resourceID)
}

// SavedResources lists the user's pinned resource ids.
func (s *Service) SavedResources(ctx context.Context, sess *domain.Session) ([]string, error) {
	if err := authz.Require(sess, domain.RoleUser); err != nil {
		return nil, err
	}
	u, err := s.directory.Resolve(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	saved, err := s.saved.ListByUser(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(saved))
	for _, sr := range saved {
		ids = append(ids, sr.ResourceID)
	}
	return ids, nil
}

// buildUploadKey namespaces the sanitized filename under the logical folder
// plus a millisecond timestamp so repeated uploads never collide.
func (s *Service) buildUploadKey(folder, filename string) string {
	safeFolder := unsafeKeyChars.ReplaceAllString(folder, "_")
	if safeFolder == "" {
		safeFolder = "uploads"
	}
	safeName := unsafeKeyChars.ReplaceAllString(filename, "_")
	return fmt.Sprintf("collections/%s/%d-%s", safeFolder, s.now().UnixMilli(), safeName)
}

func (s *Service) recordDownload(ctx context.Context, email, key string) {
	u, err := s.directory.Resolve(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Msg("download log: resolve user failed")
		return
	}
	err = s.log.Put(ctx, &domain.DownloadEntry{
		UserID:       u.UserID,
		EntryID:      id.New(),
		ResourceKey:  key,
		DownloadedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("download log: append failed")
	}
}
