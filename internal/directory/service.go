// Package directory maps verified email addresses to durable user records.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/pkg/id"
)

// UserStore is the repository surface the directory needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, email string, updates map[string]interface{}) error
	List(ctx context.Context) ([]domain.User, error)
}

// Service resolves identities to user records and applies admin mutations.
type Service struct {
	store       UserStore
	adminEmails map[string]bool
	now         func() time.Time
}

func NewService(store UserStore, adminEmails []string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	allow := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		allow[domain.NormalizeEmail(e)] = true
	}
	return &Service{store: store, adminEmails: allow, now: now}
}

// Resolve returns the record for a verified email, creating one on first
// sight. First-seen role comes from the admin allow-list; existing records
// are returned as-is, with no implicit role mutation. Creation is race-safe:
// a conflicting concurrent create falls back to re-reading the winner's row.
func (s *Service) Resolve(ctx context.Context, email string) (*domain.User, error) {
	key := domain.NormalizeEmail(email)

	u, err := s.store.GetByEmail(ctx, key)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	role := domain.RoleUser
	if s.adminEmails[key] {
		role = domain.RoleAdmin
	}
	now := s.now().UTC()
	fresh := &domain.User{
		UserID:    id.New(),
		Email:     key,
		Role:      role,
		Blocked:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, fresh); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the first-login race; the other writer's record wins.
			return s.store.GetByEmail(ctx, key)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return fresh, nil
}

// List returns every directory record, for the admin screen.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.store.List(ctx)
}

// SetRole flips a record's role. Caller must hold the admin role.
func (s *Service) SetRole(ctx context.Context, email string, role domain.Role) error {
	return s.store.Update(ctx, email, map[string]interface{}{"role": string(role)})
}

// SetBlocked flips a record's blocked flag. Caller must hold the admin role.
// Blocking does not revoke already-issued sessions; it takes effect at the
// next login.
func (s *Service) SetBlocked(ctx context.Context, email string, blocked bool) error {
	return s.store.Update(ctx, email, map[string]interface{}{"blocked": blocked})
}
