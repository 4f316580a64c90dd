package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/onehope/resources-api/internal/domain"
)

type entry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// MemoryStore is the single-instance backend: a mutex-guarded map with lazy
// expiry plus a periodic sweep. The clock is injected so tests control time.
// Deployments running more than one process must use the Redis backend
// instead; this map is never shared.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string]*entry
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemoryStore creates a store with the given code TTL and redeem-attempt
// cap. now may be nil, in which time.Now is used.
func NewMemoryStore(ttl time.Duration, maxAttempts int, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	s := &MemoryStore{
		entries:     make(map[string]*entry),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         now,
		stop:        make(chan struct{}),
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Issue(_ context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	key := domain.NormalizeEmail(email)
	s.mu.Lock()
	// Overwrite semantics: any prior code for this address is retired here,
	// attempts included.
	s.entries[key] = &entry{code: code, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return code, nil
}

func (s *MemoryStore) Redeem(_ context.Context, email, code string) error {
	key := domain.NormalizeEmail(email)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return domain.ErrInvalidCredential
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return domain.ErrInvalidCredential
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) != 1 {
		e.attempts++
		if e.attempts >= s.maxAttempts {
			// Guess budget exhausted: force a reissue.
			delete(s.entries, key)
		}
		return domain.ErrInvalidCredential
	}
	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.entries, domain.NormalizeEmail(email))
	s.mu.Unlock()
	return nil
}

// Close stops the background sweep.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// sweep removes expired entries every minute. Housekeeping only; Redeem
// already expires lazily.
func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for k, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
