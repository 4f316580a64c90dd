// Package session seals the authenticated identity into a client-held token.
// The server keeps no session table: everything travels in the token, which
// is encrypted and authenticated so the client can neither read nor forge it.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/onehope/resources-api/internal/domain"
)

// hkdfInfo domain-separates the sealing key from any other use of the secret.
const hkdfInfo = "onehope-resources/session-seal/v1"

// Manager issues and reads sealed session tokens.
//
// Tokens are not revocable before their embedded expiry: logout only tells
// the client to discard the cookie, and role or blocked changes land at the
// next login. Deployments needing hard revocation must add a denylist.
type Manager struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
	ttl time.Duration
	now func() time.Time
}

// payload is the sealed wire form. Kept separate from domain.Session so the
// token layout can evolve without touching the domain type.
type payload struct {
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IssuedAt int64       `json:"iat"`
	Expiry   int64       `json:"exp"`
}

// NewManager derives a sealing key from the configured secret via
// HKDF-SHA256 and sets up an XChaCha20-Poly1305 AEAD. The secret's minimum
// length is enforced by config validation before this runs.
func NewManager(secret string, ttl time.Duration, now func() time.Time) (*Manager, error) {
	if now == nil {
		now = time.Now
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return &Manager{aead: aead, ttl: ttl, now: now}, nil
}

// TTL returns the configured session lifetime, used for the cookie Max-Age.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue seals {email, role} with the manager's TTL and returns the token.
func (m *Manager) Issue(email string, role domain.Role) (string, error) {
	now := m.now().UTC()
	p := payload{
		Email:    domain.NormalizeEmail(email),
		Role:     role,
		IssuedAt: now.Unix(),
		Expiry:   now.Add(m.ttl).Unix(),
	}
	plaintext, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := m.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Read verifies and decrypts a token. Tampering, truncation, garbage input
// and an elapsed embedded expiry all return domain.ErrUnauthenticated; the
// caller cannot tell those cases apart.
func (m *Manager) Read(token string) (*domain.Session, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) <= chacha20poly1305.NonceSizeX {
		return nil, domain.ErrUnauthenticated
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := m.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	var p payload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := domain.ParseRole(string(p.Role)); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	exp := time.Unix(p.Expiry, 0)
	if !m.now().Before(exp) {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.Session{
		Email:     p.Email,
		Role:      p.Role,
		IssuedAt:  time.Unix(p.IssuedAt, 0).UTC(),
		ExpiresAt: exp.UTC(),
	}, nil
}
