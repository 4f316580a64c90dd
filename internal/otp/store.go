// Package otp issues and redeems short-lived numeric sign-in codes keyed by
// normalized email. At most one code is live per address: issuing again
// overwrites the previous one, and a successful redeem consumes the entry.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the fixed width of generated codes.
const CodeLength = 6

// Store is the one-time-code contract shared by the in-process and Redis
// backends. Redeem semantics:
//   - no entry, expired entry, or exhausted attempts → domain.ErrInvalidCredential
//   - wrong code → domain.ErrInvalidCredential, entry stays live for retry
//   - right code → nil, entry consumed; a second redeem fails
type Store interface {
	Issue(ctx context.Context, email string) (code string, err error)
	Redeem(ctx context.Context, email, code string) error
	// Invalidate removes any pending code, e.g. when the notification
	// carrying it could not be delivered.
	Invalidate(ctx context.Context, email string) error
}

// generateCode draws a code uniformly from [0, 10^CodeLength), zero-padded.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
