// Package identity turns credentials into verified email addresses.
//
// Two adapter shapes exist, selected by deployment: the local verifier
// consumes the one-time-code store directly, and the delegated verifier asks
// an external provider who a bearer token belongs to. Both fail closed.
package identity

import (
	"context"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/otp"
)

// CodeVerifier verifies an (email, code) pair against the local store.
type CodeVerifier struct {
	store otp.Store
}

func NewCodeVerifier(store otp.Store) *CodeVerifier {
	return &CodeVerifier{store: store}
}

// Verify redeems the code; redeem success is the verification. The returned
// identity carries the normalized address the code was issued for.
func (v *CodeVerifier) Verify(ctx context.Context, email, code string) (domain.VerifiedIdentity, error) {
	if err := v.store.Redeem(ctx, email, code); err != nil {
		return domain.VerifiedIdentity{}, err
	}
	return domain.VerifiedIdentity{Email: domain.NormalizeEmail(email)}, nil
}
