package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onehope/resources-api/internal/domain"
)

// TokenVerifier resolves an externally-issued bearer token to a verified
// email by calling the provider's GoTrue-compatible user endpoint
// (GET {base}/auth/v1/user). The provider sent the OTP email itself; the
// token is the proof the challenge was completed.
type TokenVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTokenVerifier builds a verifier with a bounded request timeout so a
// slow provider cannot hang a login request.
func NewTokenVerifier(baseURL, apiKey string, timeout time.Duration) *TokenVerifier {
	return &TokenVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify validates the token with the provider and extracts the email.
// A structural pre-check rejects tokens that are not well-formed JWTs or
// whose exp claim has already elapsed, without spending a provider call;
// the pre-check only ever rejects, it never trusts.
func (v *TokenVerifier) Verify(ctx context.Context, accessToken string) (domain.VerifiedIdentity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if err := precheckToken(accessToken); err != nil {
		return domain.VerifiedIdentity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return domain.VerifiedIdentity{}, fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return domain.VerifiedIdentity{}, fmt.Errorf("identity provider unreachable: %w", domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return domain.VerifiedIdentity{}, fmt.Errorf("identity provider returned %d: %w", resp.StatusCode, domain.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Email == "" {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	return domain.VerifiedIdentity{Email: domain.NormalizeEmail(body.Email)}, nil
}

// precheckToken rejects tokens that cannot possibly verify: not a JWT, or
// carrying an exp claim already in the past. Signature verification stays
// with the provider, which holds the signing key.
func precheckToken(accessToken string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return domain.ErrInvalidCredential
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return domain.ErrInvalidCredential
	}
	if exp != nil && exp.Before(time.Now()) {
		return domain.ErrInvalidCredential
	}
	return nil
}
