// Package auth composes the one-time-code store, the identity verifiers,
// the user directory and the session manager into the login flows.
package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/otp"
)

// CodeVerifier verifies an (email, code) pair. Local mode.
type CodeVerifier interface {
	Verify(ctx context.Context, email, code string) (domain.VerifiedIdentity, error)
}

// TokenVerifier verifies an externally-issued bearer token. Delegated mode.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (domain.VerifiedIdentity, error)
}

// Directory resolves a verified email to a durable user record.
type Directory interface {
	Resolve(ctx context.Context, email string) (*domain.User, error)
}

// SessionIssuer seals {email, role} into a client-held token.
type SessionIssuer interface {
	Issue(email string, role domain.Role) (string, error)
}

// Mailer delivers the sign-in code.
type Mailer interface {
	SendCode(to, code string) error
}

// LoginResult is what a successful verification hands back to the transport
// layer: the sealed token to set as a cookie, plus the role for the body.
type LoginResult struct {
	Token string
	Role  domain.Role
}

// Service implements the three authentication flows.
type Service struct {
	codes         otp.Store
	codeVerifier  CodeVerifier
	tokenVerifier TokenVerifier // nil when delegated mode is unconfigured
	directory     Directory
	sessions      SessionIssuer
	mailer        Mailer
	log           zerolog.Logger
}

type ServiceDeps struct {
	Codes         otp.Store
	CodeVerifier  CodeVerifier
	TokenVerifier TokenVerifier
	Directory     Directory
	Sessions      SessionIssuer
	Mailer        Mailer
	Logger        zerolog.Logger
}

func NewService(d ServiceDeps) *Service {
	return &Service{
		codes:         d.Codes,
		codeVerifier:  d.CodeVerifier,
		tokenVerifier: d.TokenVerifier,
		directory:     d.Directory,
		sessions:      d.Sessions,
		mailer:        d.Mailer,
		log:           d.Logger,
	}
}

// RequestCode issues a fresh code and emails it. Fails closed: if the email
// cannot be delivered, the code is invalidated before the error is returned,
// so no live code exists that the user never received.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	code, err := s.codes.Issue(ctx, email)
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	if err := s.mailer.SendCode(email, code); err != nil {
		if invErr := s.codes.Invalidate(ctx, email); invErr != nil {
			s.log.Error().Err(invErr).Msg("failed to invalidate undelivered code")
		}
		return err
	}
	return nil
}

// VerifyCode is the local-mode login: redeem the code, resolve the user,
// refuse blocked accounts, seal a session.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (*LoginResult, error) {
	ident, err := s.codeVerifier.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, ident)
}

// ExchangeToken is the delegated-mode login. Returns domain.ErrUnavailable
// when no provider is configured.
func (s *Service) ExchangeToken(ctx context.Context, accessToken string) (*LoginResult, error) {
	if s.tokenVerifier == nil {
		return nil, fmt.Errorf("delegated identity provider not configured: %w", domain.ErrUnavailable)
	}
	ident, err := s.tokenVerifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, ident)
}

// establish turns a verified identity into a sealed session, enforcing the
// blocked flag. The identity verified correctly either way; a blocked record
// still gets a distinct, user-facing refusal.
func (s *Service) establish(ctx context.Context, ident domain.VerifiedIdentity) (*LoginResult, error) {
	u, err := s.directory.Resolve(ctx, ident.Email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if u.Blocked {
		return nil, domain.ErrAccountBlocked
	}
	token, err := s.sessions.Issue(u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &LoginResult{Token: token, Role: u.Role}, nil
}
