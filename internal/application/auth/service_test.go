package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onehope/resources-api/internal/domain"
)

// --- mocks ---

type mockCodes struct{ mock.Mock }

func (m *mockCodes) Issue(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
func (m *mockCodes) Redeem(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}
func (m *mockCodes) Invalidate(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type mockCodeVerifier struct{ mock.Mock }

func (m *mockCodeVerifier) Verify(ctx context.Context, email, code string) (domain.VerifiedIdentity, error) {
	args := m.Called(ctx, email, code)
	return args.Get(0).(domain.VerifiedIdentity), args.Error(1)
}

type mockTokenVerifier struct{ mock.Mock }

func (m *mockTokenVerifier) Verify(ctx context.Context, accessToken string) (domain.VerifiedIdentity, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(domain.VerifiedIdentity), args.Error(1)
}

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Resolve(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Issue(email string, role domain.Role) (string, error) {
	args := m.Called(email, role)
	return args.String(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendCode(to, code string) error {
	return m.Called(to, code).Error(0)
}

// --- builder ---

func newService(codes *mockCodes, cv *mockCodeVerifier, tv TokenVerifier, dir *mockDirectory, sess *mockSessions, ml *mockMailer) *Service {
	deps := ServiceDeps{
		Directory: dir,
		Sessions:  sess,
		Mailer:    ml,
		Logger:    zerolog.Nop(),
	}
	if codes != nil {
		deps.Codes = codes
	}
	if cv != nil {
		deps.CodeVerifier = cv
	}
	deps.TokenVerifier = tv
	return NewService(deps)
}

// --- RequestCode ---

func TestRequestCode_IssuesAndSends(t *testing.T) {
	codes := &mockCodes{}
	ml := &mockMailer{}
	codes.On("Issue", mock.Anything, "a@x.com").Return("123456", nil)
	ml.On("SendCode", "a@x.com", "123456").Return(nil)

	svc := newService(codes, nil, nil, nil, nil, ml)
	require.NoError(t, svc.RequestCode(context.Background(), "a@x.com"))
	codes.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestRequestCode_MailFailureInvalidatesCode(t *testing.T) {
	codes := &mockCodes{}
	ml := &mockMailer{}
	codes.On("Issue", mock.Anything, "a@x.com").Return("123456", nil)
	ml.On("SendCode", "a@x.com", "123456").Return(domain.ErrUnavailable)
	codes.On("Invalidate", mock.Anything, "a@x.com").Return(nil)

	svc := newService(codes, nil, nil, nil, nil, ml)
	err := svc.RequestCode(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	// The undelivered code must not stay live.
	codes.AssertCalled(t, "Invalidate", mock.Anything, "a@x.com")
}

// --- VerifyCode ---

func TestVerifyCode_Success(t *testing.T) {
	cv := &mockCodeVerifier{}
	dir := &mockDirectory{}
	sess := &mockSessions{}
	cv.On("Verify", mock.Anything, "a@x.com", "123456").Return(domain.VerifiedIdentity{Email: "a@x.com"}, nil)
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com", Role: domain.RoleUser}, nil)
	sess.On("Issue", "a@x.com", domain.RoleUser).Return("sealed-token", nil)

	svc := newService(nil, cv, nil, dir, sess, nil)
	res, err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "sealed-token", res.Token)
	assert.Equal(t, domain.RoleUser, res.Role)
}

func TestVerifyCode_InvalidCode(t *testing.T) {
	cv := &mockCodeVerifier{}
	cv.On("Verify", mock.Anything, "a@x.com", "000000").Return(domain.VerifiedIdentity{}, domain.ErrInvalidCredential)

	svc := newService(nil, cv, nil, nil, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@x.com", "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestVerifyCode_BlockedUserGetsNoSession(t *testing.T) {
	cv := &mockCodeVerifier{}
	dir := &mockDirectory{}
	sess := &mockSessions{}
	cv.On("Verify", mock.Anything, "a@x.com", "123456").Return(domain.VerifiedIdentity{Email: "a@x.com"}, nil)
	dir.On("Resolve", mock.Anything, "a@x.com").Return(&domain.User{Email: "a@x.com", Role: domain.RoleUser, Blocked: true}, nil)

	svc := newService(nil, cv, nil, dir, sess, nil)
	_, err := svc.VerifyCode(context.Background(), "a@x.com", "123456")

	// Valid redemption, but a blocked record must never yield a usable session.
	assert.ErrorIs(t, err, domain.ErrAccountBlocked)
	sess.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

// --- ExchangeToken ---

func TestExchangeToken_Success(t *testing.T) {
	tv := &mockTokenVerifier{}
	dir := &mockDirectory{}
	sess := &mockSessions{}
	tv.On("Verify", mock.Anything, "ext-token").Return(domain.VerifiedIdentity{Email: "admin@x.com"}, nil)
	dir.On("Resolve", mock.Anything, "admin@x.com").Return(&domain.User{Email: "admin@x.com", Role: domain.RoleAdmin}, nil)
	sess.On("Issue", "admin@x.com", domain.RoleAdmin).Return("sealed-token", nil)

	svc := newService(nil, nil, tv, dir, sess, nil)
	res, err := svc.ExchangeToken(context.Background(), "ext-token")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)
}

func TestExchangeToken_NotConfigured(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	_, err := svc.ExchangeToken(context.Background(), "ext-token")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestExchangeToken_InvalidToken(t *testing.T) {
	tv := &mockTokenVerifier{}
	tv.On("Verify", mock.Anything, "bad").Return(domain.VerifiedIdentity{}, domain.ErrInvalidCredential)

	svc := newService(nil, nil, tv, nil, nil, nil)
	_, err := svc.ExchangeToken(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestEstablish_DirectoryDown(t *testing.T) {
	cv := &mockCodeVerifier{}
	dir := &mockDirectory{}
	cv.On("Verify", mock.Anything, "a@x.com", "123456").Return(domain.VerifiedIdentity{Email: "a@x.com"}, nil)
	dir.On("Resolve", mock.Anything, "a@x.com").Return(nil, errors.New("dynamo timeout"))

	svc := newService(nil, cv, nil, dir, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@x.com", "123456")
	assert.Error(t, err)
}
