package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/onehope/resources-api/internal/application/auth"
	"github.com/onehope/resources-api/internal/domain"
	"github.com/onehope/resources-api/internal/pkg/validate"
)

// AuthService is the surface the auth handler requires.
type AuthService interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*auth.LoginResult, error)
	ExchangeToken(ctx context.Context, accessToken string) (*auth.LoginResult, error)
}

// CookieConfig describes the session cookie the handler sets and clears.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// AuthHandler handles the login, logout and whoami endpoints.
type AuthHandler struct {
	svc    AuthService
	cookie CookieConfig
}

func NewAuthHandler(svc AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

// RequestCode emails a one-time sign-in code. The response is identical for
// every syntactically valid address, so it cannot be used to probe which
// emails exist.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := domain.NormalizeEmail(req.Email)
	if !validate.Email(email) {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	if err := h.svc.RequestCode(r.Context(), email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

// VerifyCode redeems a one-time code and, on success, sets the session cookie.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "email and code required")
		return
	}
	email := domain.NormalizeEmail(req.Email)
	if !validate.Email(email) {
		writeError(w, http.StatusBadRequest, "valid email required")
		return
	}
	result, err := h.svc.VerifyCode(r.Context(), email, req.Code)
	if err != nil {
		// A wrong code is a 400 here: the caller typed it, it is request
		// content, not a missing credential on a protected route.
		if errors.Is(err, domain.ErrInvalidCredential) {
			writeError(w, http.StatusBadRequest, "invalid or expired code")
			return
		}
		writeDomainError(w, err)
		return
	}
	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, LoginEnvelope{Role: string(result.Role)})
}

// ExchangeToken trades an externally-issued bearer token for a session cookie.
func (h *AuthHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token required")
		return
	}
	result, err := h.svc.ExchangeToken(r.Context(), req.AccessToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, LoginEnvelope{Role: string(result.Role)})
}

// Logout clears the session cookie. The sealed token itself simply ages out.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

// Me echoes the authenticated identity back to the client.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionOrFail(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}{Email: sess.Email, Role: string(sess.Role)})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
