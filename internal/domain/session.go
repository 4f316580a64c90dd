package domain

import "time"

// Session is the authenticated identity carried in the sealed cookie token.
// It is produced once per request at the transport boundary and passed to
// every protected operation explicitly; nothing re-derives it ad hoc.
//
// The embedded role is trusted for the lifetime of the seal. Role or blocked
// changes made after issuance take effect at the next login or at expiry.
type Session struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// VerifiedIdentity is the sole trusted output of an identity verifier.
// Transient: passed forward once per authentication attempt, never stored.
type VerifiedIdentity struct {
	Email string
}
