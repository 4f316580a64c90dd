// Package authz is the single predicate every protected operation calls.
// It is a pure function of (session, requirement): no I/O, no side effects.
package authz

import "github.com/onehope/resources-api/internal/domain"

// Require checks that a valid session is present and that its role meets the
// minimum. Returns domain.ErrUnauthenticated when sess is nil (missing,
// malformed or expired seal: the boundary passes nil for all three) and
// domain.ErrForbidden when the session's role is insufficient.
func Require(sess *domain.Session, min domain.Role) error {
	if sess == nil {
		return domain.ErrUnauthenticated
	}
	if !sess.Role.Satisfies(min) {
		return domain.ErrForbidden
	}
	return nil
}
