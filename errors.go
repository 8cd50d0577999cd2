package session

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrTokenMalformed is returned when a credential cannot be decoded into
// claims. Callers treat it as "no session", never as a user facing error.
var ErrTokenMalformed = errors.New("credential is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when decoded claims carry an expiry in the past.
var ErrTokenExpired = errors.New("credential is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrLoginRejected is the login failure surfaced to callers, wrapping the
// authentication endpoint's rejection.
var ErrLoginRejected = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("LOGIN_REJECTED").
	WithCode(errors.CodeUnauthorized)

// ErrLoginSuperseded is returned when a login resolves after a logout or a
// newer login already advanced the session; its result is discarded.
var ErrLoginSuperseded = errors.New("login superseded by a newer session change", errors.CategoryConflict).
	WithTextCode("LOGIN_SUPERSEDED").
	WithCode(errors.CodeConflict)

// ErrNotAuthenticated signals a navigation attempt without a valid session.
var ErrNotAuthenticated = errors.New("not authenticated", errors.CategoryAuth).
	WithTextCode("NOT_AUTHENTICATED").
	WithCode(errors.CodeUnauthorized)

// ErrRoleNotAllowed signals an authenticated user whose role fails the
// destination's allow-list. This is a denial, not a redirect.
var ErrRoleNotAllowed = errors.New("role not allowed for this destination", errors.CategoryAuthz).
	WithTextCode("ROLE_NOT_ALLOWED").
	WithCode(errors.CodeForbidden)

// ErrStoreUnavailable wraps token store failures.
var ErrStoreUnavailable = errors.New("token store unavailable", errors.CategoryInternal).
	WithTextCode("STORE_UNAVAILABLE").
	WithCode(errors.CodeInternal)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
