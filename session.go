package session

import (
	"fmt"
	"time"
)

// Session is the client-side authentication snapshot: the stored credential,
// the claims derived from it, and whether a login call is in flight.
//
// Credential and Claims move together. Every transition that clears one
// clears the other in the same update, so no observer ever sees a half
// populated session.
type Session struct {
	Credential string
	Claims     *Claims
	Loading    bool
}

// Authenticated reports whether the session holds a live credential now.
func (s Session) Authenticated() bool {
	return s.AuthenticatedAt(time.Now())
}

// AuthenticatedAt is the pure form of Authenticated for callers that inject
// their own clock.
func (s Session) AuthenticatedAt(now time.Time) bool {
	return s.Credential != "" && s.Claims != nil && !s.Claims.Expired(now)
}

// Role returns the session's role, or the empty role when logged out.
func (s Session) Role() Role {
	if s.Claims == nil {
		return ""
	}
	return s.Claims.Role
}

func (s Session) String() string {
	if s.Claims == nil {
		return fmt.Sprintf("anonymous loading=%t", s.Loading)
	}
	return fmt.Sprintf("%s loading=%t", s.Claims, s.Loading)
}
