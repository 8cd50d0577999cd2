package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Claims is the normalized payload of a credential. It is always re-derived
// from the credential by DecodeClaims, never persisted on its own, so it
// cannot diverge from its source token.
//
// A nil Expiry means the server issued a non-expiring token and the client
// trusts that. This is a deliberate policy, not a missing check: the HAP
// backend has shipped tokens without an exp claim and the front end accepted
// them across several revisions.
type Claims struct {
	Subject  string
	Role     Role
	Expiry   *time.Time
	IssuedAt *time.Time
}

// SubjectUUID parses the subject as a UUID for deployments that key users
// that way. Numeric HAP user ids fail here; use Subject directly for those.
func (c *Claims) SubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Expired reports whether the claims are past their expiry at the given
// instant. Claims without an expiry never expire client side.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.Expiry == nil {
		return false
	}
	return !now.Before(*c.Expiry)
}

func (c Claims) String() string {
	exp := "<none>"
	if c.Expiry != nil {
		exp = c.Expiry.Format(time.RFC1123)
	}
	return fmt.Sprintf("sub=%s role=%s exp=%s", c.Subject, c.Role, exp)
}
