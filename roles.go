package session

// Role is the role string carried inside a credential. The server owns the
// vocabulary; this is an open enum so a new server side role degrades to
// "authenticated, no special access" instead of breaking the guard.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleStaff        Role = "staff"
	RoleReceptionist Role = "receptionist"
)

// Known reports whether the role is part of the compiled-in vocabulary.
// Nothing gates on this; unknown roles still authenticate.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff, RoleReceptionist:
		return true
	default:
		return false
	}
}

// KnownRoles returns the compiled-in vocabulary.
func KnownRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleDoctor,
		RoleStaff,
		RoleReceptionist,
	}
}

// ParseRole converts a raw role string, reporting whether it is known.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.Known()
}

// RoleSet is a per-destination allow-list. An empty set means any
// authenticated role is admitted.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Empty() bool {
	return len(s) == 0
}

func (s RoleSet) Contains(role Role) bool {
	_, ok := s[role]
	return ok
}

// Allows applies the allow-list policy: empty admits every role.
func (s RoleSet) Allows(role Role) bool {
	if s.Empty() {
		return true
	}
	return s.Contains(role)
}
