package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Role names carried in tokens and on user profiles.
const (
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
	RoleAdmin    = "ADMIN"
)

// Principal is the authenticated actor performing an operation.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Roles []string  `json:"roles"`
}

// NewPrincipal normalizes role names to upper case without the ROLE_ prefix.
func NewPrincipal(id uuid.UUID, email string, roles ...string) Principal {
	normalized := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		r = strings.TrimPrefix(r, "ROLE_")
		if r != "" {
			normalized = append(normalized, r)
		}
	}
	return Principal{ID: id, Email: email, Roles: normalized}
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal carries at least one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
