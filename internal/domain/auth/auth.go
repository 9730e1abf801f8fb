// Package auth contains domain-level types for authentication, sessions and authorization.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"errors"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below; all stored roles are lowercase.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleAdmin2     Role = "admin2"
	RoleSuperAdmin Role = "super_admin"
)

// SessionTTL is the fixed validity of a session token from issuance.
const SessionTTL = 24 * time.Hour

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleAdmin2, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether r may use the CMS.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleAdmin2, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ParseRole validates an exact canonical role string.
// Use authroles.Normalize to migrate legacy casing; this function does not guess.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Identity is the resolved, verified caller for one request.
// It is either fully populated or absent; there are no partial identities.
type Identity struct {
	SubjectID   string `json:"sub"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

var (
	errMissingSubject = errors.New("identity subject is required")
	errMissingEmail   = errors.New("identity email is required")
	errMissingName    = errors.New("identity display name is required")
	errInvalidRole    = errors.New("identity role is not recognized")
)

// Validate ensures every identity field is present and the role is canonical.
func (i Identity) Validate() error {
	switch {
	case strings.TrimSpace(i.SubjectID) == "":
		return errMissingSubject
	case strings.TrimSpace(i.Email) == "":
		return errMissingEmail
	case strings.TrimSpace(i.DisplayName) == "":
		return errMissingName
	case !i.Role.Valid():
		return errInvalidRole
	}
	return nil
}

// IsStaff reports whether the identity carries a CMS role.
func (i *Identity) IsStaff() bool { return i != nil && i.Role.IsStaff() }

// ProviderProfile is the profile an external identity provider returns after a code exchange.
// Adapters map provider-specific claims into this shape.
type ProviderProfile struct {
	Subject   string // stable provider identifier (sub)
	Email     string
	FirstName string
	LastName  string
}

// DisplayName joins first and last name, falling back to the email address.
func (p ProviderProfile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name == "" {
		return p.Email
	}
	return name
}
