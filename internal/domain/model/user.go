//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"

	"github.com/vetdesk/vetdesk/internal/domain/auth"
)

// DefaultStaffRole is assigned to new staff accounts when no role may be set.
const DefaultStaffRole = auth.RoleAdmin2

// User is a staff account with CMS access. A user record owns itself.
type User struct {
	Meta
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        auth.Role `json:"role"`
}

// OwnerKey implements Document.
func (u *User) OwnerKey() string { return u.ID }

// EmailKey implements EmailKeyed.
func (u *User) EmailKey() string { return u.Email }

// Identity returns the session identity for u.
func (u *User) Identity() auth.Identity {
	return auth.Identity{SubjectID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}

var errStaffRole = errors.New("role must be one of: admin, admin2, super_admin")

// CreateUserRequest represents parameters to create a staff User.
type CreateUserRequest struct {
	Email       string     `json:"email"          validate:"required,email"`
	DisplayName string     `json:"display_name"   validate:"required,max=255"`
	Role        *auth.Role `json:"role,omitempty"`
	Password    string     `json:"password"       validate:"required,min=8,max=72"`
}

// Validate normalizes and validates CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	r.Email = NormalizeEmail(r.Email)
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Role != nil && !r.Role.IsStaff() {
		return errStaffRole
	}
	return nil
}

// Build returns the document described by the request.
// A nil Role yields DefaultStaffRole.
func (r *CreateUserRequest) Build() *User {
	role := DefaultStaffRole
	if r.Role != nil {
		role = *r.Role
	}
	return &User{Email: r.Email, DisplayName: r.DisplayName, Role: role}
}

// UpdateUserRequest represents parameters to update a staff User.
type UpdateUserRequest struct {
	Email       *string    `json:"email,omitempty"        validate:"omitempty,email"`
	DisplayName *string    `json:"display_name,omitempty" validate:"omitempty,min=1,max=255"`
	Role        *auth.Role `json:"role,omitempty"`
	Password    *string    `json:"password,omitempty"     validate:"omitempty,min=8,max=72"`
}

// HasUpdates reports whether any field is set.
func (r *UpdateUserRequest) HasUpdates() bool {
	return r.Email != nil || r.DisplayName != nil || r.Role != nil || r.Password != nil
}

// Validate validates UpdateUserRequest, ensuring at least one field is set.
func (r *UpdateUserRequest) Validate() error {
	if !r.HasUpdates() {
		return ErrNoUpdates
	}
	if r.Email != nil {
		*r.Email = NormalizeEmail(*r.Email)
	}
	trimPtr(r.DisplayName)
	if err := validateStruct(r); err != nil {
		return err
	}
	if r.Role != nil && !r.Role.IsStaff() {
		return errStaffRole
	}
	return nil
}

// Apply copies the set profile fields onto u. Password is handled separately.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.DisplayName != nil {
		u.DisplayName = *r.DisplayName
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
}

// StoredRole is the raw role string persisted on a staff user, as read by the
// legacy role migration.
type StoredRole struct {
	UserID string
	Email  string
	Raw    string
}
