// Package authroles maps legacy role spellings onto the canonical lowercase roles.
package authroles

import (
	"strings"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
)

// aliases covers spellings seen in older deployments after case folding and
// separator cleanup.
//
//nolint:gochecknoglobals // static lookup table
var aliases = map[string]domainauth.Role{
	"customer":    domainauth.RoleCustomer,
	"client":      domainauth.RoleCustomer,
	"admin":       domainauth.RoleAdmin,
	"admin2":      domainauth.RoleAdmin2,
	"admin_2":     domainauth.RoleAdmin2,
	"super_admin": domainauth.RoleSuperAdmin,
	"superadmin":  domainauth.RoleSuperAdmin,
}

// Normalize maps raw to a canonical role. It reports false when raw has no known mapping;
// callers must not guess a role in that case.
func Normalize(raw string) (domainauth.Role, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	role, ok := aliases[key]
	return role, ok
}
