package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ident(sub string, role Role) *Identity {
	return &Identity{SubjectID: sub, Email: sub + "@clinic.test", DisplayName: sub, Role: role}
}

var allRoles = []Role{RoleCustomer, RoleAdmin, RoleAdmin2, RoleSuperAdmin} //nolint:gochecknoglobals // test fixture

func TestAuthorize_DecisionTable(t *testing.T) {
	type expect map[Role]bool

	tests := []struct {
		name   string
		kind   ResourceKind
		action Action
		want   expect
	}{
		{"customer create", KindCustomer, ActionCreate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"customer read", KindCustomer, ActionRead, expect{RoleAdmin: true, RoleAdmin2: true, RoleSuperAdmin: true}},
		{"customer update", KindCustomer, ActionUpdate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"customer delete", KindCustomer, ActionDelete, expect{RoleSuperAdmin: true}},
		{"product create", KindProduct, ActionCreate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"product update", KindProduct, ActionUpdate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"product delete", KindProduct, ActionDelete, expect{RoleSuperAdmin: true}},
		{"category create", KindCategory, ActionCreate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"service delete", KindService, ActionDelete, expect{RoleSuperAdmin: true}},
		{"invoice create", KindInvoice, ActionCreate, expect{RoleAdmin: true, RoleAdmin2: true, RoleSuperAdmin: true}},
		{"invoice update", KindInvoice, ActionUpdate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"invoice delete", KindInvoice, ActionDelete, expect{RoleSuperAdmin: true}},
		{"diagnose create", KindDiagnose, ActionCreate, expect{RoleAdmin: true, RoleAdmin2: true, RoleSuperAdmin: true}},
		{"diagnose delete", KindDiagnose, ActionDelete, expect{RoleSuperAdmin: true}},
		{"user create", KindUser, ActionCreate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"user read", KindUser, ActionRead, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"user update", KindUser, ActionUpdate, expect{RoleSuperAdmin: true}},
		{"user delete", KindUser, ActionDelete, expect{RoleSuperAdmin: true}},
		{"dog create", KindDog, ActionCreate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"dog read", KindDog, ActionRead, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"dog update", KindDog, ActionUpdate, expect{RoleAdmin: true, RoleSuperAdmin: true}},
		{"dog delete", KindDog, ActionDelete, expect{RoleSuperAdmin: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, role := range allRoles {
				// OwnerID never matches the caller here, so only role grants apply.
				got := Authorize(ident("caller", role), tt.action, Resource{Kind: tt.kind, OwnerID: "someone-else"})
				assert.Equal(t, tt.want[role], got.Allowed, "role %s", role)
				if !got.Allowed {
					assert.Equal(t, DenyInsufficientRole, got.Reason, "role %s", role)
				}
			}
		})
	}
}

func TestAuthorize_PublicReads(t *testing.T) {
	for _, kind := range []ResourceKind{KindProduct, KindCategory, KindService, KindInvoice, KindDiagnose} {
		got := Authorize(nil, ActionRead, Resource{Kind: kind})
		assert.Equal(t, Allow, got, "kind %s", kind)
	}
}

func TestAuthorize_AnonymousNonPublicIsUnauthenticated(t *testing.T) {
	kinds := []ResourceKind{KindCustomer, KindProduct, KindCategory, KindService, KindInvoice, KindDiagnose, KindUser, KindDog}
	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	for _, kind := range kinds {
		for _, action := range actions {
			r := policyTable[kind][action]
			if r.public {
				continue
			}
			got := Authorize(nil, action, Resource{Kind: kind, OwnerID: "x"})
			assert.False(t, got.Allowed)
			assert.Equal(t, DenyUnauthenticated, got.Reason, "%s %s", kind, action)
		}
	}
}

func TestAuthorize_SelfOwnership(t *testing.T) {
	cust := ident("cust-1", RoleCustomer)

	assert.True(t, Authorize(cust, ActionUpdate, Resource{Kind: KindCustomer, OwnerID: "cust-1"}).Allowed)
	assert.True(t, Authorize(cust, ActionDelete, Resource{Kind: KindCustomer, OwnerID: "cust-1"}).Allowed)
	assert.True(t, Authorize(cust, ActionRead, Resource{Kind: KindDog, OwnerID: "cust-1"}).Allowed)
	assert.True(t, Authorize(cust, ActionUpdate, Resource{Kind: KindDog, OwnerID: "cust-1"}).Allowed)

	got := Authorize(cust, ActionUpdate, Resource{Kind: KindCustomer, OwnerID: "cust-2"})
	assert.Equal(t, Decision{Reason: DenyInsufficientRole}, got)

	// dog delete has no owner override
	got = Authorize(cust, ActionDelete, Resource{Kind: KindDog, OwnerID: "cust-1"})
	assert.Equal(t, DenyInsufficientRole, got.Reason)

	staff := ident("user-9", RoleAdmin2)
	assert.True(t, Authorize(staff, ActionRead, Resource{Kind: KindUser, OwnerID: "user-9"}).Allowed)
	assert.True(t, Authorize(staff, ActionUpdate, Resource{Kind: KindUser, OwnerID: "user-9"}).Allowed)
	assert.False(t, Authorize(staff, ActionUpdate, Resource{Kind: KindUser, OwnerID: "user-10"}).Allowed)
}

func TestAuthorize_CustomerReadsOnlyItself(t *testing.T) {
	cust := ident("S", RoleCustomer)

	assert.Equal(t, Allow, Authorize(cust, ActionRead, Resource{Kind: KindCustomer, OwnerID: "S"}))
	assert.Equal(t, Decision{Reason: DenyInsufficientRole}, Authorize(cust, ActionRead, Resource{Kind: KindCustomer, OwnerID: "T"}))
	// listing has no owner, so a customer cannot enumerate accounts
	assert.False(t, Authorize(cust, ActionRead, Resource{Kind: KindCustomer}).Allowed)

	for _, role := range []Role{RoleAdmin, RoleAdmin2, RoleSuperAdmin} {
		assert.True(t, Authorize(ident("staff", role), ActionRead, Resource{Kind: KindCustomer, OwnerID: "T"}).Allowed, "role %s", role)
	}
}

func TestAuthorize_EmptyOwnerNeverMatches(t *testing.T) {
	blank := &Identity{SubjectID: "", Role: RoleCustomer}
	got := Authorize(blank, ActionUpdate, Resource{Kind: KindCustomer, OwnerID: ""})
	assert.False(t, got.Allowed)
}

func TestAuthorize_SuperAdminTargetProtected(t *testing.T) {
	for _, role := range allRoles {
		got := Authorize(ident("caller", role), ActionDelete, Resource{Kind: KindUser, OwnerID: "root", TargetRole: RoleSuperAdmin})
		assert.Equal(t, Decision{Reason: DenyForbiddenTarget}, got, "role %s", role)
	}

	// super_admin deleting itself is still forbidden
	got := Authorize(ident("root", RoleSuperAdmin), ActionDelete, Resource{Kind: KindUser, OwnerID: "root", TargetRole: RoleSuperAdmin})
	assert.Equal(t, DenyForbiddenTarget, got.Reason)

	got = Authorize(ident("root", RoleSuperAdmin), ActionDelete, Resource{Kind: KindUser, OwnerID: "u2", TargetRole: RoleAdmin})
	assert.True(t, got.Allowed)
}

func TestAuthorize_UnknownKind(t *testing.T) {
	got := Authorize(ident("a", RoleSuperAdmin), ActionRead, Resource{Kind: "spaceship"})
	assert.Equal(t, DenyInsufficientRole, got.Reason)
	got = Authorize(nil, ActionRead, Resource{Kind: "spaceship"})
	assert.Equal(t, DenyUnauthenticated, got.Reason)
}

func TestAuthorizeCMS(t *testing.T) {
	assert.Equal(t, Decision{Reason: DenyUnauthenticated}, AuthorizeCMS(nil))
	assert.Equal(t, Decision{Reason: DenyInsufficientRole}, AuthorizeCMS(ident("c", RoleCustomer)))
	for _, role := range []Role{RoleAdmin, RoleAdmin2, RoleSuperAdmin} {
		assert.Equal(t, Allow, AuthorizeCMS(ident("s", role)), "role %s", role)
	}
}

func TestAuthorize_Deterministic(t *testing.T) {
	id := ident("u", RoleAdmin)
	res := Resource{Kind: KindInvoice}
	first := Authorize(id, ActionCreate, res)
	for range 10 {
		assert.Equal(t, first, Authorize(id, ActionCreate, res))
	}
}

func TestGuardRoleChange(t *testing.T) {
	super := RoleSuperAdmin

	assert.Nil(t, GuardRoleChange(ident("a", RoleAdmin), &super))
	assert.Nil(t, GuardRoleChange(ident("c", RoleCustomer), &super))
	assert.Nil(t, GuardRoleChange(nil, &super))
	assert.Nil(t, GuardRoleChange(ident("s", RoleSuperAdmin), nil))

	admin2 := RoleAdmin2
	got := GuardRoleChange(ident("s", RoleSuperAdmin), &admin2)
	if assert.NotNil(t, got) {
		assert.Equal(t, RoleAdmin2, *got)
	}
}
