package auth

// Action is a CRUD verb evaluated per resource kind.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceKind names a guarded record type.
type ResourceKind string

const (
	KindCustomer ResourceKind = "customer"
	KindProduct  ResourceKind = "product"
	KindCategory ResourceKind = "category"
	KindService  ResourceKind = "service"
	KindInvoice  ResourceKind = "invoice"
	KindDiagnose ResourceKind = "diagnose"
	KindUser     ResourceKind = "user"
	KindDog      ResourceKind = "dog"
)

// Resource describes the record an action targets.
// OwnerID is the subject id that owns the record; empty when the record has no owner
// or when the action is a create/list. TargetRole is the role of the account a user
// action targets and is ignored for other kinds.
type Resource struct {
	Kind       ResourceKind
	OwnerID    string
	TargetRole Role
}

// DenyReason tags why a decision was negative.
type DenyReason string

const (
	DenyUnauthenticated  DenyReason = "unauthenticated"
	DenyInsufficientRole DenyReason = "insufficient_role"
	DenyForbiddenTarget  DenyReason = "forbidden_target"
)

// Decision is the outcome of an authorization check. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true} //nolint:gochecknoglobals // immutable value

func deny(reason DenyReason) Decision { return Decision{Reason: reason} }

type roleSet map[Role]struct{}

func roles(rs ...Role) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) has(r Role) bool {
	_, ok := s[r]
	return ok
}

// rule is one cell of the decision table.
type rule struct {
	public            bool    // no identity required
	roles             roleSet // roles allowed regardless of ownership
	owner             bool    // owner (SubjectID == OwnerID) is allowed
	protectSuperAdmin bool    // super_admin targets can never be acted on
}

// policyTable is the single source of truth for resource-level permissions.
//
//nolint:gochecknoglobals // static read-only decision table
var policyTable = map[ResourceKind]map[Action]rule{
	KindCustomer: {
		ActionCreate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		// Every staff role reads any customer; a customer reads only itself.
		ActionRead:   {roles: roles(RoleAdmin, RoleAdmin2, RoleSuperAdmin), owner: true},
		ActionUpdate: {roles: roles(RoleAdmin, RoleSuperAdmin), owner: true},
		ActionDelete: {roles: roles(RoleSuperAdmin), owner: true},
	},
	KindProduct:  catalogRules(),
	KindCategory: catalogRules(),
	KindService:  catalogRules(),
	KindInvoice:  clinicalRules(),
	KindDiagnose: clinicalRules(),
	KindUser: {
		ActionCreate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		ActionRead:   {roles: roles(RoleAdmin, RoleSuperAdmin), owner: true},
		ActionUpdate: {roles: roles(RoleSuperAdmin), owner: true},
		ActionDelete: {roles: roles(RoleSuperAdmin), protectSuperAdmin: true},
	},
	KindDog: {
		ActionCreate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		ActionRead:   {roles: roles(RoleAdmin, RoleSuperAdmin), owner: true},
		ActionUpdate: {roles: roles(RoleAdmin, RoleSuperAdmin), owner: true},
		ActionDelete: {roles: roles(RoleSuperAdmin)},
	},
}

func catalogRules() map[Action]rule {
	return map[Action]rule{
		ActionCreate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		ActionRead:   {public: true},
		ActionUpdate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		ActionDelete: {roles: roles(RoleSuperAdmin)},
	}
}

func clinicalRules() map[Action]rule {
	return map[Action]rule{
		ActionCreate: {roles: roles(RoleAdmin, RoleAdmin2, RoleSuperAdmin)},
		ActionRead:   {public: true},
		ActionUpdate: {roles: roles(RoleAdmin, RoleSuperAdmin)},
		ActionDelete: {roles: roles(RoleSuperAdmin)},
	}
}

// Authorize decides whether the caller may perform action on res.
// A nil identity is an anonymous caller. The function is pure.
func Authorize(id *Identity, action Action, res Resource) Decision {
	r, ok := policyTable[res.Kind][action]
	if !ok {
		if id == nil {
			return deny(DenyUnauthenticated)
		}
		return deny(DenyInsufficientRole)
	}
	if r.public {
		return Allow
	}
	if id == nil {
		return deny(DenyUnauthenticated)
	}
	if r.protectSuperAdmin && res.TargetRole == RoleSuperAdmin {
		return deny(DenyForbiddenTarget)
	}
	if r.roles.has(id.Role) {
		return Allow
	}
	if r.owner && res.OwnerID != "" && id.SubjectID == res.OwnerID {
		return Allow
	}
	return deny(DenyInsufficientRole)
}

// AuthorizeCMS is the coarse gate in front of every staff-only surface.
// Customers are always denied, whatever the per-resource table says.
func AuthorizeCMS(id *Identity) Decision {
	if id == nil {
		return deny(DenyUnauthenticated)
	}
	if !id.Role.IsStaff() {
		return deny(DenyInsufficientRole)
	}
	return Allow
}

// GuardRoleChange returns the role change that may reach storage.
// Only super_admin may set an account's role; for anyone else the requested
// value is dropped (nil) and the rest of the write proceeds.
func GuardRoleChange(id *Identity, requested *Role) *Role {
	if requested == nil {
		return nil
	}
	if id == nil || id.Role != RoleSuperAdmin {
		return nil
	}
	return requested
}
