package lifecycle

import (
	"agrimandi/internal/models"
)

// Principal is the authenticated caller: account id plus role, as decoded
// from a verified bearer token. Verification status is enforced upstream at
// login; an unverified account never receives a token.
type Principal struct {
	ID   uint
	Role models.Role
}

// Operation names an action checked by the guard.
type Operation string

const (
	OpListAccounts Operation = "list_accounts"
	OpCreate       Operation = "create_request"
	OpListAll      Operation = "list_requests"
	OpAccept       Operation = "accept"
	OpComplete     Operation = "complete"
	OpConfirm      Operation = "confirm"
	OpDeny         Operation = "deny"
	OpCancel       Operation = "cancel"
	OpReactivate   Operation = "reactivate"
	OpReassign     Operation = "reassign"
)

// rule is one row of the capability table: which roles may attempt the
// operation, and whether it additionally requires owning or being assigned
// to the target request. Admin bypasses owner/assigned checks but not role
// sets that exclude it.
type rule struct {
	roles    []models.Role // empty means any authenticated role
	owner    bool          // principal must be the request's buyer
	assigned bool          // principal must be the request's assigned farmer (admin bypasses)
}

var capabilities = map[Operation]rule{
	OpListAccounts: {roles: []models.Role{models.RoleAdmin}},
	OpCreate:       {roles: []models.Role{models.RoleBuyer}},
	OpListAll:      {roles: []models.Role{models.RoleFarmer, models.RoleAdmin}},
	OpAccept:       {roles: []models.Role{models.RoleFarmer, models.RoleAdmin}},
	OpComplete:     {roles: []models.Role{models.RoleFarmer, models.RoleAdmin}, assigned: true},
	OpConfirm:      {roles: []models.Role{models.RoleBuyer}, owner: true},
	OpDeny:         {roles: []models.Role{models.RoleBuyer}, owner: true},
	OpReactivate:   {roles: []models.Role{models.RoleBuyer}, owner: true},
	OpReassign:     {roles: []models.Role{models.RoleAdmin}},
	// OpCancel is role-split and handled below: buyer cancels own request,
	// farmer cancels assigned request, admin cancels any.
	OpCancel: {},
}

// Authorize allows or denies an operation for a principal. req may be nil
// for operations that do not target an existing request.
func Authorize(p Principal, op Operation, req *models.ConnectionRequest) *Denial {
	if p.ID == 0 {
		return deny(DenyNotAuthenticated, "not authenticated")
	}

	r, ok := capabilities[op]
	if !ok {
		return deny(DenyWrongRole, "unknown operation")
	}

	if op == OpCancel {
		return authorizeCancel(p, req)
	}

	if len(r.roles) > 0 && !roleIn(p.Role, r.roles) {
		return deny(DenyWrongRole, "role %s may not %s", p.Role, op)
	}
	if r.owner && (req == nil || req.BuyerID != p.ID) {
		return deny(DenyNotOwner, "not your request")
	}
	if r.assigned && p.Role != models.RoleAdmin {
		if req == nil || req.FarmerID == nil || *req.FarmerID != p.ID {
			return deny(DenyNotAssigned, "you are not the assigned farmer for this request")
		}
	}
	return nil
}

func authorizeCancel(p Principal, req *models.ConnectionRequest) *Denial {
	switch p.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleFarmer:
		if req == nil || req.FarmerID == nil || *req.FarmerID != p.ID {
			return deny(DenyNotAssigned, "you are not the assigned farmer to cancel this request")
		}
		return nil
	case models.RoleBuyer:
		if req == nil || req.BuyerID != p.ID {
			return deny(DenyNotOwner, "not your request")
		}
		return nil
	}
	return deny(DenyWrongRole, "role %s may not cancel", p.Role)
}

func roleIn(role models.Role, roles []models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
