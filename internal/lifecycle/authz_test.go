package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimandi/internal/models"
)

func reqOwnedBy(buyer uint, farmer *uint) *models.ConnectionRequest {
	return &models.ConnectionRequest{ID: 7, BuyerID: buyer, FarmerID: farmer, Status: models.RequestAccepted}
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	denial := Authorize(Principal{}, OpCreate, nil)
	require.NotNil(t, denial)
	assert.Equal(t, DenyNotAuthenticated, denial.Reason)
}

func TestAuthorizeRoleGates(t *testing.T) {
	farmer := uint(2)
	req := reqOwnedBy(1, &farmer)

	cases := []struct {
		name   string
		p      Principal
		op     Operation
		want   DenialReason // empty means allowed
	}{
		{"buyer creates", Principal{ID: 1, Role: models.RoleBuyer}, OpCreate, ""},
		{"farmer cannot create", Principal{ID: 2, Role: models.RoleFarmer}, OpCreate, DenyWrongRole},
		{"admin cannot create", Principal{ID: 4, Role: models.RoleAdmin}, OpCreate, DenyWrongRole},
		{"farmer lists all", Principal{ID: 2, Role: models.RoleFarmer}, OpListAll, ""},
		{"buyer cannot list all", Principal{ID: 1, Role: models.RoleBuyer}, OpListAll, DenyWrongRole},
		{"admin lists accounts", Principal{ID: 4, Role: models.RoleAdmin}, OpListAccounts, ""},
		{"farmer cannot list accounts", Principal{ID: 2, Role: models.RoleFarmer}, OpListAccounts, DenyWrongRole},
		{"buyer cannot accept", Principal{ID: 1, Role: models.RoleBuyer}, OpAccept, DenyWrongRole},
		{"farmer accepts", Principal{ID: 2, Role: models.RoleFarmer}, OpAccept, ""},
		{"buyer cannot reassign", Principal{ID: 1, Role: models.RoleBuyer}, OpReassign, DenyWrongRole},
		{"admin reassigns", Principal{ID: 4, Role: models.RoleAdmin}, OpReassign, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			denial := Authorize(tc.p, tc.op, req)
			if tc.want == "" {
				assert.Nil(t, denial)
			} else {
				require.NotNil(t, denial)
				assert.Equal(t, tc.want, denial.Reason)
			}
		})
	}
}

func TestAuthorizeOwnership(t *testing.T) {
	farmer := uint(2)
	req := reqOwnedBy(1, &farmer)

	for _, op := range []Operation{OpConfirm, OpDeny, OpReactivate} {
		denial := Authorize(Principal{ID: 1, Role: models.RoleBuyer}, op, req)
		assert.Nil(t, denial, "owner must pass %s", op)

		denial = Authorize(Principal{ID: 9, Role: models.RoleBuyer}, op, req)
		require.NotNil(t, denial, "non-owner must fail %s", op)
		assert.Equal(t, DenyNotOwner, denial.Reason)
	}
}

func TestAuthorizeAssignment(t *testing.T) {
	farmer := uint(2)
	req := reqOwnedBy(1, &farmer)

	assert.Nil(t, Authorize(Principal{ID: 2, Role: models.RoleFarmer}, OpComplete, req))

	denial := Authorize(Principal{ID: 3, Role: models.RoleFarmer}, OpComplete, req)
	require.NotNil(t, denial)
	assert.Equal(t, DenyNotAssigned, denial.Reason)

	// Admin bypasses the assignment check.
	assert.Nil(t, Authorize(Principal{ID: 4, Role: models.RoleAdmin}, OpComplete, req))

	// No farmer on the request at all.
	unassigned := reqOwnedBy(1, nil)
	denial = Authorize(Principal{ID: 2, Role: models.RoleFarmer}, OpComplete, unassigned)
	require.NotNil(t, denial)
	assert.Equal(t, DenyNotAssigned, denial.Reason)
}

func TestAuthorizeCancelRoleSplit(t *testing.T) {
	farmer := uint(2)
	req := reqOwnedBy(1, &farmer)

	assert.Nil(t, Authorize(Principal{ID: 1, Role: models.RoleBuyer}, OpCancel, req))
	assert.Nil(t, Authorize(Principal{ID: 2, Role: models.RoleFarmer}, OpCancel, req))
	assert.Nil(t, Authorize(Principal{ID: 4, Role: models.RoleAdmin}, OpCancel, req))

	denial := Authorize(Principal{ID: 9, Role: models.RoleBuyer}, OpCancel, req)
	require.NotNil(t, denial)
	assert.Equal(t, DenyNotOwner, denial.Reason)

	denial = Authorize(Principal{ID: 3, Role: models.RoleFarmer}, OpCancel, req)
	require.NotNil(t, denial)
	assert.Equal(t, DenyNotAssigned, denial.Reason)
}
