package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimandi/internal/models"
)

type mapLookup struct {
	profiles map[uint]*Profile
	calls    int
}

func (m *mapLookup) Lookup(_ context.Context, id uint) (*Profile, error) {
	m.calls++
	return m.profiles[id], nil
}

func TestManyJoinsProfiles(t *testing.T) {
	farmer := uint(2)
	lookup := &mapLookup{profiles: map[uint]*Profile{
		1: {ID: 1, Name: "Asha", Contact: "asha@example.com"},
		2: {ID: 2, Name: "Bharat"},
	}}

	reqs := []models.ConnectionRequest{
		{ID: 10, BuyerID: 1, FarmerID: &farmer, Crop: "Wheat", Status: models.RequestAccepted},
		{ID: 11, BuyerID: 1, Crop: "Rice", Status: models.RequestPending},
	}

	out, err := Many(context.Background(), lookup, reqs)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].Buyer)
	assert.Equal(t, "Asha", out[0].Buyer.Name)
	require.NotNil(t, out[0].Farmer)
	assert.Equal(t, "Bharat", out[0].Farmer.Name)

	assert.NotNil(t, out[1].Buyer)
	assert.Nil(t, out[1].Farmer, "unassigned request carries no farmer profile")

	// The repeated buyer resolves once; two accounts, two lookups.
	assert.Equal(t, 2, lookup.calls)
}

func TestDanglingReferenceOmitted(t *testing.T) {
	gone := uint(99)
	lookup := &mapLookup{profiles: map[uint]*Profile{
		1: {ID: 1, Name: "Asha"},
	}}

	out, err := One(context.Background(), lookup, models.ConnectionRequest{
		ID: 10, BuyerID: 1, FarmerID: &gone, Status: models.RequestAccepted,
	})
	require.NoError(t, err)
	assert.NotNil(t, out.Buyer)
	assert.Nil(t, out.Farmer, "a deleted farmer account is omitted, not an error")
}
