package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimandi/internal/models"
)

func TestMemStoreFailsLoudlyOnBadWrites(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	req := &models.ConnectionRequest{BuyerID: 1, Crop: "Wheat", Quantity: 50, Status: models.RequestPending}
	require.NoError(t, store.Create(ctx, req))

	t.Run("unmapped column", func(t *testing.T) {
		assert.Panics(t, func() {
			store.ApplyTransition(ctx, req.ID, Guard{Status: models.RequestPending}, map[string]any{
				"flavor": "wheaty",
			})
		})
	})

	t.Run("mistyped value", func(t *testing.T) {
		assert.Panics(t, func() {
			store.ApplyTransition(ctx, req.ID, Guard{Status: models.RequestPending}, map[string]any{
				"status": 42,
			})
		})
	})

	t.Run("well-formed write still applies", func(t *testing.T) {
		got, err := store.ApplyTransition(ctx, req.ID, Guard{Status: models.RequestPending}, map[string]any{
			"status": models.RequestCancelled,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RequestCancelled, got.Status)
	})
}
