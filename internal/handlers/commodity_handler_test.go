package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimandi/internal/broadcast"
	"agrimandi/internal/market"
	"agrimandi/internal/models"
)

func newCommodityApp(t *testing.T) (*fiber.App, *CommodityHandler) {
	t.Helper()
	h := &CommodityHandler{
		board: market.NewMemBoard(
			models.Commodity{ID: 1, Name: "Wheat", Price: 2150},
			models.Commodity{ID: 2, Name: "Rice", Price: 1800},
		),
		hub: broadcast.NewHub(),
	}
	app := fiber.New()
	app.Get("/api/commodities", h.List)
	app.Post("/api/commodities/update", h.Update)
	return app, h
}

func postUpdate(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/commodities/update", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestUpdateBroadcastsPriceDelta(t *testing.T) {
	app, h := newCommodityApp(t)
	_, events := h.hub.Subscribe(4)

	require.Equal(t, fiber.StatusOK, postUpdate(t, app, `{"id":1,"price":2200}`))

	// Exactly one push, carrying the new price and the computed delta.
	ev := <-events
	assert.Equal(t, broadcast.EventUpdate, ev.Type)
	updated, ok := ev.Data.(models.Commodity)
	require.True(t, ok)
	assert.Equal(t, 2200.0, updated.Price)
	assert.Equal(t, 50.0, updated.Change)
	assert.Len(t, events, 0)

	// A late subscriber gets nothing replayed; it catches up through the
	// snapshot the stream opens with.
	_, late := h.hub.Subscribe(4)
	assert.Len(t, late, 0)

	req := httptest.NewRequest("GET", "/api/commodities", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var snapshot struct {
		Commodities []models.Commodity `json:"commodities"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snapshot))
	require.Len(t, snapshot.Commodities, 2)
	for _, commodity := range snapshot.Commodities {
		if commodity.ID == 1 {
			assert.Equal(t, 2200.0, commodity.Price)
			assert.Equal(t, 50.0, commodity.Change)
		}
	}
}

func TestUpdateTracksDeltaAcrossUpdates(t *testing.T) {
	app, h := newCommodityApp(t)

	require.Equal(t, fiber.StatusOK, postUpdate(t, app, `{"id":2,"price":1750}`))

	commodity, err := h.board.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, -50.0, commodity.Change)

	// The next delta is measured against the updated price, not the original.
	require.Equal(t, fiber.StatusOK, postUpdate(t, app, `{"id":2,"price":1800}`))
	commodity, err = h.board.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 50.0, commodity.Change)
}

func TestUpdateRejectsBadInput(t *testing.T) {
	app, _ := newCommodityApp(t)

	assert.Equal(t, fiber.StatusNotFound, postUpdate(t, app, `{"id":99,"price":100}`))
	assert.Equal(t, fiber.StatusBadRequest, postUpdate(t, app, `{"id":1,"price":0}`))
	assert.Equal(t, fiber.StatusBadRequest, postUpdate(t, app, `{"price":100}`))
}

func TestEventFraming(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeEvent(w, broadcast.Event{Type: broadcast.EventInitial, Data: []int{1, 2}}))
	assert.Equal(t, "data: {\"type\":\"initial\",\"data\":[1,2]}\n\n", buf.String())
}
