package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"agrimandi/internal/broadcast"
	"agrimandi/internal/database"
	"agrimandi/internal/market"
)

const streamBuffer = 8

type CommodityHandler struct {
	board market.Board
	hub   *broadcast.Hub
}

func NewCommodityHandler() *CommodityHandler {
	return &CommodityHandler{
		board: market.NewGormBoard(database.DB),
		hub:   broadcast.NewHub(),
	}
}

type UpdateCommodityBody struct {
	ID    uint    `json:"id" validate:"required"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// List returns the current commodity price board.
func (h *CommodityHandler) List(c *fiber.Ctx) error {
	commodities, err := h.board.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch commodities",
		})
	}
	return c.JSON(fiber.Map{"commodities": commodities})
}

// Stream pushes the price board over SSE: one initial snapshot, then a
// delta event per update. The subscription is taken before the snapshot is
// read so an update landing in between is buffered, not lost.
func (h *CommodityHandler) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	id, events := h.hub.Subscribe(streamBuffer)

	commodities, err := h.board.List(c.Context())
	if err != nil {
		h.hub.Unsubscribe(id)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch commodities",
		})
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(id)

		if err := writeEvent(w, broadcast.Event{
			Type: broadcast.EventInitial,
			Data: commodities,
		}); err != nil {
			return
		}

		for ev := range events {
			if err := writeEvent(w, ev); err != nil {
				return
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, ev broadcast.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

// Update sets a commodity's price, records the delta against the previous
// price and broadcasts the change to every SSE subscriber.
func (h *CommodityHandler) Update(c *fiber.Ctx) error {
	body := new(UpdateCommodityBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id and positive price required",
		})
	}

	commodity, err := h.board.Get(c.Context(), body.ID)
	if err != nil {
		return h.boardError(c, err)
	}

	change := body.Price - commodity.Price
	updated, err := h.board.SetPrice(c.Context(), body.ID, body.Price, change, time.Now())
	if err != nil {
		return h.boardError(c, err)
	}

	delivered := h.hub.Publish(broadcast.Event{
		Type: broadcast.EventUpdate,
		Data: *updated,
	})
	log.Printf("📈 Commodity %s updated to %.2f (%d subscribers notified)", updated.Name, updated.Price, delivered)

	return c.JSON(fiber.Map{
		"ok":      true,
		"updated": updated,
	})
}

func (h *CommodityHandler) boardError(c *fiber.Ctx, err error) error {
	if errors.Is(err, market.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Commodity not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to update commodity",
	})
}
