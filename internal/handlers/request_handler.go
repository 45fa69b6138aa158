package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"agrimandi/internal/database"
	"agrimandi/internal/enrich"
	"agrimandi/internal/lifecycle"
	"agrimandi/internal/models"
	"agrimandi/internal/services"
)

type RequestHandler struct {
	engine *lifecycle.Engine
	store  lifecycle.Store
	lookup enrich.AccountLookup
	notify *services.NotificationService
}

func NewRequestHandler() *RequestHandler {
	store := lifecycle.NewGormStore(database.DB)
	return &RequestHandler{
		engine: lifecycle.NewEngine(store, lifecycle.NewGormDirectory(database.DB)),
		store:  store,
		lookup: enrich.NewGormLookup(database.DB),
		notify: services.NewNotificationService(database.DB),
	}
}

type CreateRequestBody struct {
	Crop     string   `json:"crop" validate:"required"`
	Quantity int      `json:"quantity" validate:"required,gt=0"`
	Price    *float64 `json:"price"`
	Contact  string   `json:"contact"`
}

type UpdateRequestBody struct {
	Action string `json:"action" validate:"required"`
}

type DenyRequestBody struct {
	Reason string `json:"reason"`
}

type ReassignRequestBody struct {
	FarmerID uint `json:"farmer_id" validate:"required"`
}

func principal(c *fiber.Ctx) lifecycle.Principal {
	id, _ := c.Locals("user_id").(uint)
	role, _ := c.Locals("role").(string)
	return lifecycle.Principal{ID: id, Role: models.Role(role)}
}

// CreateRequest opens a new pending connection request for the buyer.
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	body := new(CreateRequestBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "crop and quantity required",
		})
	}

	req, err := h.engine.Create(c.Context(), principal(c), lifecycle.CreateInput{
		Crop:     body.Crop,
		Quantity: body.Quantity,
		Price:    body.Price,
		Contact:  body.Contact,
	})
	if err != nil {
		return h.lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{
		"ok": true,
		"id": req.ID,
	})
}

// MyRequests lists the buyer's own requests with assigned farmer info.
func (h *RequestHandler) MyRequests(c *fiber.Ctx) error {
	p := principal(c)

	reqs, err := h.store.ListByBuyer(c.Context(), p.ID)
	if err != nil {
		return h.lifecycleError(c, err)
	}

	enriched, err := enrich.Many(c.Context(), h.lookup, reqs)
	if err != nil {
		return h.lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{"requests": enriched})
}

// ListRequests lists all requests with buyer and farmer info, optionally
// filtered by status and crop. Farmer/admin only (route-gated).
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	reqs, err := h.store.List(c.Context(), lifecycle.Filter{
		Status: models.RequestStatus(c.Query("status")),
		Crop:   c.Query("crop"),
	})
	if err != nil {
		return h.lifecycleError(c, err)
	}

	enriched, err := enrich.Many(c.Context(), h.lookup, reqs)
	if err != nil {
		return h.lifecycleError(c, err)
	}

	return c.JSON(fiber.Map{"requests": enriched})
}

// UpdateRequest applies a farmer/admin action (accept / complete / cancel).
func (h *RequestHandler) UpdateRequest(c *fiber.Ctx) error {
	body := new(UpdateRequestBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.Action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "action required",
		})
	}

	action := lifecycle.Action(body.Action)
	switch action {
	case lifecycle.ActionAccept, lifecycle.ActionComplete, lifecycle.ActionCancel:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown action",
		})
	}

	return h.applyAndRespond(c, action, lifecycle.Input{})
}

// BuyerCancel cancels the buyer's own request. Pending requests only.
func (h *RequestHandler) BuyerCancel(c *fiber.Ctx) error {
	return h.applyAndRespond(c, lifecycle.ActionCancel, lifecycle.Input{})
}

// Confirm closes the loop: the buyer accepts the delivered work.
func (h *RequestHandler) Confirm(c *fiber.Ctx) error {
	return h.applyAndRespond(c, lifecycle.ActionConfirm, lifecycle.Input{})
}

// Deny disputes a delivery the farmer marked complete.
func (h *RequestHandler) Deny(c *fiber.Ctx) error {
	body := new(DenyRequestBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	return h.applyAndRespond(c, lifecycle.ActionDeny, lifecycle.Input{Reason: body.Reason})
}

// Reactivate returns a cancelled request to the open pool.
func (h *RequestHandler) Reactivate(c *fiber.Ctx) error {
	return h.applyAndRespond(c, lifecycle.ActionReactivate, lifecycle.Input{})
}

// Reassign puts a specific farmer on the request. Admin only (route-gated);
// also the escape hatch for resolving a dispute.
func (h *RequestHandler) Reassign(c *fiber.Ctx) error {
	body := new(ReassignRequestBody)
	if err := c.BodyParser(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "farmer_id required",
		})
	}
	return h.applyAndRespond(c, lifecycle.ActionReassign, lifecycle.Input{FarmerID: body.FarmerID})
}

func (h *RequestHandler) applyAndRespond(c *fiber.Ctx, action lifecycle.Action, in lifecycle.Input) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request id",
		})
	}

	p := principal(c)
	updated, err := h.engine.Apply(c.Context(), p, action, uint(id), in)
	if err != nil {
		return h.lifecycleError(c, err)
	}

	enriched, err := enrich.One(c.Context(), h.lookup, *updated)
	if err != nil {
		return h.lifecycleError(c, err)
	}

	h.notifyTransition(p, action, in, enriched)

	return c.JSON(fiber.Map{
		"ok":      true,
		"request": enriched,
	})
}

// notifyTransition creates the counterparty's in-app notification. Failures
// are logged and never surfaced: a broken notification path must not fail a
// transition that already committed.
func (h *RequestHandler) notifyTransition(p lifecycle.Principal, action lifecycle.Action, in lifecycle.Input, req enrich.Request) {
	var err error
	farmerName := "a farmer"
	if req.Farmer != nil {
		farmerName = req.Farmer.Name
	}
	buyerName := "the buyer"
	if req.Buyer != nil {
		buyerName = req.Buyer.Name
	}

	switch action {
	case lifecycle.ActionAccept:
		err = h.notify.NotifyRequestAccepted(req.BuyerID, farmerName, req.Crop, req.ID)
	case lifecycle.ActionComplete:
		err = h.notify.NotifyRequestCompleted(req.BuyerID, farmerName, req.Crop, req.ID)
	case lifecycle.ActionConfirm:
		if req.FarmerID != nil {
			err = h.notify.NotifyRequestConfirmed(*req.FarmerID, buyerName, req.Crop, req.ID)
		}
	case lifecycle.ActionDeny:
		if req.FarmerID != nil {
			err = h.notify.NotifyRequestDisputed(*req.FarmerID, buyerName, in.Reason, req.ID)
		}
	case lifecycle.ActionCancel:
		if p.Role == models.RoleBuyer {
			if req.FarmerID != nil {
				err = h.notify.NotifyRequestCancelled(*req.FarmerID, string(p.Role), req.Crop, req.ID)
			}
		} else {
			err = h.notify.NotifyRequestCancelled(req.BuyerID, string(p.Role), req.Crop, req.ID)
		}
	case lifecycle.ActionReassign:
		if req.FarmerID != nil {
			err = h.notify.NotifyRequestReassigned(*req.FarmerID, req.Crop, req.ID)
		}
	}

	if err != nil {
		log.Printf("Failed to create notification for request %d: %v", req.ID, err)
	}
}

// lifecycleError maps the engine's error taxonomy onto HTTP statuses.
func (h *RequestHandler) lifecycleError(c *fiber.Ctx, err error) error {
	var denial *lifecycle.Denial
	var invalid *lifecycle.ValidationError

	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Request not found",
		})
	case errors.Is(err, lifecycle.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Request is no longer available",
		})
	case errors.As(err, &denial):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":  denial.Msg,
			"reason": denial.Reason,
		})
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": invalid.Msg,
		})
	default:
		log.Printf("request handler error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
}
