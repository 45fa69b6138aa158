package lifecycle

import (
	"context"
	"time"

	"agrimandi/internal/models"
)

// Action is a lifecycle transition requested by a caller.
type Action string

const (
	ActionAccept     Action = "accept"
	ActionComplete   Action = "complete"
	ActionConfirm    Action = "confirm"
	ActionDeny       Action = "deny"
	ActionCancel     Action = "cancel"
	ActionReactivate Action = "reactivate"
	ActionReassign   Action = "reassign"
)

// Input carries the transition-specific payload.
type Input struct {
	Reason   string // deny: free-text dispute reason
	FarmerID uint   // reassign: target farmer account
}

// CreateInput is the buyer-supplied payload for a new request.
type CreateInput struct {
	Crop     string
	Quantity int
	Price    *float64
	Contact  string
}

// transition is one row of the state machine: the operation the guard checks,
// the statuses the transition may fire from (nil means the build step decides),
// and the build step producing the conditional write.
type transition struct {
	op    Operation
	from  []models.RequestStatus
	build func(ctx context.Context, e *Engine, p Principal, req *models.ConnectionRequest, in Input, now time.Time) (Guard, map[string]any, error)
}

var transitions = map[Action]transition{
	ActionAccept:   {op: OpAccept, build: buildAccept},
	ActionComplete: {op: OpComplete, from: []models.RequestStatus{models.RequestAccepted}, build: buildComplete},
	ActionConfirm: {op: OpConfirm,
		from:  []models.RequestStatus{models.RequestAwaitingConfirmation, models.RequestDisputed},
		build: buildConfirm},
	ActionDeny: {op: OpDeny,
		from:  []models.RequestStatus{models.RequestAwaitingConfirmation},
		build: buildDeny},
	ActionCancel:     {op: OpCancel, build: buildCancel},
	ActionReactivate: {op: OpReactivate, from: []models.RequestStatus{models.RequestCancelled}, build: buildReactivate},
	ActionReassign:   {op: OpReassign, build: buildReassign},
}

// Engine validates and applies lifecycle transitions against the store. Each
// operation is a single read-decide-write round trip; the write is conditional
// on the state the read observed, so concurrent transitions on the same
// request serialize through the store and losers receive ErrConflict.
type Engine struct {
	store    Store
	accounts AccountDirectory
	now      func() time.Time
}

func NewEngine(store Store, accounts AccountDirectory) *Engine {
	return &Engine{
		store:    store,
		accounts: accounts,
		now:      time.Now,
	}
}

// Create registers a new buyer request in the pending state.
func (e *Engine) Create(ctx context.Context, p Principal, in CreateInput) (*models.ConnectionRequest, error) {
	if denial := Authorize(p, OpCreate, nil); denial != nil {
		return nil, denial
	}
	if in.Crop == "" || in.Quantity <= 0 {
		return nil, validationf("crop and quantity required")
	}

	req := &models.ConnectionRequest{
		BuyerID:   p.ID,
		Crop:      in.Crop,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Contact:   in.Contact,
		Status:    models.RequestPending,
		CreatedAt: e.now(),
	}
	if err := e.store.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Apply runs one transition: load, authorize, check the precondition, then
// issue the guarded write. State is never left partially applied; a failed
// write leaves the prior state standing.
func (e *Engine) Apply(ctx context.Context, p Principal, action Action, id uint, in Input) (*models.ConnectionRequest, error) {
	t, ok := transitions[action]
	if !ok {
		return nil, validationf("unknown action: %s", action)
	}

	req, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if denial := Authorize(p, t.op, req); denial != nil {
		return nil, denial
	}

	if len(t.from) > 0 && !statusIn(req.Status, t.from) {
		return nil, validationf("cannot %s request with status: %s", action, req.Status)
	}

	guard, set, err := t.build(ctx, e, p, req, in, e.now())
	if err != nil {
		return nil, err
	}

	return e.store.ApplyTransition(ctx, id, guard, set)
}

// buildAccept implements first-writer-wins assignment. A farmer's write is
// guarded on the request still being unassigned; an admin re-accepting an
// already-accepted request keeps the existing assignment.
func buildAccept(_ context.Context, _ *Engine, p Principal, req *models.ConnectionRequest, _ Input, now time.Time) (Guard, map[string]any, error) {
	switch {
	case req.Status == models.RequestPending:
		g := Guard{Status: models.RequestPending}
		if p.Role != models.RoleAdmin {
			g.FarmerAbsent = true
		}
		return g, map[string]any{
			"status":       models.RequestAccepted,
			"farmer_id":    p.ID,
			"accepted_at":  now,
			"cancelled_at": nil,
			"cancelled_by": nil,
		}, nil

	case req.Status == models.RequestAccepted && p.Role == models.RoleAdmin:
		return Guard{Status: models.RequestAccepted}, map[string]any{
			"status":       models.RequestAccepted,
			"accepted_at":  now,
			"cancelled_at": nil,
			"cancelled_by": nil,
		}, nil

	case p.Role == models.RoleAdmin:
		return Guard{}, nil, validationf("cannot accept request with status: %s", req.Status)

	default:
		// Another farmer already took it, or it has moved on.
		return Guard{}, nil, ErrConflict
	}
}

func buildComplete(_ context.Context, _ *Engine, p Principal, req *models.ConnectionRequest, _ Input, now time.Time) (Guard, map[string]any, error) {
	g := Guard{Status: models.RequestAccepted}
	if p.Role == models.RoleFarmer {
		id := p.ID
		g.FarmerAssigned = &id
	}
	return g, map[string]any{
		"status":       models.RequestAwaitingConfirmation,
		"completed_at": now,
	}, nil
}

func buildConfirm(_ context.Context, _ *Engine, _ Principal, req *models.ConnectionRequest, _ Input, now time.Time) (Guard, map[string]any, error) {
	return Guard{Status: req.Status}, map[string]any{
		"status":             models.RequestCompleted,
		"buyer_confirmed_at": now,
	}, nil
}

func buildDeny(_ context.Context, _ *Engine, _ Principal, _ *models.ConnectionRequest, in Input, now time.Time) (Guard, map[string]any, error) {
	return Guard{Status: models.RequestAwaitingConfirmation}, map[string]any{
		"status":         models.RequestDisputed,
		"disputed_at":    now,
		"dispute_reason": in.Reason,
	}, nil
}

func buildCancel(_ context.Context, _ *Engine, p Principal, req *models.ConnectionRequest, _ Input, now time.Time) (Guard, map[string]any, error) {
	var actor models.CancelActor
	switch p.Role {
	case models.RoleBuyer:
		if req.Status != models.RequestPending {
			return Guard{}, nil, validationf("only pending requests can be cancelled by buyer")
		}
		actor = models.CancelledByBuyer
	case models.RoleFarmer:
		if req.Status.Terminal() {
			return Guard{}, nil, validationf("cannot cancel request with status: %s", req.Status)
		}
		actor = models.CancelledByFarmer
	default:
		actor = models.CancelledByAdmin
	}

	return Guard{Status: req.Status}, map[string]any{
		"status":       models.RequestCancelled,
		"cancelled_at": now,
		"cancelled_by": actor,
	}, nil
}

// buildReactivate returns the request to the open pool: unassigned, pending,
// with every stamp from the prior cycle cleared.
func buildReactivate(_ context.Context, _ *Engine, _ Principal, _ *models.ConnectionRequest, _ Input, _ time.Time) (Guard, map[string]any, error) {
	return Guard{Status: models.RequestCancelled}, map[string]any{
		"status":             models.RequestPending,
		"farmer_id":          nil,
		"accepted_at":        nil,
		"completed_at":       nil,
		"buyer_confirmed_at": nil,
		"cancelled_at":       nil,
		"disputed_at":        nil,
		"cancelled_by":       nil,
		"dispute_reason":     "",
	}, nil
}

// buildReassign overrides any prior assignment. It is also the designed
// escape hatch for a disputed request: reassignment forces the flow back
// through accepted rather than jumping straight to completed.
func buildReassign(ctx context.Context, e *Engine, _ Principal, req *models.ConnectionRequest, in Input, now time.Time) (Guard, map[string]any, error) {
	if in.FarmerID == 0 {
		return Guard{}, nil, validationf("farmer_id required")
	}
	isFarmer, err := e.accounts.IsFarmer(ctx, in.FarmerID)
	if err != nil {
		return Guard{}, nil, err
	}
	if !isFarmer {
		return Guard{}, nil, validationf("target account is not a farmer")
	}

	return Guard{Status: req.Status}, map[string]any{
		"farmer_id":    in.FarmerID,
		"status":       models.RequestAccepted,
		"accepted_at":  now,
		"cancelled_at": nil,
		"cancelled_by": nil,
	}, nil
}

func statusIn(s models.RequestStatus, set []models.RequestStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
