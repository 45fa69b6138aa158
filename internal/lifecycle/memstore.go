package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"agrimandi/internal/models"
)

// MemStore is a mutex-guarded in-memory Store and AccountDirectory. It backs
// the engine tests, including the concurrent-accept property: ApplyTransition
// checks its guard and writes under one lock acquisition, matching the
// single-document atomicity the Postgres store gets from a conditional UPDATE.
type MemStore struct {
	mu       sync.Mutex
	seq      uint
	requests map[uint]*models.ConnectionRequest
	roles    map[uint]models.Role
}

func NewMemStore() *MemStore {
	return &MemStore{
		requests: make(map[uint]*models.ConnectionRequest),
		roles:    make(map[uint]models.Role),
	}
}

// AddAccount registers an account role for IsFarmer lookups.
func (s *MemStore) AddAccount(id uint, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[id] = role
}

func (s *MemStore) IsFarmer(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles[id] == models.RoleFarmer, nil
}

func (s *MemStore) Create(_ context.Context, req *models.ConnectionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	req.ID = s.seq
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id uint) (*models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s *MemStore) ListByBuyer(_ context.Context, buyerID uint) ([]models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConnectionRequest
	for _, req := range s.requests {
		if req.BuyerID == buyerID {
			out = append(out, *req)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemStore) List(_ context.Context, f Filter) ([]models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ConnectionRequest
	for _, req := range s.requests {
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.Crop != "" && req.Crop != f.Crop {
			continue
		}
		out = append(out, *req)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemStore) ApplyTransition(_ context.Context, id uint, g Guard, set map[string]any) (*models.ConnectionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Status != g.Status {
		return nil, ErrConflict
	}
	if g.FarmerAbsent && req.FarmerID != nil {
		return nil, ErrConflict
	}
	if g.FarmerAssigned != nil && (req.FarmerID == nil || *req.FarmerID != *g.FarmerAssigned) {
		return nil, ErrConflict
	}

	for col, val := range set {
		applyColumn(req, col, val)
	}
	req.UpdatedAt = time.Now()

	cp := *req
	return &cp, nil
}

// applyColumn mirrors the column names the real store hands to its UPDATE.
// A column or value this switch cannot map is a bug in a transition row, so
// it panics with the offending column rather than silently dropping it.
func applyColumn(req *models.ConnectionRequest, col string, val any) {
	switch col {
	case "status":
		req.Status = mustVal[models.RequestStatus](col, val)
	case "farmer_id":
		req.FarmerID = optVal[uint](col, val)
	case "accepted_at":
		req.AcceptedAt = optVal[time.Time](col, val)
	case "completed_at":
		req.CompletedAt = optVal[time.Time](col, val)
	case "buyer_confirmed_at":
		req.BuyerConfirmedAt = optVal[time.Time](col, val)
	case "cancelled_at":
		req.CancelledAt = optVal[time.Time](col, val)
	case "disputed_at":
		req.DisputedAt = optVal[time.Time](col, val)
	case "cancelled_by":
		req.CancelledBy = optVal[models.CancelActor](col, val)
	case "dispute_reason":
		req.DisputeReason = mustVal[string](col, val)
	default:
		panic(fmt.Sprintf("memstore: unmapped column %q", col))
	}
}

func mustVal[T any](col string, val any) T {
	v, ok := val.(T)
	if !ok {
		panic(fmt.Sprintf("memstore: column %q: unexpected value type %T", col, val))
	}
	return v
}

func optVal[T any](col string, val any) *T {
	if val == nil {
		return nil
	}
	v := mustVal[T](col, val)
	return &v
}

func sortNewestFirst(reqs []models.ConnectionRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID > reqs[j].ID
		}
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
