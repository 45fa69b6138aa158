// Package enrich attaches public account profiles to connection requests for
// display. It is a pure read-side join: nothing here mutates stored state.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"agrimandi/internal/models"
)

// Profile is the redacted account view shown to the other party.
type Profile struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// AccountLookup resolves an account id to its public profile. A missing
// account returns (nil, nil): dangling references are tolerated by omission,
// never by failing the read.
type AccountLookup interface {
	Lookup(ctx context.Context, id uint) (*Profile, error)
}

// Request is a ConnectionRequest with its joined profiles.
type Request struct {
	models.ConnectionRequest
	Buyer  *Profile `json:"buyer,omitempty"`
	Farmer *Profile `json:"farmer,omitempty"`
}

// One joins a single request.
func One(ctx context.Context, lookup AccountLookup, req models.ConnectionRequest) (Request, error) {
	out, err := Many(ctx, lookup, []models.ConnectionRequest{req})
	if err != nil {
		return Request{}, err
	}
	return out[0], nil
}

// Many joins a batch, memoizing lookups so repeated buyers and farmers cost
// one resolution each.
func Many(ctx context.Context, lookup AccountLookup, reqs []models.ConnectionRequest) ([]Request, error) {
	seen := make(map[uint]*Profile)
	resolve := func(id uint) (*Profile, error) {
		if p, ok := seen[id]; ok {
			return p, nil
		}
		p, err := lookup.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		seen[id] = p
		return p, nil
	}

	out := make([]Request, 0, len(reqs))
	for _, req := range reqs {
		buyer, err := resolve(req.BuyerID)
		if err != nil {
			return nil, fmt.Errorf("enrich buyer %d: %w", req.BuyerID, err)
		}
		var farmer *Profile
		if req.FarmerID != nil {
			farmer, err = resolve(*req.FarmerID)
			if err != nil {
				return nil, fmt.Errorf("enrich farmer %d: %w", *req.FarmerID, err)
			}
		}
		out = append(out, Request{ConnectionRequest: req, Buyer: buyer, Farmer: farmer})
	}
	return out, nil
}

type GormLookup struct {
	db *gorm.DB
}

func NewGormLookup(db *gorm.DB) *GormLookup {
	return &GormLookup{db: db}
}

func (l *GormLookup) Lookup(ctx context.Context, id uint) (*Profile, error) {
	var user models.User
	if err := l.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Profile{ID: user.ID, Name: user.Name, Contact: user.Contact}, nil
}
