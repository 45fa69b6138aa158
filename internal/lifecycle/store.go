package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"agrimandi/internal/models"
)

// Guard restricts a transition write to rows still matching the state the
// caller read. A guarded update that matches nothing is a conflict, not a
// silent overwrite.
type Guard struct {
	Status         models.RequestStatus
	FarmerAbsent   bool  // require farmer_id IS NULL
	FarmerAssigned *uint // require farmer_id = the given account
}

// Filter narrows request listings.
type Filter struct {
	Status models.RequestStatus
	Crop   string
}

// Store is the durable record of connection requests. ApplyTransition is the
// single write path for lifecycle mutations: one atomic conditional update
// per transition, no partial application.
type Store interface {
	Create(ctx context.Context, req *models.ConnectionRequest) error
	Get(ctx context.Context, id uint) (*models.ConnectionRequest, error)
	ListByBuyer(ctx context.Context, buyerID uint) ([]models.ConnectionRequest, error)
	List(ctx context.Context, f Filter) ([]models.ConnectionRequest, error)
	ApplyTransition(ctx context.Context, id uint, g Guard, set map[string]any) (*models.ConnectionRequest, error)
}

// AccountDirectory answers the one account question the engine has: whether
// a reassignment target actually is a farmer.
type AccountDirectory interface {
	IsFarmer(ctx context.Context, id uint) (bool, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, req *models.ConnectionRequest) error {
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load request: %w", err)
	}
	return &req, nil
}

func (s *GormStore) ListByBuyer(ctx context.Context, buyerID uint) ([]models.ConnectionRequest, error) {
	var reqs []models.ConnectionRequest
	err := s.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("list buyer requests: %w", err)
	}
	return reqs, nil
}

func (s *GormStore) List(ctx context.Context, f Filter) ([]models.ConnectionRequest, error) {
	q := s.db.WithContext(ctx).Model(&models.ConnectionRequest{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Crop != "" {
		q = q.Where("crop = ?", f.Crop)
	}
	var reqs []models.ConnectionRequest
	if err := q.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return reqs, nil
}

// ApplyTransition issues one conditional UPDATE. Zero matched rows means the
// request either vanished or no longer satisfies the guard; the latter is
// the first-writer-wins conflict signal.
func (s *GormStore) ApplyTransition(ctx context.Context, id uint, g Guard, set map[string]any) (*models.ConnectionRequest, error) {
	q := s.db.WithContext(ctx).
		Model(&models.ConnectionRequest{}).
		Where("id = ?", id).
		Where("status = ?", g.Status)
	if g.FarmerAbsent {
		q = q.Where("farmer_id IS NULL")
	}
	if g.FarmerAssigned != nil {
		q = q.Where("farmer_id = ?", *g.FarmerAssigned)
	}

	res := q.Updates(set)
	if res.Error != nil {
		return nil, fmt.Errorf("apply transition: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return s.Get(ctx, id)
}

type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) IsFarmer(ctx context.Context, id uint) (bool, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup account: %w", err)
	}
	return user.Role == models.RoleFarmer, nil
}
