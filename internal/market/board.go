// Package market holds the live commodity price board backing the public
// market endpoints.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"agrimandi/internal/models"
)

var ErrNotFound = errors.New("commodity not found")

// Board is the durable price board. SetPrice is the single write path for
// price updates: price, delta and stamp land in one update.
type Board interface {
	List(ctx context.Context) ([]models.Commodity, error)
	Get(ctx context.Context, id uint) (*models.Commodity, error)
	SetPrice(ctx context.Context, id uint, price, change float64, at time.Time) (*models.Commodity, error)
}

type GormBoard struct {
	db *gorm.DB
}

func NewGormBoard(db *gorm.DB) *GormBoard {
	return &GormBoard{db: db}
}

func (b *GormBoard) List(ctx context.Context) ([]models.Commodity, error) {
	var commodities []models.Commodity
	if err := b.db.WithContext(ctx).Order("name ASC").Find(&commodities).Error; err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	return commodities, nil
}

func (b *GormBoard) Get(ctx context.Context, id uint) (*models.Commodity, error) {
	var commodity models.Commodity
	if err := b.db.WithContext(ctx).First(&commodity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load commodity: %w", err)
	}
	return &commodity, nil
}

func (b *GormBoard) SetPrice(ctx context.Context, id uint, price, change float64, at time.Time) (*models.Commodity, error) {
	res := b.db.WithContext(ctx).
		Model(&models.Commodity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"price":        price,
			"change":       change,
			"last_updated": at,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update commodity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return b.Get(ctx, id)
}
