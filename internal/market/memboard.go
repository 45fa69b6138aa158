package market

import (
	"context"
	"sort"
	"sync"
	"time"

	"agrimandi/internal/models"
)

// MemBoard is a mutex-guarded in-memory Board backing handler tests.
type MemBoard struct {
	mu    sync.Mutex
	items map[uint]models.Commodity
}

func NewMemBoard(items ...models.Commodity) *MemBoard {
	b := &MemBoard{items: make(map[uint]models.Commodity)}
	for _, item := range items {
		b.items[item.ID] = item
	}
	return b
}

func (b *MemBoard) List(_ context.Context) ([]models.Commodity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Commodity, 0, len(b.items))
	for _, item := range b.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (b *MemBoard) Get(_ context.Context, id uint) (*models.Commodity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := item
	return &cp, nil
}

func (b *MemBoard) SetPrice(_ context.Context, id uint, price, change float64, at time.Time) (*models.Commodity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	item.Price = price
	item.Change = change
	item.LastUpdated = at
	b.items[id] = item
	cp := item
	return &cp, nil
}
