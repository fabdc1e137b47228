package store

import (
	"context"
	"sync"

	"github.com/playcv/cartd/internal/domain"
)

// MemoryStorage keeps cart snapshots in a map. Used in tests and as a
// fallback when no Redis is configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string]*domain.Cart)}
}

func (m *MemoryStorage) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	copied := *cart
	copied.Items = append([]domain.LineItem(nil), cart.Items...)
	return &copied, nil
}

func (m *MemoryStorage) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *cart
	copied.Items = append([]domain.LineItem(nil), cart.Items...)
	m.carts[sessionID] = &copied
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
