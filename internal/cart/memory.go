package cart

import (
	"context"
	"sync"

	"github.com/foodiex/go_checkout/internal/domain"
)

// MemoryRepository keeps carts in process memory. It is the default backend:
// the flow does not require carts to survive a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // userID -> cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (m *MemoryRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, exists := m.carts[userID]
	if !exists {
		return nil, ErrCartNotFound
	}
	// Clone so callers never alias the stored items slice.
	return cart.Clone(), nil
}

func (m *MemoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[cart.UserID] = cart.Clone()
	return nil
}

func (m *MemoryRepository) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.carts[userID]; !exists {
		return ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}
