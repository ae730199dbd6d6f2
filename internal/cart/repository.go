package cart

import (
	"context"
	"errors"

	"github.com/foodiex/go_checkout/internal/domain"
)

// Repository defines the interface for durable cart storage.
// Consumers define this interface, not the storage implementations.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)
