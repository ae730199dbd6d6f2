package cart

import (
	"context"
	"testing"

	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_GetMissing(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetCart(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMemoryRepository_UpsertAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cart := &domain.Cart{UserID: "user1", Items: []domain.CartItem{{ProductID: "p1", Quantity: 2}}}
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items, got.Items)

	// The stored cart must not alias the caller's slice.
	got.Items[0].Quantity = 99
	again, err := repo.GetCart(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, &domain.Cart{UserID: "user1"}))
	require.NoError(t, repo.DeleteCart(ctx, "user1"))

	_, err := repo.GetCart(ctx, "user1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.ErrorIs(t, repo.DeleteCart(ctx, "user1"), ErrCartNotFound)
}
