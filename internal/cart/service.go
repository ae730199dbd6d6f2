package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/foodiex/go_checkout/internal/cache"
	"github.com/foodiex/go_checkout/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service is the cart store for the session: it owns all cart mutations and
// keeps the cache consistent with the repository. Totals and item counts are
// derived from the cart itself on every read, never cached independently.
type Service struct {
	repo  Repository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			// No cart yet for this session, hand back an empty one.
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem merges the item into the user's cart, creating the cart if needed.
// When the product is already present its quantity is incremented.
func (s *Service) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	item.AddedAt = time.Now()
	cart.Add(item)

	if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
		log.Printf("repo add item error: %v", errUpsert)
		return nil, errUpsert
	}

	s.invalidateCache(userID)
	return cart, nil
}

// SetQuantity overwrites the quantity for a product already in the cart.
// A quantity of zero or less removes the item, exactly like RemoveItem.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.SetQuantity(productID, quantity) {
		return nil, ErrItemNotFound
	}

	if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
		log.Printf("repo update quantity error: %v", errUpsert)
		return nil, errUpsert
	}

	s.invalidateCache(userID)
	return cart, nil
}

// RemoveItem deletes the entry for the product. Removing an absent product
// is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Remove(productID)

	if errUpsert := s.repo.UpsertCart(ctx, cart); errUpsert != nil {
		log.Printf("repo remove item error: %v", errUpsert)
		return nil, errUpsert
	}

	s.invalidateCache(userID)
	return cart, nil
}

// Clear empties the cart; used after successful order placement. Clearing an
// already empty cart succeeds.
func (s *Service) Clear(ctx context.Context, userID string) error {
	errDelete := s.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", errDelete)
		return errDelete
	}

	s.invalidateCache(userID)
	return nil
}

// load reads the cart straight from the repository for mutation, bypassing
// the cache so writes never start from a stale copy.
func (s *Service) load(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			now := time.Now()
			return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
		}
		return nil, err
	}
	return cart, nil
}

func (s *Service) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v", errInvalidate)
	}
}
