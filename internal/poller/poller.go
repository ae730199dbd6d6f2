// Package poller refreshes the admin order view on a fixed interval. It is a
// cancellable periodic task: stopping the context stops the ticker, so
// navigation away never leaves a bare repeating timer behind.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/foodiex/go_checkout/internal/domain"
)

// OrderLister is the slice of the admin API the poller needs.
type OrderLister interface {
	ListOrders(ctx context.Context, credential string) ([]domain.Order, error)
}

type Poller struct {
	interval   time.Duration
	timeout    time.Duration
	api        OrderLister
	credential string // service credential for the admin endpoints

	mu        sync.RWMutex
	orders    []domain.Order
	fetchedAt time.Time
}

func New(api OrderLister, credential string, interval time.Duration) *Poller {
	return &Poller{
		interval:   interval,
		timeout:    10 * time.Second,
		api:        api,
		credential: credential,
	}
}

// Run refreshes immediately, then on every tick until the context is done.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	orders, err := p.api.ListOrders(fetchCtx, p.credential)
	if err != nil {
		// Keep serving the previous snapshot on a failed refresh.
		log.Printf("admin order refresh failed: %v", err)
		return
	}

	p.mu.Lock()
	p.orders = orders
	p.fetchedAt = time.Now()
	p.mu.Unlock()
}

// Snapshot returns the most recent successful fetch and its timestamp.
func (p *Poller) Snapshot() ([]domain.Order, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.orders, p.fetchedAt
}
