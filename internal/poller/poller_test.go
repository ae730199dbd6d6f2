package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderLister struct {
	mu     sync.Mutex
	calls  int
	orders []domain.Order
	err    error
}

func (m *mockOrderLister) ListOrders(ctx context.Context, credential string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *mockOrderLister) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockOrderLister) set(orders []domain.Order, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = orders
	m.err = err
}

func TestRun_RefreshesImmediatelyAndOnTick(t *testing.T) {
	lister := &mockOrderLister{orders: []domain.Order{{ID: "o1", Status: "Processing"}}}
	p := New(lister, "svc-token", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return lister.callCount() >= 2
	}, time.Second, 5*time.Millisecond)

	orders, fetchedAt := p.Snapshot()
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)
	assert.False(t, fetchedAt.IsZero())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	lister := &mockOrderLister{}
	p := New(lister, "svc-token", 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return lister.callCount() >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	calls := lister.callCount()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, lister.callCount(), "no refreshes after cancel")
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	lister := &mockOrderLister{orders: []domain.Order{{ID: "o1"}}}
	p := New(lister, "svc-token", time.Hour)

	p.refresh(context.Background())
	orders, firstFetch := p.Snapshot()
	require.Len(t, orders, 1)

	lister.set(nil, errors.New("upstream down"))
	p.refresh(context.Background())

	orders, fetchedAt := p.Snapshot()
	assert.Len(t, orders, 1, "failed refresh keeps previous orders")
	assert.Equal(t, firstFetch, fetchedAt, "failed refresh keeps previous timestamp")
}

func TestSnapshot_EmptyBeforeFirstFetch(t *testing.T) {
	p := New(&mockOrderLister{}, "svc-token", time.Hour)

	orders, fetchedAt := p.Snapshot()
	assert.Empty(t, orders)
	assert.True(t, fetchedAt.IsZero())
}
