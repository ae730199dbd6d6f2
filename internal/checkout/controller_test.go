package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/foodiex/go_checkout/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCartStore struct {
	mu      sync.Mutex
	cart    *domain.Cart
	getErr  error
	cleared bool
}

func (m *mockCartStore) Get(context.Context, string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart.Clone(), nil
}

func (m *mockCartStore) Clear(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = true
	m.cart = &domain.Cart{UserID: m.cart.UserID}
	return nil
}

type mockOrderPlacer struct {
	mu      sync.Mutex
	orderID string
	err     error
	got     OrderSubmission
	calls   int

	// When set, Create blocks until the channel closes or ctx is done.
	block chan struct{}
}

func (m *mockOrderPlacer) Create(ctx context.Context, _ string, sub OrderSubmission) (string, error) {
	m.mu.Lock()
	m.got = sub
	m.calls++
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

func customer() session.Identity {
	return session.Identity{UserID: "user1", Name: "Asha", Role: session.RoleCustomer}
}

func twoItemCart() *domain.Cart {
	cart := &domain.Cart{UserID: "user1"}
	cart.Add(domain.CartItem{ProductID: "p1", Name: "Paneer Tikka", UnitPrice: 100, Quantity: 2})
	cart.Add(domain.CartItem{ProductID: "p2", Name: "Garlic Naan", UnitPrice: 50, Quantity: 1})
	return cart
}

func reviewController(t *testing.T, store *mockCartStore, placer *mockOrderPlacer) *Controller {
	t.Helper()
	ctrl := NewController("user1", store, placer, 5*time.Second)
	require.NoError(t, ctrl.SubmitShipping(validAddress()))
	require.NoError(t, ctrl.SubmitPayment(domain.PaymentSelection{Method: domain.MethodCashOnDelivery}))
	require.Equal(t, domain.StepReview, ctrl.Step())
	return ctrl
}

func TestController_StartsAtShipping(t *testing.T) {
	ctrl := NewController("user1", &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)
	assert.Equal(t, domain.StepShipping, ctrl.Step())
	assert.NotEmpty(t, ctrl.Session().ID)
}

func TestController_InvalidShippingLeavesSessionUntouched(t *testing.T) {
	ctrl := NewController("user1", &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	addr := validAddress()
	addr.Phone = "12345"
	err := ctrl.SubmitShipping(addr)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)

	state := ctrl.Session()
	assert.Equal(t, domain.StepShipping, state.Step)
	assert.Nil(t, state.Address)
	assert.Nil(t, state.Payment)
}

func TestController_BackPreservesEnteredData(t *testing.T) {
	ctrl := reviewController(t, &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{})

	require.NoError(t, ctrl.Back()) // Review -> Payment
	assert.Equal(t, domain.StepPayment, ctrl.Step())

	require.NoError(t, ctrl.Back()) // Payment -> Shipping
	assert.Equal(t, domain.StepShipping, ctrl.Step())

	state := ctrl.Session()
	require.NotNil(t, state.Address)
	assert.Equal(t, validAddress(), *state.Address)
	require.NotNil(t, state.Payment)
	assert.Equal(t, domain.MethodCashOnDelivery, state.Payment.Method)
}

func TestController_BackFromShippingIsIllegal(t *testing.T) {
	ctrl := NewController("user1", &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)
	assert.ErrorIs(t, ctrl.Back(), ErrIllegalTransition)
}

func TestController_SubmitOutOfOrderIsIllegal(t *testing.T) {
	ctrl := NewController("user1", &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	err := ctrl.SubmitPayment(domain.PaymentSelection{Method: domain.MethodCashOnDelivery})
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = ctrl.PlaceOrder(context.Background(), customer(), "token")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestController_PlaceOrderSuccess(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	placer := &mockOrderPlacer{orderID: "abc123"}
	ctrl := reviewController(t, store, placer)

	orderID, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", orderID)

	state := ctrl.Session()
	assert.Equal(t, domain.StepConfirmed, state.Step)
	assert.Equal(t, "abc123", state.OrderID)
	assert.Empty(t, state.SubmissionError)
	assert.True(t, store.cleared)

	// Item list is derived from the cart at submit time.
	require.Len(t, placer.got.Products, 2)
	assert.Equal(t, OrderProduct{ProductID: "p1", Quantity: 2}, placer.got.Products[0])
	assert.Equal(t, OrderProduct{ProductID: "p2", Quantity: 1}, placer.got.Products[1])
	assert.Equal(t, domain.MethodCashOnDelivery, placer.got.PaymentMethod)
	assert.NotEmpty(t, placer.got.IdempotencyKey)
}

func TestController_PlaceOrderFailureKeepsCartAndReview(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	placer := &mockOrderPlacer{err: errors.New("backend rejected the order")}
	ctrl := reviewController(t, store, placer)

	_, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	require.Error(t, err)

	state := ctrl.Session()
	assert.Equal(t, domain.StepReview, state.Step)
	assert.Contains(t, state.SubmissionError, "backend rejected")
	assert.Empty(t, state.OrderID)
	assert.False(t, store.cleared)

	// Retry succeeds with the same idempotency key.
	firstKey := placer.got.IdempotencyKey
	placer.err = nil
	placer.orderID = "abc123"

	orderID, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", orderID)
	assert.Equal(t, firstKey, placer.got.IdempotencyKey)
	assert.Equal(t, domain.StepConfirmed, ctrl.Step())
}

func TestController_PlaceOrderEmptyCart(t *testing.T) {
	store := &mockCartStore{cart: &domain.Cart{UserID: "user1"}}
	ctrl := reviewController(t, store, &mockOrderPlacer{orderID: "abc123"})

	_, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.StepReview, ctrl.Step())
}

func TestController_PlaceOrderUnauthenticatedRetainsData(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	placer := &mockOrderPlacer{orderID: "abc123"}
	ctrl := reviewController(t, store, placer)

	_, err := ctrl.PlaceOrder(context.Background(), session.Anonymous, "")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Equal(t, 0, placer.calls)

	// The entered data survives so the user can resume after logging in.
	state := ctrl.Session()
	assert.Equal(t, domain.StepReview, state.Step)
	assert.NotNil(t, state.Address)
	assert.NotNil(t, state.Payment)

	orderID, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", orderID)
}

func TestController_SecondSubmissionWhileInFlight(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	placer := &mockOrderPlacer{orderID: "abc123", block: make(chan struct{})}
	ctrl := reviewController(t, store, placer)

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
		done <- err
	}()

	require.Eventually(t, ctrl.InFlight, time.Second, time.Millisecond)

	_, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	close(placer.block)
	require.NoError(t, <-done)
	assert.Equal(t, domain.StepConfirmed, ctrl.Step())
}

func TestController_CancelledSubmissionDiscardsResult(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	placer := &mockOrderPlacer{orderID: "abc123", block: make(chan struct{})}
	ctrl := reviewController(t, store, placer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := ctrl.PlaceOrder(ctx, customer(), "token")
		done <- err
	}()

	require.Eventually(t, ctrl.InFlight, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// Abandoned submission must not mutate the session or the cart.
	state := ctrl.Session()
	assert.Equal(t, domain.StepReview, state.Step)
	assert.Empty(t, state.OrderID)
	assert.False(t, store.cleared)
	assert.False(t, ctrl.InFlight())
}

func TestController_CartReadErrorSurfacesAsSubmissionError(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart(), getErr: errors.New("cart store down")}
	ctrl := reviewController(t, store, &mockOrderPlacer{orderID: "abc123"})

	_, err := ctrl.PlaceOrder(context.Background(), customer(), "token")
	require.Error(t, err)
	assert.Equal(t, domain.StepReview, ctrl.Step())
	assert.Contains(t, ctrl.Session().SubmissionError, "cart store down")
}

func TestController_ShippingResubmitReplacesAddress(t *testing.T) {
	ctrl := NewController("user1", &mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	first := validAddress()
	require.NoError(t, ctrl.SubmitShipping(first))
	require.NoError(t, ctrl.Back())

	second := validAddress()
	second.City = "Pune"
	require.NoError(t, ctrl.SubmitShipping(second))

	state := ctrl.Session()
	require.NotNil(t, state.Address)
	assert.Equal(t, "Pune", state.Address.City)
}
