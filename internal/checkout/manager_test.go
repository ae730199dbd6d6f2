package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_BeginReusesLiveSession(t *testing.T) {
	m := NewManager(&mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	first := m.Begin("user1")
	require.NoError(t, first.SubmitShipping(validAddress()))

	// Coming back (e.g. after a login redirect) finds the same session with
	// the address still in place.
	again := m.Begin("user1")
	assert.Same(t, first, again)
	assert.Equal(t, domain.StepPayment, again.Step())
}

func TestManager_BeginAfterConfirmationStartsFresh(t *testing.T) {
	store := &mockCartStore{cart: twoItemCart()}
	m := NewManager(store, &mockOrderPlacer{orderID: "abc123"}, time.Second)

	first := m.Begin("user1")
	require.NoError(t, first.SubmitShipping(validAddress()))
	require.NoError(t, first.SubmitPayment(domain.PaymentSelection{Method: domain.MethodCashOnDelivery}))
	_, err := first.PlaceOrder(context.Background(), customer(), "token")
	require.NoError(t, err)

	second := m.Begin("user1")
	assert.NotSame(t, first, second)
	assert.Equal(t, domain.StepShipping, second.Step())
}

func TestManager_SessionsAreIndependentPerUser(t *testing.T) {
	m := NewManager(&mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	a := m.Begin("user-a")
	b := m.Begin("user-b")
	require.NoError(t, a.SubmitShipping(validAddress()))

	assert.Equal(t, domain.StepPayment, a.Step())
	assert.Equal(t, domain.StepShipping, b.Step())
}

func TestManager_Discard(t *testing.T) {
	m := NewManager(&mockCartStore{cart: twoItemCart()}, &mockOrderPlacer{}, time.Second)

	m.Begin("user1")
	m.Discard("user1")

	_, exists := m.Get("user1")
	assert.False(t, exists)
}
