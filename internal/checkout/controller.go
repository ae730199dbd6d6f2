package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/foodiex/go_checkout/internal/domain"
	"github.com/foodiex/go_checkout/internal/session"
	"github.com/google/uuid"
)

// CartStore is the slice of the cart service the controller needs: the items
// to submit and the ability to clear them after a confirmed order.
// Consumers define this interface, not the cart implementation.
type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// OrderSubmission is the payload sent to the external order API. Only the
// payment method discriminator travels upstream; card numbers, CVVs and UPI
// handles stay in the session.
type OrderSubmission struct {
	Products       []OrderProduct
	Address        domain.ShippingAddress
	PaymentMethod  domain.PaymentMethod
	IdempotencyKey string
}

type OrderProduct struct {
	ProductID string
	Quantity  int
}

// OrderPlacer submits an order on behalf of the credential's owner and
// returns the order identifier assigned by the backend.
type OrderPlacer interface {
	Create(ctx context.Context, credential string, sub OrderSubmission) (string, error)
}

// Controller walks one checkout attempt through the linear flow
// Shipping -> Payment -> Review -> Confirmed. Cart store and order client are
// passed in explicitly so independent sessions can coexist.
//
// All transitions are synchronous; the only suspension point is the order
// submission call, during which at most one attempt may be in flight.
type Controller struct {
	carts   CartStore
	orders  OrderPlacer
	timeout time.Duration

	mu             sync.Mutex
	state          domain.CheckoutSession
	idempotencyKey string
	submitting     bool
}

func NewController(userID string, carts CartStore, orders OrderPlacer, timeout time.Duration) *Controller {
	return &Controller{
		carts:   carts,
		orders:  orders,
		timeout: timeout,
		state: domain.CheckoutSession{
			ID:     uuid.NewString(),
			UserID: userID,
			Step:   domain.StepShipping,
		},
		idempotencyKey: uuid.NewString(),
	}
}

// Session returns a copy of the current session state.
func (c *Controller) Session() domain.CheckoutSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Step() domain.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Step
}

// InFlight reports whether an order submission is currently pending.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// SubmitShipping validates and stores the address, advancing to Payment.
// On validation failure the session is left untouched. Resubmitting the step
// replaces the previous address wholesale.
func (c *Controller) SubmitShipping(addr domain.ShippingAddress) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step != domain.StepShipping {
		return ErrIllegalTransition
	}
	if errs := ValidateShipping(addr); len(errs) > 0 {
		return errs
	}

	c.state.Address = &addr
	c.state.Step = domain.StepPayment
	return nil
}

// SubmitPayment validates the selected variant and advances to Review.
func (c *Controller) SubmitPayment(sel domain.PaymentSelection) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Step != domain.StepPayment {
		return ErrIllegalTransition
	}
	if errs := ValidatePayment(sel); len(errs) > 0 {
		return errs
	}

	c.state.Payment = &sel
	c.state.Step = domain.StepReview
	return nil
}

// Back moves one step backwards (Review -> Payment, Payment -> Shipping)
// without discarding anything already entered.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Step {
	case domain.StepReview:
		c.state.Step = domain.StepPayment
	case domain.StepPayment:
		c.state.Step = domain.StepShipping
	default:
		return ErrIllegalTransition
	}
	return nil
}

// PlaceOrder submits the order to the external order API. Guards: the session
// must be on Review, the cart non-empty and the identity authenticated. On
// success the session is Confirmed and the cart cleared; on failure the
// session stays on Review with the cart intact so the user can retry. If the
// context is cancelled before the call resolves the pending result is
// discarded and the session is not mutated.
//
// An unauthenticated caller gets ErrAuthenticationRequired and keeps the
// entered shipping and payment data, so the flow can resume after login.
func (c *Controller) PlaceOrder(ctx context.Context, ident session.Identity, credential string) (string, error) {
	c.mu.Lock()

	if c.state.Step != domain.StepReview {
		c.mu.Unlock()
		return "", ErrIllegalTransition
	}
	if c.submitting {
		c.mu.Unlock()
		return "", ErrSubmissionInFlight
	}
	if !ident.Authenticated() {
		c.mu.Unlock()
		return "", ErrAuthenticationRequired
	}

	userID := c.state.UserID
	sub := OrderSubmission{
		Address:        *c.state.Address,
		PaymentMethod:  c.state.Payment.Method,
		IdempotencyKey: c.idempotencyKey,
	}
	c.submitting = true
	c.mu.Unlock()

	orderID, err := c.submit(ctx, userID, credential, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if ctx.Err() != nil {
		// The caller went away; drop the result on the floor.
		return "", ctx.Err()
	}
	if err != nil {
		c.state.SubmissionError = err.Error()
		return "", err
	}

	c.state.OrderID = orderID
	c.state.SubmissionError = ""
	c.state.Step = domain.StepConfirmed
	c.clearCart(userID)
	return orderID, nil
}

func (c *Controller) submit(ctx context.Context, userID, credential string, sub OrderSubmission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cart, err := c.carts.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if cart.IsEmpty() {
		return "", ErrEmptyCart
	}

	// Item list is derived from the cart at submit time, not captured earlier.
	sub.Products = make([]OrderProduct, 0, len(cart.Items))
	for _, item := range cart.Items {
		sub.Products = append(sub.Products, OrderProduct{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return c.orders.Create(ctx, credential, sub)
}

// clearCart runs on its own context so a cancelled request cannot leave a
// confirmed order with a stale cart behind.
func (c *Controller) clearCart(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.carts.Clear(ctx, userID); err != nil {
		log.Printf("failed to clear cart after order: %v", err)
	}
}
