package domain

// Step is the position of a checkout session in the linear flow
// Shipping -> Payment -> Review -> Confirmed.
type Step string

const (
	StepShipping  Step = "SHIPPING"
	StepPayment   Step = "PAYMENT"
	StepReview    Step = "REVIEW"
	StepConfirmed Step = "CONFIRMED"
)

func (s Step) IsTerminal() bool {
	return s == StepConfirmed
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}

// legalTransitions describes every allowed move. Forward moves never skip a
// step; backward moves are allowed from Payment and Review so previously
// entered data can be revised without loss.
var legalTransitions = map[Step][]Step{
	StepShipping: {StepPayment},
	StepPayment:  {StepReview, StepShipping},
	StepReview:   {StepConfirmed, StepPayment},
}

// CanTransition reports whether moving from one step to another is legal.
func CanTransition(from, to Step) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ShippingAddress is captured once per shipping submit and replaced wholesale
// when the user navigates back and resubmits.
type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// PaymentMethod discriminates the payment variant. The wire values match the
// backend's order contract.
type PaymentMethod string

const (
	MethodCreditCard     PaymentMethod = "creditCard"
	MethodUPI            PaymentMethod = "UPI_ID"
	MethodCashOnDelivery PaymentMethod = "Cash_On_Delivery"
)

type CardDetails struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
}

type UPIDetails struct {
	UPIID string `json:"upi_id"`
}

/// PaymentSelection is a tagged choice: Method names the active variant and
// exactly one of the detail fields is set (none for cash on delivery).
// Detail fields never leave the process; only Method is submitted upstream.
type PaymentSelection struct {
	Method PaymentMethod `json:"method"`
	Card   *CardDetails  `json:"card,omitempty"`
	UPI    *UPIDetails   `json:"upi,omitempty"`
}

// CheckoutSession holds the state of one checkout attempt. It lives only in
// memory and is discarded after confirmation or abandonment.
type CheckoutSession struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Step            Step              `json:"step"`
	Address         *ShippingAddress  `json:"address,omitempty"`
	Payment         *PaymentSelection `json:"payment,omitempty"`
	OrderID         string            `json:"order_id,omitempty"`
	SubmissionError string            `json:"submission_error,omitempty"`
}
