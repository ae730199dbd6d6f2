package checkout

import (
	"regexp"
	"strings"

	"github.com/foodiex/go_checkout/internal/domain"
)

var (
	// Indian mobile number: ten digits, first digit 6-9.
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// local-part@bank-alias, e.g. name@upi
	upiPattern    = regexp.MustCompile(`^[\w.-]+@[a-zA-Z]+$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// rule is one row of a declarative validation table: which field, how to read
// it, the predicate it must satisfy, and the message shown when it doesn't.
type rule[T any] struct {
	field   string
	get     func(T) string
	valid   func(string) bool
	message string
}

func required(s string) bool {
	return strings.TrimSpace(s) != ""
}

func matches(re *regexp.Regexp) func(string) bool {
	return func(s string) bool { return re.MatchString(s) }
}

func runRules[T any](subject T, rules []rule[T]) ValidationErrors {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.valid(r.get(subject)) {
			errs = append(errs, FieldError{Field: r.field, Message: r.message})
		}
	}
	return errs
}

var shippingRules = []rule[domain.ShippingAddress]{
	{"name", func(a domain.ShippingAddress) string { return a.Name }, required, "name is required"},
	{"email", func(a domain.ShippingAddress) string { return a.Email }, required, "email is required"},
	{"email", func(a domain.ShippingAddress) string { return a.Email }, matches(emailPattern), "invalid email"},
	{"phone", func(a domain.ShippingAddress) string { return a.Phone }, required, "phone is required"},
	{"phone", func(a domain.ShippingAddress) string { return a.Phone }, matches(phonePattern), "invalid phone number"},
	{"street", func(a domain.ShippingAddress) string { return a.Street }, required, "street address is required"},
	{"city", func(a domain.ShippingAddress) string { return a.City }, required, "city is required"},
	{"postal_code", func(a domain.ShippingAddress) string { return a.PostalCode }, required, "postal code is required"},
}

var cardRules = []rule[domain.CardDetails]{
	{"card_number", func(c domain.CardDetails) string { return c.CardNumber }, required, "card number is required"},
	{"expiry_date", func(c domain.CardDetails) string { return c.ExpiryDate }, required, "expiry date is required"},
	{"expiry_date", func(c domain.CardDetails) string { return c.ExpiryDate }, matches(expiryPattern), "expiry date must be MM/YY"},
	{"cvv", func(c domain.CardDetails) string { return c.CVV }, required, "cvv is required"},
}

var upiRules = []rule[domain.UPIDetails]{
	{"upi_id", func(u domain.UPIDetails) string { return u.UPIID }, required, "upi id is required"},
	{"upi_id", func(u domain.UPIDetails) string { return u.UPIID }, matches(upiPattern), "invalid upi id (e.g. name@bank)"},
}

// ValidateShipping checks a shipping address against the rule table. A
// skipped rule never hides another: every failing row is reported.
func ValidateShipping(addr domain.ShippingAddress) ValidationErrors {
	return runRules(addr, shippingRules)
}

// ValidatePayment checks that exactly one variant is selected and that the
// variant's own fields are valid.
func ValidatePayment(sel domain.PaymentSelection) ValidationErrors {
	switch sel.Method {
	case domain.MethodCreditCard:
		if sel.Card == nil {
			return ValidationErrors{{Field: "card", Message: "card details are required"}}
		}
		if sel.UPI != nil {
			return ValidationErrors{{Field: "method", Message: "only one payment variant may be set"}}
		}
		return runRules(*sel.Card, cardRules)
	case domain.MethodUPI:
		if sel.UPI == nil {
			return ValidationErrors{{Field: "upi", Message: "upi details are required"}}
		}
		if sel.Card != nil {
			return ValidationErrors{{Field: "method", Message: "only one payment variant may be set"}}
		}
		return runRules(*sel.UPI, upiRules)
	case domain.MethodCashOnDelivery:
		if sel.Card != nil || sel.UPI != nil {
			return ValidationErrors{{Field: "method", Message: "cash on delivery carries no payment details"}}
		}
		return nil
	default:
		return ValidationErrors{{Field: "method", Message: "select a payment method"}}
	}
}
