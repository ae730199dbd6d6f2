package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition      = errors.New("illegal transition of checkout step")
	ErrSubmissionInFlight     = errors.New("order submission already in flight")
	ErrAuthenticationRequired = errors.New("authentication required to place order")
)

// FieldError points at a single offending form field. Validation failures are
// surfaced inline and never leave the process.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
