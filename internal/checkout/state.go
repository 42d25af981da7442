// Package checkout runs the two-step checkout wizard: a delivery address,
// then payment, then a single order submission built from the persisted cart.
package checkout

import "errors"

// State is the wizard's position.
type State int

const (
	AwaitingAddress State = iota
	AwaitingPayment
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingAddress:
		return "awaiting_address"
	case AwaitingPayment:
		return "awaiting_payment"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrInvalidAddress     = errors.New("checkout: address is incomplete")
	ErrInvalidCardNumber  = errors.New("checkout: card number must have at least 16 digits")
	ErrSubmissionInFlight = errors.New("checkout: order submission already in progress")
	ErrInvalidTransition  = errors.New("checkout: action not allowed in current state")
)
