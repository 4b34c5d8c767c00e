// Package domain contains the core business entities for the payment service.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - represent business rule violations.
var (
	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAuthentication is returned when a webhook signature does not match.
	ErrAuthentication = errors.New("webhook signature validation failed")

	// ErrPaymentGatewayError is returned when the Reepay API fails.
	ErrPaymentGatewayError = errors.New("payment gateway error")

	// ErrSessionCreation is returned when no usable checkout session came back.
	ErrSessionCreation = errors.New("checkout session could not be created")

	// ErrChargeNotFound is returned when the processor has no charge for a handle.
	ErrChargeNotFound = errors.New("charge not found")

	// ErrUnhandledEvent is returned for webhook event types nobody handles.
	ErrUnhandledEvent = errors.New("unhandled webhook event type")

	// ErrDataIntegrity is returned when more than one payment matches a remote id.
	ErrDataIntegrity = errors.New("more than one payment found for order")

	// ErrInvalidTransition is returned when a transition is illegal from the
	// payment's current state.
	ErrInvalidTransition = errors.New("invalid payment transition")

	// ErrTransitionAlreadyApplied is returned alongside ErrInvalidTransition
	// when the payment already sits in the transition's target state.
	ErrTransitionAlreadyApplied = errors.New("payment transition already applied")

	// ErrOrderNotFound is returned when the commerce core has no such order.
	ErrOrderNotFound = errors.New("order not found")

	// ErrPaymentNotFound is returned by payment stores.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrDuplicatePayment is returned by payment stores when (remote_id,
	// order_id) already exists.
	ErrDuplicatePayment = errors.New("payment already exists")

	// ErrCheckoutFailed is the only error shown to a returning customer.
	ErrCheckoutFailed = errors.New("payment failed at the payment server, please review your information and try again")

	// ErrCoreAPIError is returned when the commerce core cannot be reached.
	ErrCoreAPIError = errors.New("error communicating with commerce core")
)

// PaymentError wraps a domain error with additional context.
type PaymentError struct {
	Err     error
	Message string
	Code    string
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError.
func NewPaymentError(err error, message, code string) *PaymentError {
	return &PaymentError{Err: err, Message: message, Code: code}
}

// TransitionError reports a transition that is illegal from the payment's
// current state. It matches ErrInvalidTransition, and also
// ErrTransitionAlreadyApplied when AlreadyApplied is set.
type TransitionError struct {
	Transition     TransitionID
	From           PaymentState
	ChargeState    ChargeState
	PaymentID      string
	AlreadyApplied bool
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("cannot apply %q to payment %s in state %q", e.Transition, e.PaymentID, e.From)
	if e.ChargeState != "" {
		msg += fmt.Sprintf(" (charge state %q)", e.ChargeState)
	}
	if e.AlreadyApplied {
		msg += ": already applied"
	}
	return msg
}

// Superseded reports whether the payment already moved past the
// transition's target, as when a capture lands before the authorization.
func (e *TransitionError) Superseded() bool {
	return e.Transition == TransitionAuthorize && e.From == PaymentCompleted
}

// Is lets errors.Is match the sentinel errors.
func (e *TransitionError) Is(target error) bool {
	switch target {
	case ErrInvalidTransition:
		return true
	case ErrTransitionAlreadyApplied:
		return e.AlreadyApplied
	}
	return false
}
