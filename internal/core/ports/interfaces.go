// Package ports defines the interfaces (ports) for the payment service.
// These are contracts that adapters must implement.
package ports

import (
	"context"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// ChargeAPI looks up charges in the Reepay management API.
type ChargeAPI interface {
	// GetCharge returns the charge for an invoice handle, or
	// domain.ErrChargeNotFound when the processor does not know it.
	GetCharge(ctx context.Context, handle string) (*domain.Charge, error)
}

// CheckoutAPI creates and deletes hosted checkout sessions.
type CheckoutAPI interface {
	CreateChargeSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error)
	CreateRecurringSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// WebhookValidator validates Reepay webhook signatures.
type WebhookValidator interface {
	ValidateSignature(notification domain.WebhookNotification, secret string) bool
}

// OrderRepository is the order-management collaborator.
type OrderRepository interface {
	// GetOrder returns domain.ErrOrderNotFound when the order does not exist.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// PlaceOrder applies the "place" transition and completes checkout.
	PlaceOrder(ctx context.Context, orderID string) error
}

// PaymentRepository persists merchant payments.
type PaymentRepository interface {
	// FindByRemoteID returns every payment matching (remoteID, orderID).
	FindByRemoteID(ctx context.Context, remoteID, orderID string) ([]*domain.Payment, error)

	// ListByOrder returns all payments of an order.
	ListByOrder(ctx context.Context, orderID string) ([]*domain.Payment, error)

	// Create inserts a payment. It returns domain.ErrDuplicatePayment when
	// (remote_id, order_id) is already taken.
	Create(ctx context.Context, payment *domain.Payment) error

	// Save updates state, remote state and timestamps of a payment still in
	// state expected. It returns domain.ErrPaymentNotFound when no payment
	// with that id is in state expected any more.
	Save(ctx context.Context, payment *domain.Payment, expected domain.PaymentState) error
}

// PaymentNotifier publishes payment state changes to downstream systems.
type PaymentNotifier interface {
	NotifyPayment(ctx context.Context, event domain.PaymentEvent) error
}

// CallbackQueue enqueues reconciliation work for the callback worker.
type CallbackQueue interface {
	Enqueue(ctx context.Context, item domain.CallbackItem) error
}
