// Package service implements the core business logic.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
)

// CancelMessage is shown to a customer who left the hosted checkout.
const CancelMessage = "You have canceled checkout at Reepay but may resume the checkout process here when you are ready."

// PaymentService orchestrates the checkout, return and webhook flows.
type PaymentService struct {
	orders   ports.OrderRepository
	sessions *SessionBuilder
	returns  *ReturnFlow
	webhooks *WebhookFlow
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orders ports.OrderRepository,
	sessions *SessionBuilder,
	returns *ReturnFlow,
	webhooks *WebhookFlow,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		orders:   orders,
		sessions: sessions,
		returns:  returns,
		webhooks: webhooks,
		logger:   logger,
	}
}

func (s *PaymentService) loadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.NewPaymentError(domain.ErrInvalidRequest, "order id is required", "VALIDATION_ERROR")
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return nil, domain.NewPaymentError(domain.ErrOrderNotFound, "order not found: "+orderID, "ORDER_NOT_FOUND")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load order", "order_id", orderID, "error", err)
		return nil, domain.NewPaymentError(domain.ErrCoreAPIError, "order lookup failed", "CORE_API_ERROR")
	}
	return order, nil
}

// CreateCheckout creates a hosted checkout session for an order.
func (s *PaymentService) CreateCheckout(ctx context.Context, orderID, returnURL, cancelURL string) (*domain.CheckoutSession, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.State != domain.OrderDraft {
		return nil, domain.NewPaymentError(domain.ErrInvalidRequest, "order is not in checkout", "ORDER_NOT_DRAFT")
	}
	return s.sessions.Create(ctx, order, returnURL, cancelURL)
}

// HandleReturn processes the customer's return from the hosted checkout.
// Every failure is reported as domain.ErrCheckoutFailed.
func (s *PaymentService) HandleReturn(ctx context.Context, orderID string, params domain.ReturnParams) (*domain.Payment, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Return for unknown order", "order_id", orderID, "error", err)
		return nil, domain.NewPaymentError(domain.ErrCheckoutFailed, "", "ORDER_NOT_FOUND")
	}
	return s.returns.HandleReturn(ctx, order, params)
}

// HandleCancel handles the customer cancelling at the hosted checkout and
// returns the message to show. The session is deleted when its id is known.
func (s *PaymentService) HandleCancel(ctx context.Context, orderID string, params domain.ReturnParams) string {
	s.logger.InfoContext(ctx, "Customer canceled checkout", "order_id", orderID)
	if params.ID != "" {
		if err := s.sessions.Delete(ctx, params.ID); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete checkout session",
				"order_id", orderID, "session_id", params.ID, "error", err)
		}
	}
	return CancelMessage
}

// ProcessWebhook authenticates a webhook and reconciles the charge it names.
func (s *PaymentService) ProcessWebhook(ctx context.Context, n domain.WebhookNotification) (domain.WebhookResult, error) {
	return s.webhooks.ProcessWebhook(ctx, n, nil)
}
