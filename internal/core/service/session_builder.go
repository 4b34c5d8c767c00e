package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

// SessionMutator may change a checkout session request before it is sent,
// e.g. to fill in an invoice handle or a custom order. Mutators run in the
// order they were registered; an error aborts session creation.
type SessionMutator func(ctx context.Context, order *domain.Order, req *domain.CheckoutSessionRequest) error

// SessionBuilder assembles checkout session requests and creates sessions.
type SessionBuilder struct {
	checkout ports.CheckoutAPI
	settings Settings
	mutators []SessionMutator
	logger   *slog.Logger
}

// NewSessionBuilder creates a session builder.
func NewSessionBuilder(checkout ports.CheckoutAPI, settings Settings, logger *slog.Logger, mutators ...SessionMutator) *SessionBuilder {
	return &SessionBuilder{
		checkout: checkout,
		settings: settings,
		mutators: mutators,
		logger:   logger,
	}
}

// Build returns the session request for order.
func (b *SessionBuilder) Build(ctx context.Context, order *domain.Order, returnURL, cancelURL string) (domain.CheckoutSessionRequest, error) {
	req := domain.CheckoutSessionRequest{
		Kind:          b.settings.SessionType,
		Configuration: b.settings.ConfigurationHandle,
		Locale:        b.settings.Locale,
		ButtonText:    b.settings.ButtonText,
		AcceptURL:     returnURL,
		CancelURL:     cancelURL,
	}

	for _, mutate := range b.mutators {
		if err := mutate(ctx, order, &req); err != nil {
			return domain.CheckoutSessionRequest{}, fmt.Errorf("session mutator: %w", err)
		}
	}

	// A charge session names either an inline order or an existing invoice.
	if req.Kind == domain.SessionCharge && req.Order != nil && req.Invoice != "" {
		return domain.CheckoutSessionRequest{}, fmt.Errorf("charge session has both an order and invoice %q: %w",
			req.Invoice, domain.ErrSessionCreation)
	}

	// Recurring sessions are left entirely to mutators.
	if req.Kind == domain.SessionCharge && req.Order == nil && req.Invoice == "" {
		handle := b.settings.OrderHandlePrefix + order.ID
		req.Order = &domain.SessionOrder{
			Handle:    handle,
			Amount:    order.TotalPrice.MinorUnits(),
			Currency:  order.TotalPrice.CurrencyCode,
			OrderText: "Order " + handle,
			Customer:  &domain.SessionCustomer{Email: order.Email},
		}
	}
	return req, nil
}

// Create builds the request and creates the session at the processor.
func (b *SessionBuilder) Create(ctx context.Context, order *domain.Order, returnURL, cancelURL string) (*domain.CheckoutSession, error) {
	req, err := b.Build(ctx, order, returnURL, cancelURL)
	if err != nil {
		b.logger.ErrorContext(ctx, "Could not build checkout session", "order_id", order.ID, "error", err)
		metrics.CheckoutSession(string(b.settings.SessionType), "build_error").Inc()
		return nil, domain.NewPaymentError(domain.ErrSessionCreation, err.Error(), "SESSION_BUILD_ERROR")
	}

	var session *domain.CheckoutSession
	switch req.Kind {
	case domain.SessionRecurring:
		session, err = b.checkout.CreateRecurringSession(ctx, req)
	default:
		session, err = b.checkout.CreateChargeSession(ctx, req)
	}
	if err != nil {
		b.logger.ErrorContext(ctx, "Could not create checkout session", "order_id", order.ID, "error", err)
		metrics.CheckoutSession(string(req.Kind), "api_error").Inc()
		return nil, domain.NewPaymentError(domain.ErrSessionCreation, "processor request failed", "SESSION_API_ERROR")
	}
	if !session.Valid() {
		b.logger.ErrorContext(ctx, "No session returned from API", "order_id", order.ID)
		metrics.CheckoutSession(string(req.Kind), "empty").Inc()
		return nil, domain.NewPaymentError(domain.ErrSessionCreation, "no session returned from API", "SESSION_EMPTY")
	}

	metrics.CheckoutSession(string(req.Kind), "created").Inc()
	b.logger.InfoContext(ctx, "Created checkout session", "order_id", order.ID, "session_id", session.ID)
	return session, nil
}

// Delete removes a checkout session, e.g. after the customer cancelled.
func (b *SessionBuilder) Delete(ctx context.Context, sessionID string) error {
	return b.checkout.DeleteSession(ctx, sessionID)
}
