package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
	"github.com/fitstack/reepay-payments/internal/logging"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

// WebhookHandler processes a verified notification for a resolved order.
// It returns handled=false for event types it does not care about.
type WebhookHandler func(ctx context.Context, n domain.WebhookNotification, order *domain.Order) (handled bool, payment *domain.Payment, err error)

// WebhookFlow authenticates and dispatches processor webhooks.
type WebhookFlow struct {
	validator ports.WebhookValidator
	resolver  *OrderResolver
	settings  Settings
	handlers  []WebhookHandler
	logger    *slog.Logger
}

// NewWebhookFlow creates a webhook flow. Handlers are tried in order; the
// first one that handles the event wins.
func NewWebhookFlow(validator ports.WebhookValidator, resolver *OrderResolver, settings Settings, logger *slog.Logger, handlers ...WebhookHandler) *WebhookFlow {
	return &WebhookFlow{
		validator: validator,
		resolver:  resolver,
		settings:  settings,
		handlers:  handlers,
		logger:    logger,
	}
}

// InvoiceWebhookHandler reconciles invoice_authorized and invoice_settled
// events against the charge fetched from the processor.
func InvoiceWebhookHandler(charges ports.ChargeAPI, reconciler *Reconciler) WebhookHandler {
	return func(ctx context.Context, n domain.WebhookNotification, order *domain.Order) (bool, *domain.Payment, error) {
		switch n.EventType {
		case domain.EventInvoiceAuthorized, domain.EventInvoiceSettled:
		default:
			return false, nil, nil
		}

		charge, err := charges.GetCharge(ctx, n.Invoice)
		if errors.Is(err, domain.ErrChargeNotFound) {
			return true, nil, domain.NewPaymentError(domain.ErrChargeNotFound, "charge not found: "+n.Invoice, "CHARGE_NOT_FOUND")
		}
		if err != nil {
			return true, nil, domain.NewPaymentError(domain.ErrPaymentGatewayError, "charge lookup failed", "GATEWAY_ERROR")
		}

		payment, err := reconciler.Reconcile(ctx, order, charge)
		return true, payment, err
	}
}

// ProcessWebhook runs one webhook delivery. order may be nil, in which case
// it is resolved from the invoice handle. Any returned error means the
// delivery must be answered with a non-2xx status.
func (f *WebhookFlow) ProcessWebhook(ctx context.Context, n domain.WebhookNotification, order *domain.Order) (domain.WebhookResult, error) {
	ctx = logging.AppendCtx(ctx, slog.String("event_id", n.EventID))
	ctx = logging.AppendCtx(ctx, slog.String("invoice", n.Invoice))
	result := domain.WebhookResult{InvoiceHandle: n.Invoice}

	if !f.validator.ValidateSignature(n, f.settings.WebhookKey) {
		metrics.Webhook("unauthenticated").Inc()
		f.logger.WarnContext(ctx, "Webhook signature check failed", "webhook_id", n.ID)
		return result, domain.NewPaymentError(domain.ErrAuthentication, "signature check failed", "UNAUTHENTICATED")
	}

	if order == nil {
		resolved, err := f.resolver.ResolveOrder(ctx, n.Invoice, f.settings.OrderHandlePrefix)
		if err != nil {
			metrics.Webhook("order_lookup_error").Inc()
			return result, fmt.Errorf("look up order: %w", err)
		}
		if resolved == nil {
			metrics.Webhook("unknown_order").Inc()
			f.logger.WarnContext(ctx, "Could not look up order by handle", "event_type", n.EventType)
			result.Status = domain.WebhookUnknownOrder
			return result, nil
		}
		order = resolved
	}
	ctx = logging.AppendCtx(ctx, slog.String("order_id", order.ID))

	for _, handle := range f.handlers {
		handled, payment, err := handle(ctx, n, order)
		if !handled {
			continue
		}
		result.Payment = payment
		if errors.Is(err, domain.ErrTransitionAlreadyApplied) {
			metrics.Webhook("already_processed").Inc()
			f.logger.InfoContext(ctx, "Webhook redelivery for an already processed payment",
				"event_type", n.EventType, "webhook_id", n.ID)
			result.Status = domain.WebhookAlreadyProcessed
			return result, nil
		}
		if err != nil {
			metrics.Webhook("error").Inc()
			f.logger.ErrorContext(ctx, "Webhook processing failed", "event_type", n.EventType, "error", err)
			return result, err
		}
		metrics.Webhook("processed").Inc()
		f.logger.InfoContext(ctx, "Webhook processed", "event_type", n.EventType)
		result.Status = domain.WebhookProcessed
		return result, nil
	}

	metrics.Webhook("unhandled").Inc()
	f.logger.WarnContext(ctx, "Unhandled webhook event type", "event_type", n.EventType)
	return result, domain.NewPaymentError(domain.ErrUnhandledEvent, "unhandled event type: "+n.EventType, "UNHANDLED_EVENT")
}
