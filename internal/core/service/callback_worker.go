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

// CallbackWorker re-drives reconciliation for queued orders and places
// orders still stuck in draft after a successful payment.
type CallbackWorker struct {
	orders            ports.OrderRepository
	payments          ports.PaymentRepository
	charges           ports.ChargeAPI
	reconciler        *Reconciler
	disableTransition bool
	logger            *slog.Logger
}

// NewCallbackWorker creates a callback worker.
func NewCallbackWorker(
	orders ports.OrderRepository,
	payments ports.PaymentRepository,
	charges ports.ChargeAPI,
	reconciler *Reconciler,
	disableTransition bool,
	logger *slog.Logger,
) *CallbackWorker {
	return &CallbackWorker{
		orders:            orders,
		payments:          payments,
		charges:           charges,
		reconciler:        reconciler,
		disableTransition: disableTransition,
		logger:            logger,
	}
}

// Process handles one queue item. Failures are returned to the queue
// infrastructure, which owns retries.
func (w *CallbackWorker) Process(ctx context.Context, item domain.CallbackItem) error {
	ctx = logging.AppendCtx(ctx, slog.String("order_id", item.OrderID))
	ctx = logging.AppendCtx(ctx, slog.String("invoice", item.InvoiceHandle))

	err := w.process(ctx, item)
	if err != nil {
		metrics.Callback("error").Inc()
		w.logger.ErrorContext(ctx, "Callback item failed", "error", err)
		return err
	}
	metrics.Callback("success").Inc()
	return nil
}

func (w *CallbackWorker) process(ctx context.Context, item domain.CallbackItem) error {
	order, err := w.orders.GetOrder(ctx, item.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", item.OrderID, err)
	}

	charge, err := w.charges.GetCharge(ctx, item.InvoiceHandle)
	if err != nil {
		return fmt.Errorf("charge %s: %w", item.InvoiceHandle, err)
	}

	if order.State != domain.OrderDraft {
		w.logger.InfoContext(ctx, "Order already left draft, nothing to do", "state", string(order.State))
		return nil
	}
	if w.disableTransition {
		w.logger.InfoContext(ctx, "Callback transition disabled, skipping order")
		return nil
	}

	existing, err := w.payments.ListByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}
	if len(existing) == 0 {
		_, err := w.reconciler.Reconcile(ctx, order, charge)
		if err != nil && !errors.Is(err, domain.ErrTransitionAlreadyApplied) {
			return fmt.Errorf("reconcile: %w", err)
		}
	}

	w.logger.InfoContext(ctx, "Apply placed transition")
	if err := w.orders.PlaceOrder(ctx, order.ID); err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	return nil
}
