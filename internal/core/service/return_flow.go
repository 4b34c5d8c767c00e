package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

// ReturnFlow handles the customer coming back from the hosted checkout.
type ReturnFlow struct {
	charges    ports.ChargeAPI
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewReturnFlow creates a return flow.
func NewReturnFlow(charges ports.ChargeAPI, reconciler *Reconciler, logger *slog.Logger) *ReturnFlow {
	return &ReturnFlow{charges: charges, reconciler: reconciler, logger: logger}
}

// checkoutFailed logs the real reason and returns the generic customer error.
func (f *ReturnFlow) checkoutFailed(ctx context.Context, code, reason string, args ...any) error {
	f.logger.ErrorContext(ctx, reason, append(args, "code", code)...)
	metrics.Return(code).Inc()
	return domain.NewPaymentError(domain.ErrCheckoutFailed, "", code)
}

// HandleReturn verifies the charge named in the return URL and reconciles
// it. A return without an invoice handle is accepted without a payment.
func (f *ReturnFlow) HandleReturn(ctx context.Context, order *domain.Order, params domain.ReturnParams) (*domain.Payment, error) {
	if params.Error != "" {
		return nil, f.checkoutFailed(ctx, "RETURN_ERROR", "Error on return url", "error", params.Error)
	}

	if params.Invoice == "" {
		metrics.Return("no_invoice").Inc()
		return nil, nil
	}

	charge, err := f.charges.GetCharge(ctx, params.Invoice)
	if errors.Is(err, domain.ErrChargeNotFound) {
		return nil, f.checkoutFailed(ctx, "CHARGE_NOT_FOUND", "Reepay charge not found", "invoice", params.Invoice)
	}
	if err != nil {
		return nil, f.checkoutFailed(ctx, "GATEWAY_ERROR", "Reepay charge lookup failed",
			"invoice", params.Invoice, "error", err)
	}

	// The return url can be tampered with, so trust only the charge state.
	if charge.State != domain.ChargeAuthorized && charge.State != domain.ChargeSettled {
		return nil, f.checkoutFailed(ctx, "TAMPERED_RETURN", "Possible attempt at tampering with return url",
			"invoice", params.Invoice, "charge_state", string(charge.State))
	}

	payment, err := f.reconciler.Reconcile(ctx, order, charge)
	if errors.Is(err, domain.ErrTransitionAlreadyApplied) || superseded(err) {
		// The webhook got there first.
		metrics.Return("already_processed").Inc()
		return payment, nil
	}
	if err != nil {
		return nil, f.checkoutFailed(ctx, "RECONCILE_ERROR", "Could not reconcile payment",
			"invoice", params.Invoice, "error", err)
	}

	metrics.Return("success").Inc()
	return payment, nil
}

func superseded(err error) bool {
	var te *domain.TransitionError
	return errors.As(err, &te) && te.Superseded()
}
