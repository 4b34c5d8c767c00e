package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
	"github.com/fitstack/reepay-payments/internal/logging"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

// Reconciler maps processor charges onto merchant payments. Both the return
// flow and the webhook flow go through Reconcile.
type Reconciler struct {
	payments ports.PaymentRepository
	notifier ports.PaymentNotifier
	logger   *slog.Logger
	testMode bool
	locks    *keyedMutex
}

// NewReconciler creates a reconciler. notifier may be nil.
func NewReconciler(payments ports.PaymentRepository, notifier ports.PaymentNotifier, logger *slog.Logger, testMode bool) *Reconciler {
	return &Reconciler{
		payments: payments,
		notifier: notifier,
		logger:   logger,
		testMode: testMode,
		locks:    newKeyedMutex(),
	}
}

// RemoteID returns the key a charge is matched to a payment by.
// Settled charges don't always carry an auth transaction, so they fall back
// to the charge transaction.
func RemoteID(charge domain.Charge) string {
	if charge.State == domain.ChargeSettled && charge.Source.AuthTransaction != "" {
		return charge.Source.AuthTransaction
	}
	return charge.Transaction
}

// Reconcile finds or creates the payment for (remote id, order) and applies
// the transition implied by the charge state. The returned payment is
// non-nil whenever a payment record exists, even if the transition failed.
func (r *Reconciler) Reconcile(ctx context.Context, order *domain.Order, charge *domain.Charge) (*domain.Payment, error) {
	remoteID := RemoteID(*charge)
	ctx = logging.AppendCtx(ctx, slog.String("remote_id", remoteID))

	unlock := r.locks.Lock(remoteID + "|" + order.ID)
	defer unlock()

	payment, err := r.findOrCreate(ctx, order, charge, remoteID)
	if err != nil {
		return nil, err
	}

	if err := r.ApplyChargeState(ctx, payment, charge); err != nil {
		return payment, err
	}
	return payment, nil
}

func (r *Reconciler) lookup(ctx context.Context, remoteID, orderID string) (*domain.Payment, error) {
	payments, err := r.payments.FindByRemoteID(ctx, remoteID, orderID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	switch len(payments) {
	case 0:
		return nil, nil
	case 1:
		return payments[0], nil
	default:
		r.logger.ErrorContext(ctx, "More than one payment matches remote id",
			"order_id", orderID, "count", len(payments))
		return nil, domain.NewPaymentError(domain.ErrDataIntegrity,
			fmt.Sprintf("%d payments for remote id %s on order %s", len(payments), remoteID, orderID),
			"DATA_INTEGRITY")
	}
}

func (r *Reconciler) findOrCreate(ctx context.Context, order *domain.Order, charge *domain.Charge, remoteID string) (*domain.Payment, error) {
	payment, err := r.lookup(ctx, remoteID, order.ID)
	if err != nil || payment != nil {
		return payment, err
	}

	now := time.Now().UTC()
	payment = &domain.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		RemoteID:    remoteID,
		RemoteState: string(charge.State),
		Amount:      charge.Price(),
		PaymentType: charge.PaymentType(),
		State:       domain.PaymentNew,
		Test:        r.testMode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = r.payments.Create(ctx, payment)
	if errors.Is(err, domain.ErrDuplicatePayment) {
		// Created by a concurrent request in another process.
		r.logger.InfoContext(ctx, "Payment created concurrently, re-fetching", "order_id", order.ID)
		payment, err = r.lookup(ctx, remoteID, order.ID)
		if err == nil && payment == nil {
			err = domain.ErrPaymentNotFound
		}
		return payment, err
	}
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	r.logger.InfoContext(ctx, "Created payment", "payment_id", payment.ID.String(),
		"order_id", order.ID, "amount", payment.Amount.String())
	return payment, nil
}

// ApplyChargeState applies the transition implied by charge.State and
// persists the payment. Illegal transitions return a *domain.TransitionError
// and leave the payment unchanged.
func (r *Reconciler) ApplyChargeState(ctx context.Context, payment *domain.Payment, charge *domain.Charge) error {
	transition, ok := domain.TransitionForCharge(charge.State)
	if !ok {
		err := &domain.TransitionError{
			From:        payment.State,
			ChargeState: charge.State,
			PaymentID:   payment.ID.String(),
		}
		r.logTransitionError(ctx, err)
		return err
	}

	from := payment.State
	if err := payment.ApplyTransition(transition); err != nil {
		var te *domain.TransitionError
		if errors.As(err, &te) {
			te.ChargeState = charge.State
		}
		r.logTransitionError(ctx, err)
		return err
	}

	previousRemoteState := payment.RemoteState
	payment.RemoteState = string(charge.State)

	if err := r.payments.Save(ctx, payment, from); err != nil {
		payment.State = from
		payment.RemoteState = previousRemoteState
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return r.staleTransition(ctx, payment, charge, transition)
		}
		metrics.Reconcile(string(transition), "save_error").Inc()
		return fmt.Errorf("save payment %s: %w", payment.ID, err)
	}

	metrics.Reconcile(string(transition), "applied").Inc()
	r.logger.InfoContext(ctx, "Applied payment transition",
		"payment_id", payment.ID.String(),
		"transition", string(transition),
		"from", string(from),
		"to", string(payment.State),
		"charge_state", string(charge.State))

	r.notify(ctx, payment, transition)
	return nil
}

// staleTransition handles a payment moved by another process between load
// and save: the transition is re-evaluated against the stored state.
func (r *Reconciler) staleTransition(ctx context.Context, payment *domain.Payment, charge *domain.Charge, transition domain.TransitionID) error {
	fresh, err := r.lookup(ctx, payment.RemoteID, payment.OrderID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return fmt.Errorf("payment %s vanished: %w", payment.ID, domain.ErrPaymentNotFound)
	}
	*payment = *fresh

	candidate := *fresh
	if err := candidate.ApplyTransition(transition); err != nil {
		var te *domain.TransitionError
		if errors.As(err, &te) {
			te.ChargeState = charge.State
		}
		r.logTransitionError(ctx, err)
		return err
	}
	// Still legal from the stored state, so try again.
	return r.ApplyChargeState(ctx, payment, charge)
}

func (r *Reconciler) logTransitionError(ctx context.Context, err error) {
	var te *domain.TransitionError
	if !errors.As(err, &te) {
		return
	}
	if te.AlreadyApplied {
		metrics.Reconcile(string(te.Transition), "already_applied").Inc()
		r.logger.WarnContext(ctx, "Payment transition already applied",
			"payment_id", te.PaymentID,
			"transition", string(te.Transition),
			"payment_state", string(te.From),
			"charge_state", string(te.ChargeState))
		return
	}
	metrics.Reconcile(string(te.Transition), "invalid").Inc()
	r.logger.ErrorContext(ctx, "Invalid payment transition",
		"payment_id", te.PaymentID,
		"transition", string(te.Transition),
		"payment_state", string(te.From),
		"charge_state", string(te.ChargeState))
}

func (r *Reconciler) notify(ctx context.Context, payment *domain.Payment, transition domain.TransitionID) {
	if r.notifier == nil {
		return
	}
	event := domain.PaymentEvent{
		Event:       eventForTransition(transition),
		PaymentID:   payment.ID.String(),
		OrderID:     payment.OrderID,
		RemoteID:    payment.RemoteID,
		RemoteState: payment.RemoteState,
		State:       string(payment.State),
		Amount:      payment.Amount.Number.StringFixed(2),
		Currency:    payment.Amount.CurrencyCode,
		PaymentType: payment.PaymentType,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.notifier.NotifyPayment(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish payment event",
			"payment_id", event.PaymentID, "event", event.Event, "error", err)
	}
}

// eventForTransition maps a transition to the published event name.
func eventForTransition(transition domain.TransitionID) string {
	switch transition {
	case domain.TransitionAuthorize:
		return "payment.authorized"
	case domain.TransitionCapture:
		return "payment.completed"
	case domain.TransitionVoid:
		return "payment.voided"
	default:
		return "payment.updated"
	}
}
