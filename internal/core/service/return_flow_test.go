package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

func newTestReturnFlow(charges *mockCharges, store *memPayments) *ReturnFlow {
	return NewReturnFlow(charges, NewReconciler(store, nil, discardLogger(), false), discardLogger())
}

// A customer returns with an authorized invoice and gets a new payment.
func TestReturnFlow_AuthorizedInvoiceCreatesPayment(t *testing.T) {
	store := newMemPayments()
	flow := newTestReturnFlow(newMockCharges(testCharge("inv_1", domain.ChargeAuthorized)), store)

	payment, err := flow.HandleReturn(context.Background(), testOrder("42"), domain.ReturnParams{Invoice: "inv_1"})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentAuthorization, payment.State)
	assert.Len(t, store.all(), 1)
}

func TestReturnFlow_Failures(t *testing.T) {
	tests := []struct {
		name    string
		charges *mockCharges
		params  domain.ReturnParams
		code    string
	}{
		{
			name:    "error param",
			charges: newMockCharges(testCharge("inv_1", domain.ChargeAuthorized)),
			params:  domain.ReturnParams{Invoice: "inv_1", Error: "credit_card_expired"},
			code:    "RETURN_ERROR",
		},
		{
			name:    "unknown charge",
			charges: newMockCharges(),
			params:  domain.ReturnParams{Invoice: "inv_1"},
			code:    "CHARGE_NOT_FOUND",
		},
		{
			name:    "gateway error",
			charges: &mockCharges{Err: errMockAPI},
			params:  domain.ReturnParams{Invoice: "inv_1"},
			code:    "GATEWAY_ERROR",
		},
		{
			name:    "pending charge",
			charges: newMockCharges(testCharge("inv_1", domain.ChargePending)),
			params:  domain.ReturnParams{Invoice: "inv_1"},
			code:    "TAMPERED_RETURN",
		},
		{
			name:    "failed charge",
			charges: newMockCharges(testCharge("inv_1", domain.ChargeFailed)),
			params:  domain.ReturnParams{Invoice: "inv_1"},
			code:    "TAMPERED_RETURN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemPayments()
			flow := newTestReturnFlow(tt.charges, store)

			payment, err := flow.HandleReturn(context.Background(), testOrder("42"), tt.params)
			assert.Nil(t, payment)
			require.ErrorIs(t, err, domain.ErrCheckoutFailed)
			assert.Equal(t, domain.ErrCheckoutFailed.Error(), err.Error())

			var pe *domain.PaymentError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.code, pe.Code)
			assert.Empty(t, store.all())
		})
	}
}

func TestReturnFlow_NoInvoice(t *testing.T) {
	charges := newMockCharges()
	flow := newTestReturnFlow(charges, newMemPayments())

	payment, err := flow.HandleReturn(context.Background(), testOrder("42"), domain.ReturnParams{})
	assert.NoError(t, err)
	assert.Nil(t, payment)
	assert.Zero(t, charges.calls)
}

func TestReturnFlow_WebhookAlreadyProcessed(t *testing.T) {
	store := newMemPayments()
	charges := newMockCharges(testCharge("inv_1", domain.ChargeAuthorized))
	flow := newTestReturnFlow(charges, store)
	order := testOrder("42")

	_, err := flow.HandleReturn(context.Background(), order, domain.ReturnParams{Invoice: "inv_1"})
	require.NoError(t, err)

	payment, err := flow.HandleReturn(context.Background(), order, domain.ReturnParams{Invoice: "inv_1"})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentAuthorization, payment.State)
	assert.Equal(t, 1, store.saves)
}

// The charge was fetched while authorized, but a settled webhook captured
// the payment before the return got to reconcile it.
func TestReturnFlow_CapturedByWebhookFirst(t *testing.T) {
	order := testOrder("42")
	charge := testCharge("inv_1", domain.ChargeAuthorized)
	store := newMemPayments(domain.Payment{
		OrderID:  order.ID,
		RemoteID: RemoteID(*charge),
		State:    domain.PaymentCompleted,
	})
	flow := newTestReturnFlow(newMockCharges(charge), store)

	payment, err := flow.HandleReturn(context.Background(), order, domain.ReturnParams{Invoice: "inv_1"})
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentCompleted, payment.State)
	assert.Zero(t, store.saves)
}

func TestReturnFlow_InvalidTransitionIsGenericFailure(t *testing.T) {
	order := testOrder("42")
	charge := testCharge("inv_1", domain.ChargeSettled)
	store := newMemPayments(domain.Payment{
		OrderID:  order.ID,
		RemoteID: RemoteID(*charge),
		State:    domain.PaymentAuthorizationVoided,
	})
	flow := newTestReturnFlow(newMockCharges(charge), store)

	_, err := flow.HandleReturn(context.Background(), order, domain.ReturnParams{Invoice: "inv_1"})
	require.ErrorIs(t, err, domain.ErrCheckoutFailed)
	assert.NotErrorIs(t, err, domain.ErrInvalidTransition)
}
