package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

func testSettings() Settings {
	return Settings{
		WebhookKey:          "webhook-secret",
		SessionType:         domain.SessionCharge,
		ConfigurationHandle: "default",
		Locale:              "da_DK",
		OrderHandlePrefix:   "99-",
		ButtonText:          "Pay now",
	}
}

func TestSessionBuilder_Build_DefaultOrder(t *testing.T) {
	b := NewSessionBuilder(&mockCheckout{}, testSettings(), discardLogger())

	req, err := b.Build(context.Background(), testOrder("42"), "https://shop/return", "https://shop/cancel")
	require.NoError(t, err)

	assert.Equal(t, domain.SessionCharge, req.Kind)
	assert.Equal(t, "default", req.Configuration)
	assert.Equal(t, "da_DK", req.Locale)
	assert.Equal(t, "Pay now", req.ButtonText)
	assert.Equal(t, "https://shop/return", req.AcceptURL)
	assert.Equal(t, "https://shop/cancel", req.CancelURL)
	assert.Empty(t, req.Invoice)

	require.NotNil(t, req.Order)
	assert.Equal(t, "99-42", req.Order.Handle)
	assert.Equal(t, int64(2599), req.Order.Amount)
	assert.Equal(t, "DKK", req.Order.Currency)
	assert.Equal(t, "Order 99-42", req.Order.OrderText)
	require.NotNil(t, req.Order.Customer)
	assert.Equal(t, "customer@example.com", req.Order.Customer.Email)
}

func TestSessionBuilder_Build_RoundsToMinorUnits(t *testing.T) {
	b := NewSessionBuilder(&mockCheckout{}, testSettings(), discardLogger())
	order := testOrder("7")
	price, err := domain.NewMoney("10.005", "EUR")
	require.NoError(t, err)
	order.TotalPrice = price

	req, err := b.Build(context.Background(), order, "r", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), req.Order.Amount)
}

func TestSessionBuilder_Build_MutatorInvoiceSkipsOrder(t *testing.T) {
	var seen []string
	first := func(_ context.Context, _ *domain.Order, req *domain.CheckoutSessionRequest) error {
		seen = append(seen, "first")
		req.Invoice = "inv_existing"
		return nil
	}
	second := func(_ context.Context, _ *domain.Order, req *domain.CheckoutSessionRequest) error {
		seen = append(seen, "second")
		req.Locale = "en_GB"
		return nil
	}
	b := NewSessionBuilder(&mockCheckout{}, testSettings(), discardLogger(), first, second)

	req, err := b.Build(context.Background(), testOrder("42"), "r", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, seen)
	assert.Equal(t, "inv_existing", req.Invoice)
	assert.Equal(t, "en_GB", req.Locale)
	assert.Nil(t, req.Order)
}

func TestSessionBuilder_Build_MutatorError(t *testing.T) {
	failing := func(context.Context, *domain.Order, *domain.CheckoutSessionRequest) error {
		return errors.New("boom")
	}
	b := NewSessionBuilder(&mockCheckout{}, testSettings(), discardLogger(), failing)

	_, err := b.Build(context.Background(), testOrder("42"), "r", "c")
	assert.ErrorContains(t, err, "boom")
}

func TestSessionBuilder_Build_OrderAndInvoiceRejected(t *testing.T) {
	both := func(_ context.Context, order *domain.Order, req *domain.CheckoutSessionRequest) error {
		req.Invoice = "inv_x"
		req.Order = &domain.SessionOrder{Handle: "99-" + order.ID, Amount: 2599, Currency: "DKK"}
		return nil
	}
	checkout := &mockCheckout{Session: &domain.CheckoutSession{ID: "cs_1", URL: "u"}}
	b := NewSessionBuilder(checkout, testSettings(), discardLogger(), both)

	_, err := b.Build(context.Background(), testOrder("42"), "r", "c")
	require.ErrorIs(t, err, domain.ErrSessionCreation)

	session, err := b.Create(context.Background(), testOrder("42"), "r", "c")
	assert.Nil(t, session)
	var pe *domain.PaymentError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "SESSION_BUILD_ERROR", pe.Code)
	assert.Empty(t, checkout.Kinds)
}

func TestSessionBuilder_Build_RecurringLeavesOrderEmpty(t *testing.T) {
	settings := testSettings()
	settings.SessionType = domain.SessionRecurring
	b := NewSessionBuilder(&mockCheckout{}, settings, discardLogger())

	req, err := b.Build(context.Background(), testOrder("42"), "r", "c")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionRecurring, req.Kind)
	assert.Nil(t, req.Order)
}

func TestSessionBuilder_Create(t *testing.T) {
	t.Run("charge session", func(t *testing.T) {
		checkout := &mockCheckout{Session: &domain.CheckoutSession{ID: "cs_1", URL: "https://checkout.reepay.com/#/cs_1"}}
		b := NewSessionBuilder(checkout, testSettings(), discardLogger())

		session, err := b.Create(context.Background(), testOrder("42"), "r", "c")
		require.NoError(t, err)
		assert.Equal(t, "cs_1", session.ID)
		assert.Equal(t, []domain.SessionKind{domain.SessionCharge}, checkout.Kinds)
	})

	t.Run("recurring session", func(t *testing.T) {
		settings := testSettings()
		settings.SessionType = domain.SessionRecurring
		checkout := &mockCheckout{Session: &domain.CheckoutSession{ID: "cs_2", URL: "u"}}
		b := NewSessionBuilder(checkout, settings, discardLogger())

		_, err := b.Create(context.Background(), testOrder("42"), "r", "c")
		require.NoError(t, err)
		assert.Equal(t, []domain.SessionKind{domain.SessionRecurring}, checkout.Kinds)
	})

	t.Run("api error", func(t *testing.T) {
		b := NewSessionBuilder(&mockCheckout{Err: errMockAPI}, testSettings(), discardLogger())

		session, err := b.Create(context.Background(), testOrder("42"), "r", "c")
		assert.Nil(t, session)
		assert.ErrorIs(t, err, domain.ErrSessionCreation)
		assert.NotContains(t, err.Error(), errMockAPI.Error())
	})

	t.Run("empty session", func(t *testing.T) {
		b := NewSessionBuilder(&mockCheckout{Session: &domain.CheckoutSession{}}, testSettings(), discardLogger())

		_, err := b.Create(context.Background(), testOrder("42"), "r", "c")
		var pe *domain.PaymentError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "SESSION_EMPTY", pe.Code)
		assert.ErrorIs(t, err, domain.ErrSessionCreation)
	})

	t.Run("nil session", func(t *testing.T) {
		b := NewSessionBuilder(&mockCheckout{}, testSettings(), discardLogger())

		_, err := b.Create(context.Background(), testOrder("42"), "r", "c")
		assert.ErrorIs(t, err, domain.ErrSessionCreation)
	})
}

func TestOrderResolver_ResolveOrder(t *testing.T) {
	orders := newMockOrders(testOrder("42"))
	r := NewOrderResolver(orders)
	ctx := context.Background()

	order, err := r.ResolveOrder(ctx, "99-42", "99-")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "42", order.ID)

	order, err = r.ResolveOrder(ctx, "42", "")
	require.NoError(t, err)
	require.NotNil(t, order)

	for _, handle := range []string{"42", "99-", "98-42", "99-43", ""} {
		order, err := r.ResolveOrder(ctx, handle, "99-")
		assert.NoError(t, err, handle)
		assert.Nil(t, order, handle)
	}

	orders.GetErr = errMockAPI
	_, err = r.ResolveOrder(ctx, "99-42", "99-")
	assert.ErrorIs(t, err, errMockAPI)
}
