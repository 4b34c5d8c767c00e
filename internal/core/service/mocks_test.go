package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

var errMockAPI = errors.New("mock api error")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memPayments is an in-memory payment store enforcing the
// (remote_id, order_id) unique constraint and the expected-state check.
type memPayments struct {
	mu       sync.Mutex
	payments []domain.Payment
	saves    int

	CreateErr error
	SaveErr   error
	// BeforeCreate runs inside Create, before the constraint check.
	BeforeCreate func(p *domain.Payment)
}

func newMemPayments(payments ...domain.Payment) *memPayments {
	return &memPayments{payments: payments}
}

func (m *memPayments) FindByRemoteID(_ context.Context, remoteID, orderID string) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.RemoteID == remoteID && p.OrderID == orderID {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *memPayments) ListByOrder(_ context.Context, orderID string) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *memPayments) Create(_ context.Context, payment *domain.Payment) error {
	if m.BeforeCreate != nil {
		m.BeforeCreate(payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, p := range m.payments {
		if p.RemoteID == payment.RemoteID && p.OrderID == payment.OrderID {
			return domain.ErrDuplicatePayment
		}
	}
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *memPayments) Save(_ context.Context, payment *domain.Payment, expected domain.PaymentState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for i, p := range m.payments {
		if p.ID == payment.ID && p.State == expected {
			m.payments[i] = *payment
			m.saves++
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

func (m *memPayments) all() []domain.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Payment(nil), m.payments...)
}

type mockCharges struct {
	mu      sync.Mutex
	charges map[string]*domain.Charge
	calls   int
	Err     error
}

func newMockCharges(charges ...*domain.Charge) *mockCharges {
	m := &mockCharges{charges: make(map[string]*domain.Charge)}
	for _, c := range charges {
		m.charges[c.Handle] = c
	}
	return m
}

func (m *mockCharges) GetCharge(_ context.Context, handle string) (*domain.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.charges[handle]
	if !ok {
		return nil, domain.ErrChargeNotFound
	}
	cp := *c
	return &cp, nil
}

type mockOrders struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	placed   []string
	GetErr   error
	PlaceErr error
}

func newMockOrders(orders ...*domain.Order) *mockOrders {
	m := &mockOrders{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrders) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrders) PlaceOrder(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlaceErr != nil {
		return m.PlaceErr
	}
	m.placed = append(m.placed, orderID)
	if o, ok := m.orders[orderID]; ok {
		o.State = domain.OrderPlaced
	}
	return nil
}

type mockCheckout struct {
	Session  *domain.CheckoutSession
	Err      error
	Requests []domain.CheckoutSessionRequest
	Kinds    []domain.SessionKind
	Deleted  []string
}

func (m *mockCheckout) create(kind domain.SessionKind, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	m.Requests = append(m.Requests, req)
	m.Kinds = append(m.Kinds, kind)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

func (m *mockCheckout) CreateChargeSession(_ context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	return m.create(domain.SessionCharge, req)
}

func (m *mockCheckout) CreateRecurringSession(_ context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	return m.create(domain.SessionRecurring, req)
}

func (m *mockCheckout) DeleteSession(_ context.Context, sessionID string) error {
	m.Deleted = append(m.Deleted, sessionID)
	return m.Err
}

type mockNotifier struct {
	mu     sync.Mutex
	events []domain.PaymentEvent
	Err    error
}

func (m *mockNotifier) NotifyPayment(_ context.Context, event domain.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

func (m *mockNotifier) all() []domain.PaymentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PaymentEvent(nil), m.events...)
}

// staticValidator accepts signatures equal to Valid.
type staticValidator struct {
	Valid string
}

func (v staticValidator) ValidateSignature(n domain.WebhookNotification, _ string) bool {
	return n.Signature == v.Valid
}

func testOrder(id string) *domain.Order {
	return &domain.Order{
		ID:         id,
		TotalPrice: domain.MoneyFromMinorUnits(2599, "DKK"),
		Email:      "customer@example.com",
		State:      domain.OrderDraft,
	}
}

func testCharge(handle string, state domain.ChargeState) *domain.Charge {
	return &domain.Charge{
		Handle:      handle,
		State:       state,
		Amount:      2599,
		Currency:    "DKK",
		Transaction: "tx-" + handle,
		Source:      domain.ChargeSource{Type: "card", CardType: "visa"},
	}
}
