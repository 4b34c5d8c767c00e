// Package domain contains the core business entities for the payment service.
// This is the innermost layer - no dependencies on adapters or transport.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChargeState is the processor-side state of a charge.
type ChargeState string

const (
	ChargeCreated    ChargeState = "created"
	ChargePending    ChargeState = "pending"
	ChargeAuthorized ChargeState = "authorized"
	ChargeSettled    ChargeState = "settled"
	ChargeFailed     ChargeState = "failed"
	ChargeCancelled  ChargeState = "cancelled"
)

// ChargeSource describes how a charge was paid.
type ChargeSource struct {
	Type            string `json:"type"`
	Card            string `json:"card,omitempty"`
	CardType        string `json:"card_type,omitempty"`
	AuthTransaction string `json:"auth_transaction,omitempty"`
}

// Charge mirrors the Reepay charge resource. Amount is in minor units.
type Charge struct {
	Handle      string       `json:"handle"`
	State       ChargeState  `json:"state"`
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Transaction string       `json:"transaction"`
	Source      ChargeSource `json:"source"`
}

// Price converts the charge amount to the merchant's decimal representation.
func (c Charge) Price() Money {
	return MoneyFromMinorUnits(c.Amount, c.Currency)
}

// PaymentType returns the card type for card payments and the raw source
// type for everything else (mobilepay, applepay, ...).
func (c Charge) PaymentType() string {
	switch c.Source.Type {
	case "card", "card_token":
		return c.Source.CardType
	default:
		return c.Source.Type
	}
}

// Customer mirrors the Reepay customer resource.
type Customer struct {
	Handle    string `json:"handle"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Card mirrors a saved card payment method.
type Card struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Customer string `json:"customer"`
	CardType string `json:"card_type"`
}

// OrderState is the checkout state of a merchant order.
type OrderState string

const (
	OrderDraft     OrderState = "draft"
	OrderPlaced    OrderState = "placed"
	OrderCompleted OrderState = "completed"
	OrderCanceled  OrderState = "canceled"
)

// Order is the merchant order as seen by the payment service.
// The commerce core owns it; the payment service never persists it.
type Order struct {
	ID           string     `json:"order_id"`
	TotalPrice   Money      `json:"total_price"`
	Email        string     `json:"mail"`
	State        OrderState `json:"state"`
	CheckoutStep string     `json:"checkout_step,omitempty"`
}

// Payment is the merchant-side payment record for one processor transaction.
// (RemoteID, OrderID) is unique.
type Payment struct {
	ID          uuid.UUID    `json:"id"`
	OrderID     string       `json:"order_id"`
	RemoteID    string       `json:"remote_id"`
	RemoteState string       `json:"remote_state"`
	Amount      Money        `json:"amount"`
	PaymentType string       `json:"payment_type"`
	State       PaymentState `json:"state"`
	Test        bool         `json:"test"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PaymentEvent is published after a payment changed state.
type PaymentEvent struct {
	Event       string `json:"event"`
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id"`
	RemoteID    string `json:"remote_id"`
	RemoteState string `json:"remote_state"`
	State       string `json:"state"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	PaymentType string `json:"payment_type"`
	Timestamp   string `json:"timestamp"`
}

// CallbackItem is a queued request to re-drive reconciliation for an order.
type CallbackItem struct {
	OrderID       string `json:"order_id"`
	InvoiceHandle string `json:"invoice_handle"`
}
