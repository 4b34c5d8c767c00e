package reepay

import "github.com/fitstack/reepay-payments/internal/core/domain"

// Plan is a subscription plan.
type Plan struct {
	Handle         string `json:"handle"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	State          string `json:"state,omitempty"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency,omitempty"`
	IntervalLength int    `json:"interval_length,omitempty"`
	ScheduleType   string `json:"schedule_type,omitempty"`
	Version        int    `json:"version,omitempty"`
}

// Subscription links a customer to a plan.
type Subscription struct {
	Handle          string `json:"handle"`
	Customer        string `json:"customer,omitempty"`
	Plan            string `json:"plan"`
	State           string `json:"state,omitempty"`
	Source          string `json:"source,omitempty"`
	SignupMethod    string `json:"signup_method,omitempty"`
	StartDate       string `json:"start_date,omitempty"`
	NextPeriodStart string `json:"next_period_start,omitempty"`
}

// InvoiceLine is one order line of an invoice.
type InvoiceLine struct {
	Ordertext string  `json:"ordertext"`
	Amount    int64   `json:"amount"`
	Quantity  int     `json:"quantity"`
	VAT       float64 `json:"vat,omitempty"`
}

// Invoice is a Reepay invoice. Charges are invoices without a subscription.
type Invoice struct {
	ID           string        `json:"id,omitempty"`
	Handle       string        `json:"handle"`
	Customer     string        `json:"customer,omitempty"`
	Subscription string        `json:"subscription,omitempty"`
	State        string        `json:"state,omitempty"`
	Amount       int64         `json:"amount,omitempty"`
	Currency     string        `json:"currency,omitempty"`
	DueDate      string        `json:"due,omitempty"`
	OrderLines   []InvoiceLine `json:"order_lines,omitempty"`
}

// AddOn is a plan add-on.
type AddOn struct {
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type,omitempty"`
	State       string `json:"state,omitempty"`
}

// WebhookRequest is one delivery attempt of a webhook.
type WebhookRequest struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	URL      string `json:"url"`
	Created  string `json:"created"`
	Status   int    `json:"status"`
	Response string `json:"response,omitempty"`
	EventID  string `json:"event,omitempty"`
}

// SettleRequest asks Reepay to settle an authorized invoice.
type SettleRequest struct {
	DueDate       string `json:"due_date,omitempty"`
	PaymentMethod string `json:"payment_method"`
}

type cardList struct {
	Cards []domain.Card `json:"cards"`
}
