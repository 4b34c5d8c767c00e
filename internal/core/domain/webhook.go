package domain

// Webhook event types handled by default.
const (
	EventInvoiceAuthorized = "invoice_authorized"
	EventInvoiceSettled    = "invoice_settled"
)

// WebhookNotification is the JSON body Reepay posts to the webhook endpoint.
// Optional fields are empty when absent.
type WebhookNotification struct {
	ID            string `json:"id" binding:"required"`
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type" binding:"required"`
	Timestamp     string `json:"timestamp" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
	Customer      string `json:"customer,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Subscription  string `json:"subscription,omitempty"`
	Invoice       string `json:"invoice,omitempty"`
	Transaction   string `json:"transaction,omitempty"`
	CreditNote    string `json:"credit_note,omitempty"`
	Credit        string `json:"credit,omitempty"`
}

// WebhookStatus is the outcome of a processed webhook.
type WebhookStatus string

const (
	WebhookProcessed        WebhookStatus = "processed"
	WebhookUnknownOrder     WebhookStatus = "unknown_order"
	WebhookAlreadyProcessed WebhookStatus = "already_processed"
)

// WebhookResult is returned for every webhook acknowledged with 2xx.
type WebhookResult struct {
	Status        WebhookStatus
	InvoiceHandle string
	Payment       *Payment
}

// Message is the short plain-text body returned to the processor.
func (r WebhookResult) Message() string {
	switch r.Status {
	case WebhookUnknownOrder:
		return "Unknown order: " + r.InvoiceHandle
	case WebhookAlreadyProcessed:
		return "Already processed: " + r.InvoiceHandle
	default:
		return "Order received: " + r.InvoiceHandle
	}
}
