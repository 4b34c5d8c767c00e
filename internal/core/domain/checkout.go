package domain

// SessionKind selects the checkout session endpoint.
type SessionKind string

const (
	SessionCharge    SessionKind = "charge"
	SessionRecurring SessionKind = "recurring"
)

// SessionCustomer is the customer part of a session order.
type SessionCustomer struct {
	Handle string `json:"handle,omitempty"`
	Email  string `json:"email,omitempty"`
}

// SessionOrder is the inline order of a charge session.
type SessionOrder struct {
	Handle    string           `json:"handle"`
	Amount    int64            `json:"amount"`
	Currency  string           `json:"currency"`
	OrderText string           `json:"ordertext,omitempty"`
	Customer  *SessionCustomer `json:"customer,omitempty"`
}

// CheckoutSessionRequest is the payload sent to session/charge or
// session/recurring. Kind is not serialized; it picks the endpoint.
type CheckoutSessionRequest struct {
	Kind          SessionKind   `json:"-"`
	Order         *SessionOrder `json:"order,omitempty"`
	Invoice       string        `json:"invoice,omitempty"`
	AcceptURL     string        `json:"accept_url"`
	CancelURL     string        `json:"cancel_url"`
	Locale        string        `json:"locale,omitempty"`
	Configuration string        `json:"configuration,omitempty"`
	ButtonText    string        `json:"button_text,omitempty"`
}

// CheckoutSession is the processor's answer to a session request.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Valid reports whether the session can be used for a redirect.
func (s *CheckoutSession) Valid() bool {
	return s != nil && s.ID != "" && s.URL != ""
}

// ReturnParams are the query parameters on the accept/cancel redirect.
type ReturnParams struct {
	ID            string `form:"id"`
	Invoice       string `form:"invoice"`
	Customer      string `form:"customer"`
	Subscription  string `form:"subscription"`
	PaymentMethod string `form:"payment_method"`
	Error         string `form:"error"`
}
