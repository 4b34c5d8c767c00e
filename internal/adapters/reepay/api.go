package reepay

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// API is the Reepay management API client. It implements ports.ChargeAPI.
type API struct {
	c *client
}

// NewAPI creates a management API client. An empty baseURL means the
// production endpoint.
func NewAPI(baseURL, privateKey string, timeout time.Duration) *API {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &API{c: newClient(baseURL, privateKey, timeout)}
}

// GetCharge returns the charge with the given handle, or
// domain.ErrChargeNotFound.
func (a *API) GetCharge(ctx context.Context, handle string) (*domain.Charge, error) {
	charge, err := do[domain.Charge](ctx, a.c, http.MethodGet, "charge/"+url.PathEscape(handle), nil)
	if IsNotFound(err) {
		return nil, domain.ErrChargeNotFound
	}
	if err != nil {
		return nil, err
	}
	return charge, nil
}

// GetCustomer returns a customer by handle.
func (a *API) GetCustomer(ctx context.Context, handle string) (*domain.Customer, error) {
	return do[domain.Customer](ctx, a.c, http.MethodGet, "customer/"+url.PathEscape(handle), nil)
}

// CreateCustomer creates a customer.
func (a *API) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	return do[domain.Customer](ctx, a.c, http.MethodPost, "customer", customer)
}

// GetCustomerPaymentMethods returns the saved cards of a customer.
func (a *API) GetCustomerPaymentMethods(ctx context.Context, customerHandle string) ([]domain.Card, error) {
	list, err := do[cardList](ctx, a.c, http.MethodGet, "customer/"+url.PathEscape(customerHandle)+"/payment_method", nil)
	if err != nil {
		return nil, err
	}
	return list.Cards, nil
}

// ListPlans returns the account's plans.
func (a *API) ListPlans(ctx context.Context, onlyActive bool) ([]Plan, error) {
	plans, err := do[[]Plan](ctx, a.c, http.MethodGet, "plan?only_active="+strconv.FormatBool(onlyActive), nil)
	if err != nil {
		return nil, err
	}
	return *plans, nil
}

// GetPlan returns a plan by handle.
func (a *API) GetPlan(ctx context.Context, handle string) (*Plan, error) {
	return do[Plan](ctx, a.c, http.MethodGet, "plan/"+url.PathEscape(handle), nil)
}

// CreatePlan creates a plan.
func (a *API) CreatePlan(ctx context.Context, plan Plan) (*Plan, error) {
	return do[Plan](ctx, a.c, http.MethodPost, "plan", plan)
}

// CancelPlan deletes a plan.
func (a *API) CancelPlan(ctx context.Context, handle string) (*Plan, error) {
	return do[Plan](ctx, a.c, http.MethodPost, "plan/"+url.PathEscape(handle)+"/cancel", nil)
}

// CreateSubscription creates a subscription.
func (a *API) CreateSubscription(ctx context.Context, sub Subscription) (*Subscription, error) {
	return do[Subscription](ctx, a.c, http.MethodPost, "subscription", sub)
}

// GetSubscription returns a subscription by handle.
func (a *API) GetSubscription(ctx context.Context, handle string) (*Subscription, error) {
	return do[Subscription](ctx, a.c, http.MethodGet, "subscription/"+url.PathEscape(handle), nil)
}

// CancelSubscription cancels a subscription at the end of its period.
func (a *API) CancelSubscription(ctx context.Context, handle string) (*Subscription, error) {
	return do[Subscription](ctx, a.c, http.MethodPost, "subscription/"+url.PathEscape(handle)+"/cancel", nil)
}

// CreateInvoice creates a one-off invoice on a subscription.
func (a *API) CreateInvoice(ctx context.Context, subscription string, invoice Invoice) (*Invoice, error) {
	return do[Invoice](ctx, a.c, http.MethodPost, "subscription/"+url.PathEscape(subscription)+"/invoice", invoice)
}

// GetInvoice returns an invoice by id or handle.
func (a *API) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return do[Invoice](ctx, a.c, http.MethodGet, "invoice/"+url.PathEscape(id), nil)
}

// SettleInvoice settles an authorized invoice. An empty paymentMethod
// means "auto".
func (a *API) SettleInvoice(ctx context.Context, handle, dueDate, paymentMethod string) (*Invoice, error) {
	if paymentMethod == "" {
		paymentMethod = "auto"
	}
	req := SettleRequest{DueDate: dueDate, PaymentMethod: paymentMethod}
	return do[Invoice](ctx, a.c, http.MethodPost, "invoice/"+url.PathEscape(handle)+"/settle", req)
}

// CancelInvoice cancels an invoice.
func (a *API) CancelInvoice(ctx context.Context, id string) (*Invoice, error) {
	return do[Invoice](ctx, a.c, http.MethodPost, "invoice/"+url.PathEscape(id)+"/cancel", nil)
}

// GetAddOn returns an add-on by handle.
func (a *API) GetAddOn(ctx context.Context, handle string) (*AddOn, error) {
	return do[AddOn](ctx, a.c, http.MethodGet, "add_on/"+url.PathEscape(handle), nil)
}

// CreateAddOn creates an add-on.
func (a *API) CreateAddOn(ctx context.Context, addOn AddOn) (*AddOn, error) {
	return do[AddOn](ctx, a.c, http.MethodPost, "add_on", addOn)
}

// UpdateAddOn replaces an add-on.
func (a *API) UpdateAddOn(ctx context.Context, handle string, addOn AddOn) (*AddOn, error) {
	return do[AddOn](ctx, a.c, http.MethodPut, "add_on/"+url.PathEscape(handle), addOn)
}

// DeleteAddOn deletes an add-on.
func (a *API) DeleteAddOn(ctx context.Context, handle string) (*AddOn, error) {
	return do[AddOn](ctx, a.c, http.MethodDelete, "add_on/"+url.PathEscape(handle), nil)
}

// GetWebhookRequests returns the delivery attempts of a webhook.
func (a *API) GetWebhookRequests(ctx context.Context, id string) ([]WebhookRequest, error) {
	requests, err := do[[]WebhookRequest](ctx, a.c, http.MethodGet, "webhook/"+url.PathEscape(id)+"/request", nil)
	if err != nil {
		return nil, err
	}
	return *requests, nil
}
