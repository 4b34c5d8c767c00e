package reepay

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// CheckoutAPI is the Reepay checkout API client. It implements
// ports.CheckoutAPI.
type CheckoutAPI struct {
	c *client
}

// NewCheckoutAPI creates a checkout API client. An empty baseURL means the
// production endpoint.
func NewCheckoutAPI(baseURL, privateKey string, timeout time.Duration) *CheckoutAPI {
	if baseURL == "" {
		baseURL = DefaultCheckoutAPIURL
	}
	return &CheckoutAPI{c: newClient(baseURL, privateKey, timeout)}
}

// CreateChargeSession creates a one-off charge session.
func (a *CheckoutAPI) CreateChargeSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	return do[domain.CheckoutSession](ctx, a.c, http.MethodPost, "session/charge", req)
}

// CreateRecurringSession creates a session that saves a payment method.
func (a *CheckoutAPI) CreateRecurringSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	return do[domain.CheckoutSession](ctx, a.c, http.MethodPost, "session/recurring", req)
}

// DeleteSession deletes a session so it can no longer be paid.
func (a *CheckoutAPI) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := do[struct{}](ctx, a.c, http.MethodDelete, "session/"+url.PathEscape(sessionID), nil)
	return err
}
