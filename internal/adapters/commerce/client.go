// Package commerce provides the HTTP client for the commerce core, which
// owns orders and their workflow.
package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// Client implements ports.OrderRepository.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new commerce core client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetOrder loads an order.
// GET /api/internal/orders/:id/
func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	endpoint := fmt.Sprintf("%s/api/internal/orders/%s/", c.baseURL, url.PathEscape(orderID))

	resp, err := c.send(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewPaymentError(domain.ErrCoreAPIError,
			fmt.Sprintf("commerce core returned status %d", resp.StatusCode), "CORE_ERROR")
	}

	var order domain.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, domain.NewPaymentError(domain.ErrCoreAPIError,
			"failed to decode order", "DECODE_ERROR")
	}
	if order.ID == "" {
		order.ID = orderID
	}
	return &order, nil
}

// PlaceOrder applies the place transition and finishes checkout.
// POST /api/internal/orders/:id/place/
func (c *Client) PlaceOrder(ctx context.Context, orderID string) error {
	endpoint := fmt.Sprintf("%s/api/internal/orders/%s/place/", c.baseURL, url.PathEscape(orderID))

	resp, err := c.send(ctx, http.MethodPost, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewPaymentError(domain.ErrCoreAPIError,
			fmt.Sprintf("commerce core returned status %d: %s", resp.StatusCode, string(body)),
			"CORE_ERROR")
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrCoreAPIError,
			"failed to create request", "REQUEST_ERROR")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Internal-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewPaymentError(domain.ErrCoreAPIError,
			"request failed: "+err.Error(), "HTTP_ERROR")
	}
	return resp, nil
}
