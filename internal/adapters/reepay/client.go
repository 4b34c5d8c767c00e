// Package reepay talks to the Reepay management and checkout APIs.
package reepay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fitstack/reepay-payments/internal/metrics"
)

const (
	DefaultAPIURL         = "https://api.reepay.com/v1/"
	DefaultCheckoutAPIURL = "https://checkout-api.reepay.com/v1/"
	defaultTimeout        = 15 * time.Second
)

// APIError is returned for every non-2xx answer from Reepay.
type APIError struct {
	StatusCode int    `json:"http_status"`
	Code       int    `json:"code"`
	Reason     string `json:"error"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
	Method     string `json:"-"`
	Path       string `json:"-"`
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("reepay %s %s: status %d", e.Method, e.Path, e.StatusCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// IsNotFound reports whether err is a Reepay 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// client holds what both Reepay APIs share: base URL, basic auth with the
// private key as user name, and a timeout-bound http.Client.
type client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

func newClient(baseURL, privateKey string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do sends one request and decodes the response into T. Each endpoint
// method picks its T, so the result type is fixed at compile time.
func do[T any](ctx context.Context, c *client, method, path string, body any) (*T, error) {
	start := time.Now()
	defer metrics.ProcessorRequest(endpointLabel(method, path)).UpdateDuration(start)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "marshal %s request", path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	req.SetBasicAuth(c.privateKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "reepay %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		// Reepay error bodies are JSON; anything else is kept as the message.
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		apiErr.Method = method
		apiErr.Path = path
		return nil, apiErr
	}

	out := new(T)
	if len(bytes.TrimSpace(respBody)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return nil, errors.Wrapf(err, "decode %s response", path)
	}
	return out, nil
}

// endpointLabel strips ids from a path so metric cardinality stays bounded.
func endpointLabel(method, path string) string {
	path, _, _ = strings.Cut(path, "?")
	return method + " " + strings.SplitN(path, "/", 2)[0]
}
