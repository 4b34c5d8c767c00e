// Package handlers contains the HTTP handlers for the payment service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fitstack/reepay-payments/config"
	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/service"
	"github.com/fitstack/reepay-payments/internal/logging"
	"github.com/fitstack/reepay-payments/internal/metrics"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service  *service.PaymentService
	checkout config.CheckoutConfig
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(svc *service.PaymentService, checkout config.CheckoutConfig, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{service: svc, checkout: checkout, logger: logger}
}

// CheckoutResponse is returned by CreateCheckout.
type CheckoutResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"code,omitempty"`
}

// CreateCheckout handles POST /api/v1/checkout/:order_id/session
// Creates a hosted checkout session for a draft order.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	orderID := c.Param("order_id")
	ctx := logging.AppendCtx(c.Request.Context(), slog.String("order_id", orderID))

	base := strings.TrimRight(h.checkout.PublicURL, "/") + "/checkout/" + url.PathEscape(orderID)
	session, err := h.service.CreateCheckout(ctx, orderID, base+"/return", base+"/cancel")
	if err != nil {
		h.logger.ErrorContext(ctx, "CreateCheckout error", "error", err)
		status, code := errorStatus(err)
		c.JSON(status, CheckoutResponse{
			Success:   false,
			Error:     err.Error(),
			ErrorCode: code,
		})
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{
		Success:   true,
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// HandleReturn handles GET /checkout/:order_id/return
// The customer's browser lands here after the hosted checkout.
func (h *PaymentHandler) HandleReturn(c *gin.Context) {
	orderID := c.Param("order_id")
	ctx := logging.AppendCtx(c.Request.Context(), slog.String("order_id", orderID))

	var params domain.ReturnParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.WarnContext(ctx, "Invalid return parameters", "error", err)
		h.redirectFailure(c, domain.ErrCheckoutFailed.Error())
		return
	}

	if _, err := h.service.HandleReturn(ctx, orderID, params); err != nil {
		h.logger.ErrorContext(ctx, "Return failed", "error", err)
		h.redirectFailure(c, domain.ErrCheckoutFailed.Error())
		return
	}

	c.Redirect(http.StatusFound, withQuery(h.checkout.CompleteURL, url.Values{"order_id": {orderID}}))
}

// HandleCancel handles GET /checkout/:order_id/cancel
func (h *PaymentHandler) HandleCancel(c *gin.Context) {
	orderID := c.Param("order_id")
	ctx := logging.AppendCtx(c.Request.Context(), slog.String("order_id", orderID))

	var params domain.ReturnParams
	_ = c.ShouldBindQuery(&params)

	h.redirectFailure(c, h.service.HandleCancel(ctx, orderID, params))
}

// HandleWebhook handles POST /webhooks/reepay
// Reepay retries anything that is not a 2xx, so only processed, duplicate
// and unknown-order notifications are acknowledged.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	var notification domain.WebhookNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Webhook parse error", "error", err)
		metrics.Webhook("bad_request").Inc()
		c.String(http.StatusBadRequest, "Bad request")
		return
	}

	result, err := h.service.ProcessWebhook(c.Request.Context(), notification)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Webhook processing error",
			"event_id", notification.EventID, "event_type", notification.EventType, "error", err)
		c.String(http.StatusBadRequest, webhookDiagnostic(err))
		return
	}

	c.String(http.StatusOK, result.Message())
}

// Health handles GET /health
func (h *PaymentHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "reepay-payments",
		"version": "1.0.0",
	})
}

func (h *PaymentHandler) redirectFailure(c *gin.Context, message string) {
	c.Redirect(http.StatusFound, withQuery(h.checkout.FailureURL, url.Values{"message": {message}}))
}

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	code := "INTERNAL_ERROR"
	var perr *domain.PaymentError
	if errors.As(err, &perr) && perr.Code != "" {
		code = perr.Code
	}

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, code
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, code
	case errors.Is(err, domain.ErrSessionCreation),
		errors.Is(err, domain.ErrPaymentGatewayError),
		errors.Is(err, domain.ErrCoreAPIError):
		return http.StatusBadGateway, code
	default:
		return http.StatusInternalServerError, code
	}
}

// withQuery adds values to rawURL, keeping any query it already has.
func withQuery(rawURL string, values url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, vs := range values {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// webhookDiagnostic returns the fixed 400 body for a failed webhook. Error
// text is only logged since it may carry gateway responses.
func webhookDiagnostic(err error) string {
	var pErr *domain.PaymentError
	if !errors.As(err, &pErr) {
		return "Webhook error"
	}
	switch pErr.Code {
	case "UNAUTHENTICATED":
		return "Signature check failed"
	case "UNHANDLED_EVENT":
		return "Unhandled event type"
	case "CHARGE_NOT_FOUND":
		return "Charge not found"
	default:
		return "Webhook error"
	}
}
