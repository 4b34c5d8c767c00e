package reepay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// WebhookValidator validates Reepay webhook signatures.
type WebhookValidator struct{}

// NewWebhookValidator creates a new webhook validator.
func NewWebhookValidator() *WebhookValidator {
	return &WebhookValidator{}
}

// ValidateSignature checks the signature field of a webhook body.
// See: https://reference.reepay.com/api/#webhooks
//
// The signature is the hex encoded HMAC-SHA256 of timestamp+id, keyed with
// the webhook secret.
func (v *WebhookValidator) ValidateSignature(n domain.WebhookNotification, secret string) bool {
	if n.Signature == "" || secret == "" {
		return false
	}

	expected := Sign(n.Timestamp, n.ID, secret)

	// Compare signatures (constant-time comparison)
	return hmac.Equal([]byte(n.Signature), []byte(expected))
}

// Sign computes the signature Reepay puts on a webhook.
func Sign(timestamp, id, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp + id))
	return hex.EncodeToString(h.Sum(nil))
}
