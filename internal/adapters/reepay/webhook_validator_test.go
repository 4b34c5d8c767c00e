package reepay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

func signedNotification(secret string) domain.WebhookNotification {
	n := domain.WebhookNotification{
		ID:        "c1a9e4d0f6b24f2e9f1f8a1d3e5b7c9a",
		EventID:   "ev_1",
		EventType: domain.EventInvoiceAuthorized,
		Timestamp: "2026-10-19T10:00:00.000Z",
		Invoice:   "99-42",
	}
	n.Signature = Sign(n.Timestamp, n.ID, secret)
	return n
}

func flip(s string, i int) string {
	b := []byte(s)
	if b[i] == 'a' {
		b[i] = 'b'
	} else {
		b[i] = 'a'
	}
	return string(b)
}

func TestWebhookValidator_ValidateSignature(t *testing.T) {
	v := NewWebhookValidator()
	const secret = "webhook_secret_123"

	assert.True(t, v.ValidateSignature(signedNotification(secret), secret))

	for i := range "c1a9e4d0f6b24f2e9f1f8a1d3e5b7c9a" {
		n := signedNotification(secret)
		n.ID = flip(n.ID, i)
		assert.False(t, v.ValidateSignature(n, secret), "id char %d", i)
	}

	for i := range "2026-10-19T10:00:00.000Z" {
		n := signedNotification(secret)
		n.Timestamp = flip(n.Timestamp, i)
		assert.False(t, v.ValidateSignature(n, secret), "timestamp char %d", i)
	}

	for i := range secret {
		assert.False(t, v.ValidateSignature(signedNotification(secret), flip(secret, i)), "secret char %d", i)
	}
}

func TestWebhookValidator_EmptyInputs(t *testing.T) {
	v := NewWebhookValidator()

	n := signedNotification("")
	assert.False(t, v.ValidateSignature(n, ""))

	n = signedNotification("s")
	n.Signature = ""
	assert.False(t, v.ValidateSignature(n, "s"))
}

func TestSign(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		Sign("The quick brown fox ", "jumps over the lazy dog", "key"))
}
