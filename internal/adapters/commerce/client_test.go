package commerce

import (
	"context"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

func TestClient_GetOrder(t *testing.T) {
	defer gock.Off()
	gock.New("http://core.test").
		Get("/api/internal/orders/42/").
		MatchHeader("X-Internal-API-Key", "secret").
		Reply(200).
		JSON(map[string]any{
			"order_id":    "42",
			"total_price": map[string]any{"number": "25.99", "currency_code": "DKK"},
			"mail":        "a@b.dk",
			"state":       "draft",
		})

	order, err := NewClient("http://core.test/", "secret", time.Second).GetOrder(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", order.ID)
	assert.Equal(t, int64(2599), order.TotalPrice.MinorUnits())
	assert.Equal(t, "a@b.dk", order.Email)
	assert.Equal(t, domain.OrderDraft, order.State)
	assert.True(t, gock.IsDone())
}

func TestClient_GetOrder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		reply func()
		want  error
	}{
		{
			name:  "not found",
			reply: func() { gock.New("http://core.test").Get("/api/internal/orders/42/").Reply(404) },
			want:  domain.ErrOrderNotFound,
		},
		{
			name:  "server error",
			reply: func() { gock.New("http://core.test").Get("/api/internal/orders/42/").Reply(500) },
			want:  domain.ErrCoreAPIError,
		},
		{
			name: "bad body",
			reply: func() {
				gock.New("http://core.test").Get("/api/internal/orders/42/").Reply(200).BodyString("not json")
			},
			want: domain.ErrCoreAPIError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.reply()

			_, err := NewClient("http://core.test", "secret", time.Second).GetOrder(context.Background(), "42")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_PlaceOrder(t *testing.T) {
	defer gock.Off()
	gock.New("http://core.test").
		Post("/api/internal/orders/42/place/").
		Reply(204)
	gock.New("http://core.test").
		Post("/api/internal/orders/43/place/").
		Reply(409).
		BodyString("order is not a draft")

	c := NewClient("http://core.test", "secret", time.Second)
	require.NoError(t, c.PlaceOrder(context.Background(), "42"))

	err := c.PlaceOrder(context.Background(), "43")
	assert.ErrorIs(t, err, domain.ErrCoreAPIError)
	assert.Contains(t, err.Error(), "order is not a draft")
	assert.True(t, gock.IsDone())
}
