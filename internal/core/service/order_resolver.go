package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fitstack/reepay-payments/internal/core/domain"
	"github.com/fitstack/reepay-payments/internal/core/ports"
)

// OrderResolver maps invoice handles back to merchant orders.
type OrderResolver struct {
	orders ports.OrderRepository
}

// NewOrderResolver creates an order resolver.
func NewOrderResolver(orders ports.OrderRepository) *OrderResolver {
	return &OrderResolver{orders: orders}
}

// ResolveOrder strips prefix from invoiceHandle and loads the order with the
// remaining id. A handle without the prefix, or an unknown order, yields
// (nil, nil).
func (r *OrderResolver) ResolveOrder(ctx context.Context, invoiceHandle, prefix string) (*domain.Order, error) {
	if !strings.HasPrefix(invoiceHandle, prefix) {
		return nil, nil
	}
	orderID := strings.TrimPrefix(invoiceHandle, prefix)
	if orderID == "" {
		return nil, nil
	}

	order, err := r.orders.GetOrder(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}
