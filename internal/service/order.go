package service

import (
	"context"

	"orderflow/internal/models"
)

// CartLine is one client-submitted product/quantity pair. The client's
// displayed price is advisory and never reaches this type.
type CartLine struct {
	ProductID string
	Quantity  int64
}

// PricedLine is a CartLine resolved against the catalog at quote time.
type PricedLine struct {
	ProductID      string
	ProductName    string
	Quantity       int64
	UnitPriceCents int64
}

// PlaceOrderInput is the request-scoped checkout submission. It replaces any
// session-affine cart state: the subsystem holds nothing between requests.
type PlaceOrderInput struct {
	CustomerEmail    string
	CustomerName     string
	Lines            []CartLine
	IdempotencyToken string
}

type OrderService interface {
	PriceCart(ctx context.Context, lines []CartLine) ([]PricedLine, error)
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error)
	OrdersForEmail(ctx context.Context, email string) ([]models.Order, error)
}
