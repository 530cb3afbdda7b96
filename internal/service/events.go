package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    uint32 `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
	LineTotal   int64  `json:"line_total_cents"`
}

type OrderPlacedEvent struct {
	OrderID       uuid.UUID        `json:"order_id"`
	CustomerEmail string           `json:"customer_email"`
	Items         []OrderItemEvent `json:"items"`
	TotalCents    int64            `json:"total_cents"`
	CreatedAt     time.Time        `json:"created_at"`
}

// EventBus publishes order lifecycle events. A nil bus disables publishing;
// a replayed idempotent submission never publishes twice.
type EventBus interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlacedEvent) error
}
