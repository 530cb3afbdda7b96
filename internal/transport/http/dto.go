package http

import (
	"time"

	"orderflow/internal/models"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity"`
	// Price is the price the storefront displayed to the customer. It is
	// advisory only; totals are always recomputed against the catalog.
	Price float64 `json:"price"`
}

type PlaceOrderRequest struct {
	CustomerEmail    string             `json:"customerEmail"`
	CustomerName     string             `json:"customerName"`
	Items            []OrderItemRequest `json:"items"`
	IdempotencyToken string             `json:"idempotencyToken"`
}

type PlaceOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type OrderItemResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	CustomerEmail    string              `json:"customerEmail"`
	CustomerName     string              `json:"customerName,omitempty"`
	Status           string              `json:"status"`
	TotalAmountCents int64               `json:"totalAmountCents"`
	CreatedAt        time.Time           `json:"createdAt"`
	Items            []OrderItemResponse `json:"items"`
}

// ErrorResponse carries a machine-readable code so the storefront can tell
// "fix your cart and resubmit" from "safe to retry with the same token".
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func newError(code, msg string) ErrorResponse {
	return ErrorResponse{Code: code, Message: msg}
}

func newRetryableError(code, msg string) ErrorResponse {
	return ErrorResponse{Code: code, Message: msg, Retryable: true}
}

func toOrderResponse(o models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}
	return OrderResponse{
		ID:               o.ID.String(),
		CustomerEmail:    o.CustomerEmail,
		CustomerName:     o.CustomerName,
		Status:           string(o.Status),
		TotalAmountCents: o.TotalAmountCents,
		CreatedAt:        o.CreatedAt,
		Items:            items,
	}
}

func toOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
