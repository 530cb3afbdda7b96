package http

import (
	"errors"
	"net/http"
	"strings"

	"orderflow/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeader is the alternative carrier for the checkout token; the
// body field wins when both are present.
const IdempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	svc service.OrderService
	log *zap.Logger
}

func NewOrderHandler(svc service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		svc: svc,
		log: log,
	}
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Prices the submitted cart against the catalog and persists the order atomically. Retrying with the same idempotency token returns the prior order id.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body PlaceOrderRequest true "Checkout submission"
// @Success 200 {object} PlaceOrderResponse
// @Failure 400 {object} ErrorResponse "Validation error, correct the request before resubmitting"
// @Failure 422 {object} ErrorResponse "Pricing error, re-quote the cart"
// @Failure 503 {object} ErrorResponse "Transient failure, safe to retry with the same token"
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid place order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, newError("validation_error", "invalid request body"))
		return
	}

	token := strings.TrimSpace(req.IdempotencyToken)
	if token == "" {
		token = strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	}

	lines := make([]service.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		CustomerEmail:    req.CustomerEmail,
		CustomerName:     req.CustomerName,
		Lines:            lines,
		IdempotencyToken: token,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlaceOrderResponse{
		OrderID: order.ID.String(),
		Status:  string(order.Status),
	})
}

// ListByEmail godoc
// @Summary List a customer's orders
// @Description Orders for the given email, most recent first, items nested in submitted line order. An unknown email yields an empty array.
// @Tags orders
// @Produce json
// @Param email path string true "Customer email"
// @Success 200 {array} OrderResponse
// @Failure 503 {object} ErrorResponse
// @Router /orders/by-email/{email} [get]
func (h *OrderHandler) ListByEmail(c *gin.Context) {
	email := c.Param("email")

	orders, err := h.svc.OrdersForEmail(c.Request.Context(), email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentity):
		c.JSON(http.StatusBadRequest, newError("invalid_identity", err.Error()))
	case errors.Is(err, service.ErrMissingIdempotencyToken):
		c.JSON(http.StatusBadRequest, newError("missing_idempotency_token", err.Error()))
	case errors.Is(err, service.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, newError("empty_order", err.Error()))
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, newError("invalid_quantity", err.Error()))
	case errors.Is(err, service.ErrUnknownProduct):
		c.JSON(http.StatusUnprocessableEntity, newError("unknown_product", err.Error()))
	case errors.Is(err, service.ErrOutOfStock):
		c.JSON(http.StatusUnprocessableEntity, newError("out_of_stock", err.Error()))
	default:
		h.log.Error("order request failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable,
			newRetryableError("transient_failure", "temporary failure, retry with the same idempotency token"))
	}
}
