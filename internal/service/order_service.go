package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"orderflow/internal/catalog"
	"orderflow/internal/models"
	"orderflow/internal/repository"
)

type orderService struct {
	repo    *repository.Repository
	catalog catalog.Catalog
	events  EventBus
	now     func() time.Time
}

func NewOrderService(repo *repository.Repository, cat catalog.Catalog, events EventBus) OrderService {
	return &orderService{
		repo:    repo,
		catalog: cat,
		events:  events,
		now:     time.Now,
	}
}

func validIdentity(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// PlaceOrder turns a priced cart into a durable order. The header, all item
// rows and the idempotency completion marker commit as one transaction:
// readers see every row of the order or none of them, and a retried token
// replays the prior order id instead of writing a second order.
func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if !validIdentity(in.CustomerEmail) {
		return nil, ErrInvalidIdentity
	}
	if strings.TrimSpace(in.IdempotencyToken) == "" {
		return nil, ErrMissingIdempotencyToken
	}
	if len(in.Lines) == 0 {
		return nil, ErrEmptyOrder
	}

	priced, err := s.PriceCart(ctx, in.Lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var total int64
	items := make([]models.OrderItem, 0, len(priced))
	for i, pl := range priced {
		lineTotal := pl.UnitPriceCents * pl.Quantity
		total += lineTotal
		items = append(items, models.OrderItem{
			Position:       uint32(i),
			ProductID:      pl.ProductID,
			ProductName:    pl.ProductName,
			Quantity:       uint32(pl.Quantity),
			UnitPriceCents: pl.UnitPriceCents,
			LineTotalCents: lineTotal,
			CreatedAt:      now,
		})
	}

	var (
		placed   *models.Order
		replayed bool
	)
	err = s.repo.Orders.WithTx(ctx, func(or repository.OrderRepo, ir repository.OrderItemRepo, ik repository.IdempotencyRepo) error {
		key, fresh, err := ik.Reserve(ctx, in.IdempotencyToken)
		if err != nil {
			return err
		}
		if !fresh && key.Status == models.IdempotencyStatusCompleted {
			if key.OrderID == nil {
				return ErrOrderNotFound
			}
			prior, err := or.GetByID(ctx, *key.OrderID)
			if err != nil {
				return err
			}
			if prior == nil {
				return ErrOrderNotFound
			}
			placed = prior
			replayed = true
			return nil
		}
		// Fresh reservation, or a stale PENDING row whose lock we now hold:
		// either way this is the single attempt allowed to proceed.

		order := &models.Order{
			CustomerEmail:    in.CustomerEmail,
			CustomerName:     in.CustomerName,
			Status:           models.OrderStatusPending,
			TotalAmountCents: total,
			CreatedAt:        now,
		}
		if err := or.Create(ctx, order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := ir.BulkCreate(ctx, items); err != nil {
			return err
		}

		if err := ik.Complete(ctx, in.IdempotencyToken, order.ID); err != nil {
			return err
		}

		order.Items = items
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed && s.events != nil {
		evItems := make([]OrderItemEvent, 0, len(placed.Items))
		for _, it := range placed.Items {
			evItems = append(evItems, OrderItemEvent{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				PriceCents:  it.UnitPriceCents,
				LineTotal:   it.LineTotalCents,
			})
		}
		_ = s.events.PublishOrderPlaced(ctx, OrderPlacedEvent{
			OrderID:       placed.ID,
			CustomerEmail: placed.CustomerEmail,
			Items:         evItems,
			TotalCents:    placed.TotalAmountCents,
			CreatedAt:     placed.CreatedAt,
		})
	}

	return placed, nil
}

// OrdersForEmail returns the customer's orders, most recent first, each with
// its items in submitted line order. An unknown email yields an empty slice.
func (s *orderService) OrdersForEmail(ctx context.Context, email string) ([]models.Order, error) {
	list, err := s.repo.Orders.ListByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, len(list))
	for i, o := range list {
		orders[i] = *o
	}
	return orders, nil
}
