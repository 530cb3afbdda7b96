package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "ORDER_STATUS_PENDING"
	OrderStatusConfirmed OrderStatus = "ORDER_STATUS_CONFIRMED"
	OrderStatusCancelled OrderStatus = "ORDER_STATUS_CANCELLED"
)

type Order struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerEmail    string      `gorm:"type:text;not null;index"`
	CustomerName     string      `gorm:"type:text"`
	Status           OrderStatus `gorm:"type:text;not null;default:'ORDER_STATUS_PENDING';index"`
	TotalAmountCents int64       `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem keeps a frozen copy of the product name and unit price at order
// time, so historical orders display correctly after catalog changes.
// Position pins the submitted line order; duplicate product ids stay distinct
// lines, hence no unique index on (order_id, product_id).
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_position"`
	Position       uint32    `gorm:"type:int;not null;uniqueIndex:ux_order_items_order_position"`
	ProductID      string    `gorm:"type:text;not null"`
	ProductName    string    `gorm:"type:text;not null"`
	Quantity       uint32    `gorm:"type:int;not null"` // CHECK added in migration
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

type IdempotencyStatus string

const (
	IdempotencyStatusPending   IdempotencyStatus = "IDEMPOTENCY_STATUS_PENDING"
	IdempotencyStatusCompleted IdempotencyStatus = "IDEMPOTENCY_STATUS_COMPLETED"
)

// IdempotencyKey is the reservation row for one logical checkout attempt.
// The reservation (PENDING) and the completion marker (COMPLETED + order id)
// are distinct states: a reservation that never completed admits exactly one
// fresh attempt instead of locking the token out forever.
type IdempotencyKey struct {
	Token   string            `gorm:"type:text;primaryKey"`
	Status  IdempotencyStatus `gorm:"type:text;not null;default:'IDEMPOTENCY_STATUS_PENDING'"`
	OrderID *uuid.UUID        `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }

// Product is owned by the Catalog. This subsystem reads it and never writes;
// the price column is authoritative here, never in the client cart.
type Product struct {
	ID         string `gorm:"type:text;primaryKey"`
	Name       string `gorm:"type:text;not null"`
	PriceCents int64  `gorm:"not null"`
	Stock      int64  `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }
