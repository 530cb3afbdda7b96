package repository

import "gorm.io/gorm"

type Repository struct {
	DB          *gorm.DB
	Orders      OrderRepo
	OrderItems  OrderItemRepo
	Idempotency IdempotencyRepo
	Products    ProductRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:          db,
		Orders:      NewOrderRepo(db),
		OrderItems:  NewOrderItemRepo(db),
		Idempotency: NewIdempotencyRepo(db),
		Products:    NewProductRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }
