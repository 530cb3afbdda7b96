package service

import "errors"

var (
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidIdentity         = errors.New("customer email is missing or malformed")
	ErrMissingIdempotencyToken = errors.New("idempotency token is required")
	ErrInvalidQuantity         = errors.New("quantity must be a positive integer")
	ErrUnknownProduct          = errors.New("unknown product")
	ErrOutOfStock              = errors.New("product is out of stock")
	ErrOrderNotFound           = errors.New("order not found")
)
