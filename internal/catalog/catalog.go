package catalog

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/repository"
)

// ErrNotFound is returned when a product id does not resolve in the catalog.
var ErrNotFound = errors.New("product not found in catalog")

// Product is the catalog's answer for one product id at lookup time.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Stock      int64  `json:"stock"`
}

// Catalog is the external collaborator that owns current price, availability
// and name. This subsystem only ever reads it.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// StoreCatalog resolves products against the catalog-owned products table.
type StoreCatalog struct {
	products repository.ProductRepo
}

func NewStoreCatalog(products repository.ProductRepo) *StoreCatalog {
	return &StoreCatalog{products: products}
}

func (c *StoreCatalog) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup failed: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &Product{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
	}, nil
}
