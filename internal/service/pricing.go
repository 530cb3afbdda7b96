package service

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/catalog"
)

// maxLineQuantity caps one cart line. Stored quantity is a uint32 column and
// line totals are int64 cents; the cap keeps both far from their limits.
const maxLineQuantity = 1_000_000

// PriceCart resolves every line against the catalog's current state. Lines
// with the same product id are priced independently and keep their submitted
// order; nothing is merged. Pure read, no side effects.
func (s *orderService) PriceCart(ctx context.Context, lines []CartLine) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 || line.Quantity > maxLineQuantity {
			return nil, fmt.Errorf("%w: line %d product %s", ErrInvalidQuantity, i, line.ProductID)
		}

		p, err := s.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
			}
			return nil, err
		}
		if p.Stock <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrOutOfStock, line.ProductID)
		}

		priced = append(priced, PricedLine{
			ProductID:      line.ProductID,
			ProductName:    p.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: p.PriceCents,
		})
	}
	return priced, nil
}
