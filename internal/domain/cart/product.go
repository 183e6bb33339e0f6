package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductUnit is a purchasable unit of a unit-priced product
type ProductUnit struct {
	ID     uuid.UUID
	Name   string
	Price  decimal.Decimal
	Weight decimal.Decimal
}

// Product is the read-only catalog view the cart needs.
// The catalog itself is owned by another service.
type Product struct {
	ID        uuid.UUID
	Name      string
	PriceMode PriceMode
	Price     decimal.Decimal
	Weight    decimal.Decimal
	IsActive  bool
	Units     []ProductUnit
}

// Unit finds a unit by ID
func (p *Product) Unit(id uuid.UUID) (ProductUnit, bool) {
	for _, u := range p.Units {
		if u.ID == id {
			return u, true
		}
	}
	return ProductUnit{}, false
}

// WeightFor returns the per-item weight for the given unit selection
func (p *Product) WeightFor(unitID *uuid.UUID) decimal.Decimal {
	if unitID != nil {
		if u, ok := p.Unit(*unitID); ok && !u.Weight.IsZero() {
			return u.Weight
		}
	}
	return p.Weight
}

// ProductCatalog reads products by ID.
// Missing IDs are simply absent from the returned map.
type ProductCatalog interface {
	FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
}
