package cart

import (
	"errors"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceMode describes how a product is priced
type PriceMode string

const (
	// PriceModeFixed means the product has a single price and no selectable unit
	PriceModeFixed PriceMode = "FIXED"
	// PriceModeUnit means the buyer picks a unit (e.g. crate, carton) with its own price
	PriceModeUnit PriceMode = "UNIT"
)

// IsValid checks if the price mode is known
func (m PriceMode) IsValid() bool {
	return m == PriceModeFixed || m == PriceModeUnit
}

// Cart item errors
var (
	ErrInvalidQuantity   = shared.NewValidationError("Quantity must be at least 1")
	ErrProductRequired   = shared.NewValidationError("Product is required")
	ErrIncoherentPricing = errors.New("cart item price snapshot does not match product pricing")
)

// PriceSnapshot is the price captured when the item was added to the cart
type PriceSnapshot struct {
	Mode      PriceMode
	UnitID    *uuid.UUID
	UnitName  string
	UnitPrice decimal.Decimal
}

// CartItem is one product line in an owner's cart.
// For a given owner there is at most one item per (product, unit) pair.
type CartItem struct {
	shared.BaseEntity
	Owner     shared.Owner
	ProductID uuid.UUID
	Quantity  int
	Price     PriceSnapshot
}

// NewCartItem creates a cart item for the owner
func NewCartItem(owner shared.Owner, productID uuid.UUID, quantity int, price PriceSnapshot) (*CartItem, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, ErrProductRequired
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		Owner:      owner,
		ProductID:  productID,
		Quantity:   quantity,
		Price:      price,
	}, nil
}

// CopyFor creates a new item for another owner with the same product, unit and quantity
func (i *CartItem) CopyFor(owner shared.Owner) (*CartItem, error) {
	return NewCartItem(owner, i.ProductID, i.Quantity, i.Price)
}

// AddQuantity sums another item's quantity into this one
func (i *CartItem) AddQuantity(qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	i.Quantity += qty
	i.UpdatedAt = time.Now()
	return nil
}

// SameLine reports whether other refers to the same (product, unit) pair
func (i *CartItem) SameLine(other *CartItem) bool {
	if i.ProductID != other.ProductID {
		return false
	}
	return sameUnit(i.Price.UnitID, other.Price.UnitID)
}

func sameUnit(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CheckCoherence validates the snapshot against the product's current pricing mode.
// A fixed-price product must not carry a unit; a unit-priced product must carry
// one of its active units.
func (i *CartItem) CheckCoherence(p *Product) error {
	if p == nil || !p.IsActive {
		return ErrIncoherentPricing
	}
	switch p.PriceMode {
	case PriceModeFixed:
		if i.Price.UnitID != nil {
			return ErrIncoherentPricing
		}
	case PriceModeUnit:
		if i.Price.UnitID == nil {
			return ErrIncoherentPricing
		}
		if _, ok := p.Unit(*i.Price.UnitID); !ok {
			return ErrIncoherentPricing
		}
	default:
		return ErrIncoherentPricing
	}
	return nil
}
