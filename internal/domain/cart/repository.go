package cart

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// CartItemRepository persists cart items
type CartItemRepository interface {
	// FindByOwner returns all items of an owner, oldest first
	FindByOwner(ctx context.Context, owner shared.Owner) ([]CartItem, error)
	// FindLine returns the owner's item for (product, unit) or shared.ErrNotFound
	FindLine(ctx context.Context, owner shared.Owner, productID uuid.UUID, unitID *uuid.UUID) (*CartItem, error)
	// Save creates or updates an item
	Save(ctx context.Context, item *CartItem) error
	// Delete removes a single item
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByOwner removes every item of the owner and returns the count
	DeleteByOwner(ctx context.Context, owner shared.Owner) (int64, error)
	// ReassignOwner moves every item of from to to and returns the count
	ReassignOwner(ctx context.Context, from, to shared.Owner) (int64, error)
}
