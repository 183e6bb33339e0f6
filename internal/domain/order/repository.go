package order

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Repositories return shared.ErrNotFound when a single-row lookup has no match.

// PaymentProviderRepository persists gateway configuration rows
type PaymentProviderRepository interface {
	FindByName(ctx context.Context, name string) (*PaymentProvider, error)
	Create(ctx context.Context, p *PaymentProvider) error
}

// CheckoutRepository persists checkouts together with their items
type CheckoutRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Checkout, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Checkout, error)
	// DeleteOrphans removes checkouts of the owner that were never linked to an order
	DeleteOrphans(ctx context.Context, owner shared.Owner) (int64, error)
	Save(ctx context.Context, c *Checkout) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository persists orders together with their items
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindActiveByOwner returns the owner's newest active order
	FindActiveByOwner(ctx context.Context, owner shared.Owner) (*Order, error)
	// FindByReference matches payment id, then transaction id, then gateway transaction id
	FindByReference(ctx context.Context, reference string) (*Order, error)
	// FindByReferenceForUpdate is FindByReference holding a row lock until the transaction ends
	FindByReferenceForUpdate(ctx context.Context, reference string) (*Order, error)
	Save(ctx context.Context, o *Order) error
}

// InvoiceRepository persists invoices together with their items
type InvoiceRepository interface {
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
}

// TransactionRepository persists payment attempts
type TransactionRepository interface {
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)
	Save(ctx context.Context, t *Transaction) error
}
