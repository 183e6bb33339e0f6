package persistence

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/application/ledger"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories builds every ledger repository on one *gorm.DB, which is
// either the root connection or an open transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories bound to db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) CartItems() cart.CartItemRepository {
	return NewGormCartItemRepository(r.db)
}

func (r *GormRepositories) Providers() order.PaymentProviderRepository {
	return NewGormPaymentProviderRepository(r.db)
}

func (r *GormRepositories) Checkouts() order.CheckoutRepository {
	return NewGormCheckoutRepository(r.db)
}

func (r *GormRepositories) Orders() order.OrderRepository {
	return NewGormOrderRepository(r.db)
}

func (r *GormRepositories) Invoices() order.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

func (r *GormRepositories) Transactions() order.TransactionRepository {
	return NewGormTransactionRepository(r.db)
}

func (r *GormRepositories) Wallets() wallet.WalletRepository {
	return NewGormWalletRepository(r.db)
}

func (r *GormRepositories) WalletTransactions() wallet.TransactionRepository {
	return NewGormWalletTransactionRepository(r.db)
}

func (r *GormRepositories) WebhookEvents() payment.WebhookEventRepository {
	return NewGormWebhookEventRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ ledger.Repositories = (*GormRepositories)(nil)
