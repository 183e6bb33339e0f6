package ledger

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to every ledger repository.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	CartItems() cart.CartItemRepository
	Providers() order.PaymentProviderRepository
	Checkouts() order.CheckoutRepository
	Orders() order.OrderRepository
	Invoices() order.InvoiceRepository
	Transactions() order.TransactionRepository
	Wallets() wallet.WalletRepository
	WalletTransactions() wallet.TransactionRepository
	WebhookEvents() payment.WebhookEventRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.repos)
}

// Ensure NoOpTransactionScope implements TransactionScope
var _ TransactionScope = (*NoOpTransactionScope)(nil)
