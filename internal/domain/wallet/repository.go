package wallet

import (
	"context"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// SystemSink is the recipient used for transfers that leave the wallet
// system, such as paying for an order. No credit entry is written for it.
var SystemSink = uuid.Nil

// WalletRepository persists wallets. Single-row lookups return shared.ErrNotFound.
type WalletRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Wallet, error)
	// FindByUserIDForUpdate reads the wallet with a row lock held until commit
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	// FindByIDForUpdate reads the wallet with a row lock held until commit
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Wallet, error)
	Create(ctx context.Context, w *Wallet) error
	Save(ctx context.Context, w *Wallet) error
}

// TransactionRepository persists wallet ledger entries
type TransactionRepository interface {
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	// FindByReferenceForUpdate reads the entry with a row lock held until commit
	FindByReferenceForUpdate(ctx context.Context, reference string) (*Transaction, error)
	Create(ctx context.Context, t *Transaction) error
	Save(ctx context.Context, t *Transaction) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, filter shared.Filter) ([]Transaction, int64, error)
}
