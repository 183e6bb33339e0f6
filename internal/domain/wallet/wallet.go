package wallet

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet errors
var (
	ErrInvalidAmount   = shared.NewValidationError("Amount must be positive")
	ErrWalletInactive  = shared.NewValidationError("Wallet is inactive")
	ErrInvalidUser     = shared.NewValidationError("User ID cannot be empty")
	ErrSelfTransfer    = shared.NewValidationError("Cannot transfer to the same wallet")
	ErrCurrencyMissing = shared.NewValidationError("Wallet currency is required")
)

// Wallet holds one user's balance. Balance is never changed except through
// Credit and Debit, and every call is paired with a WalletTransaction.
type Wallet struct {
	shared.BaseEntity
	UserID         uuid.UUID
	Balance        decimal.Decimal
	Currency       string
	IsActive       bool
	LastActivityAt *time.Time
}

// NewWallet creates an empty active wallet
func NewWallet(userID uuid.UUID, currency string) (*Wallet, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUser
	}
	if currency == "" {
		return nil, ErrCurrencyMissing
	}
	return &Wallet{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Balance:    decimal.Zero,
		Currency:   currency,
		IsActive:   true,
	}, nil
}

// Credit increases the balance and returns (before, after)
func (w *Wallet) Credit(amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	before := w.Balance
	w.Balance = w.Balance.Add(amount)
	w.markActivity()
	return before, w.Balance, nil
}

// Debit decreases the balance and returns (before, after).
// The balance never goes negative.
func (w *Wallet) Debit(amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	if !w.IsActive {
		return decimal.Zero, decimal.Zero, ErrWalletInactive
	}
	if w.Balance.LessThan(amount) {
		return decimal.Zero, decimal.Zero, shared.ErrInsufficientBalance
	}
	before := w.Balance
	w.Balance = w.Balance.Sub(amount)
	w.markActivity()
	return before, w.Balance, nil
}

// HasSufficientBalance checks if the wallet can cover amount
func (w *Wallet) HasSufficientBalance(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

func (w *Wallet) markActivity() {
	now := time.Now()
	w.LastActivityAt = &now
	w.UpdatedAt = now
}
