package wallet

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of wallet ledger entry
type TransactionType string

const (
	// TransactionTypeTopup is a gateway-funded deposit (balance increase)
	TransactionTypeTopup TransactionType = "WALLET_TOPUP"
	// TransactionTypeOrderPayment pays for an order from the wallet (balance decrease)
	TransactionTypeOrderPayment TransactionType = "ORDER_PAYMENT"
	// TransactionTypeTransferOut sends funds to another wallet (balance decrease)
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	// TransactionTypeTransferIn receives funds from another wallet (balance increase)
	TransactionTypeTransferIn TransactionType = "TRANSFER_IN"
)

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeTopup, TransactionTypeOrderPayment, TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	}
	return false
}

// IsDebit returns true if this type decreases the balance
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeOrderPayment || t == TransactionTypeTransferOut
}

// TransactionStatus is the state of a wallet ledger entry
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusSuccess TransactionStatus = "SUCCESS"
	TransactionStatusFailed  TransactionStatus = "FAILED"
)

// Transaction is an append-only wallet ledger entry. Only PENDING deposits
// are ever updated, and only once, to SUCCESS or FAILED.
type Transaction struct {
	shared.BaseEntity
	WalletID             uuid.UUID
	Type                 TransactionType
	Amount               decimal.Decimal
	Status               TransactionStatus
	BalanceBefore        decimal.Decimal
	BalanceAfter         decimal.Decimal
	Reference            string
	Description          string
	Provider             string
	CounterpartyWalletID *uuid.UUID
	FailureReason        string
	Metadata             map[string]string
	CompletedAt          *time.Time
}

// NewPendingDeposit records a deposit awaiting gateway confirmation.
// The balance snapshot is unchanged until the deposit is verified.
func NewPendingDeposit(w *Wallet, amount decimal.Decimal, reference, provider string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		WalletID:      w.ID,
		Type:          TransactionTypeTopup,
		Amount:        amount,
		Status:        TransactionStatusPending,
		BalanceBefore: w.Balance,
		BalanceAfter:  w.Balance,
		Reference:     reference,
		Description:   "Wallet top-up",
		Provider:      provider,
		Metadata:      map[string]string{},
	}, nil
}

// NewSettledEntry records a completed balance change
func NewSettledEntry(walletID uuid.UUID, txType TransactionType, amount, before, after decimal.Decimal, reference, description string) (*Transaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewValidationError("Invalid wallet transaction type")
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	now := time.Now()
	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		WalletID:      walletID,
		Type:          txType,
		Amount:        amount,
		Status:        TransactionStatusSuccess,
		BalanceBefore: before,
		BalanceAfter:  after,
		Reference:     reference,
		Description:   description,
		Metadata:      map[string]string{},
		CompletedAt:   &now,
	}, nil
}

// IsSettled reports whether the entry has been verified
func (t *Transaction) IsSettled() bool {
	return t.Status == TransactionStatusSuccess
}

// IsFailed reports whether the entry was rejected
func (t *Transaction) IsFailed() bool {
	return t.Status == TransactionStatusFailed
}

// Settle marks a pending deposit as credited with the given balance snapshot
func (t *Transaction) Settle(before, after decimal.Decimal) {
	now := time.Now()
	t.Status = TransactionStatusSuccess
	t.BalanceBefore = before
	t.BalanceAfter = after
	t.CompletedAt = &now
	t.Touch()
}

// Fail marks a pending deposit as failed; the balance snapshot is left as is
func (t *Transaction) Fail(reason string) {
	now := time.Now()
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	t.CompletedAt = &now
	t.Touch()
}

// SetMetadata records a key on the entry
func (t *Transaction) SetMetadata(key, value string) {
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	t.Metadata[key] = value
}

// Delta returns the signed balance change of the entry
func (t *Transaction) Delta() decimal.Decimal {
	return t.BalanceAfter.Sub(t.BalanceBefore)
}
