package order

import (
	"errors"
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrReferenceRequired is returned when a transaction has no reference
var ErrReferenceRequired = errors.New("transaction reference is required")

// Transaction is the ledger entry for one gateway payment attempt.
// A retry always creates a new Transaction with a new reference.
type Transaction struct {
	shared.BaseEntity
	OrderID              uuid.UUID
	ProviderID           uuid.UUID
	Reference            string
	ProviderReference    string
	GatewayTransactionID string
	Amount               decimal.Decimal
	ProcessingFee        decimal.Decimal
	NetAmount            decimal.Decimal
	Currency             string
	Status               TransactionStatus
	FailureReason        string
	Payload              string
	CompletedAt          *time.Time
}

// NewTransaction opens a pending attempt for the order
func NewTransaction(orderID, providerID uuid.UUID, reference string, amount decimal.Decimal, currency string) (*Transaction, error) {
	if reference == "" {
		return nil, ErrReferenceRequired
	}
	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       orderID,
		ProviderID:    providerID,
		Reference:     reference,
		Amount:        amount,
		ProcessingFee: decimal.Zero,
		NetAmount:     amount,
		Currency:      currency,
		Status:        TransactionStatusPending,
	}, nil
}

// MarkSucceeded settles the attempt. fee is zero when the gateway did not report one.
func (t *Transaction) MarkSucceeded(gatewayTransactionID string, fee decimal.Decimal, at time.Time) {
	t.Status = TransactionStatusSuccess
	if gatewayTransactionID != "" {
		t.GatewayTransactionID = gatewayTransactionID
	}
	t.ProcessingFee = fee
	t.NetAmount = t.Amount.Sub(fee)
	t.FailureReason = ""
	t.CompletedAt = &at
	t.Touch()
}

// MarkFailed closes the attempt as failed
func (t *Transaction) MarkFailed(reason string) {
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	t.Touch()
}

// Cancel closes the attempt because its order expired
func (t *Transaction) Cancel() {
	t.Status = TransactionStatusCancelled
	t.Touch()
}
