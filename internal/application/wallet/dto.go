package wallet

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payer identifies the customer funding a deposit
type Payer struct {
	Email string
	Name  string
	Phone string
}

// DepositRequest opens a gateway-funded top-up
type DepositRequest struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	CallbackURL string
	Payer       Payer
}

// DepositResult is returned once the gateway session is open
type DepositResult struct {
	Transaction *wallet.Transaction
	PaymentURL  string
	AccessToken string
	Reference   string
}

// VerifyOutcome is the result of a deposit verification
type VerifyOutcome string

const (
	VerifyOutcomeVerified         VerifyOutcome = "verified"
	VerifyOutcomeAlreadyVerified  VerifyOutcome = "already_verified"
	VerifyOutcomePreviouslyFailed VerifyOutcome = "previously_failed"
	VerifyOutcomeFailed           VerifyOutcome = "failed"
	// VerifyOutcomePending means the gateway has not settled yet; nothing changed
	VerifyOutcomePending VerifyOutcome = "pending"
)

// VerifyDepositResult describes the entry after verification
type VerifyDepositResult struct {
	Outcome     VerifyOutcome
	Transaction *wallet.Transaction
	Wallet      *wallet.Wallet
}

// TransferRequest moves funds out of a wallet. To is wallet.SystemSink for
// payments that leave the wallet system.
type TransferRequest struct {
	From        uuid.UUID
	To          uuid.UUID
	Amount      decimal.Decimal
	Description string
	// Type of the debit entry; defaults to ORDER_PAYMENT for the sink and TRANSFER_OUT otherwise
	Type wallet.TransactionType
	// Reference is optional; one is generated when empty
	Reference string
}

// TransferResult holds the entries written by a transfer. Credit is nil
// when the recipient is the system sink.
type TransferResult struct {
	Reference string
	Debit     *wallet.Transaction
	Credit    *wallet.Transaction
}
