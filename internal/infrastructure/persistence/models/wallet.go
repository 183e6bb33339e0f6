package models

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletModel is the persistence model for the Wallet entity
type WalletModel struct {
	BaseModel
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency       string          `gorm:"type:varchar(3);not null"`
	IsActive       bool            `gorm:"not null;default:true"`
	LastActivityAt *time.Time
}

// TableName returns the table name for GORM
func (WalletModel) TableName() string {
	return "wallets"
}

// ToDomain converts the persistence model to a domain Wallet
func (m *WalletModel) ToDomain() *wallet.Wallet {
	return &wallet.Wallet{
		BaseEntity:     m.BaseModel.ToDomain(),
		UserID:         m.UserID,
		Balance:        m.Balance,
		Currency:       m.Currency,
		IsActive:       m.IsActive,
		LastActivityAt: m.LastActivityAt,
	}
}

// WalletModelFromDomain creates a new persistence model from a domain Wallet
func WalletModelFromDomain(w *wallet.Wallet) *WalletModel {
	m := &WalletModel{
		UserID:         w.UserID,
		Balance:        w.Balance,
		Currency:       w.Currency,
		IsActive:       w.IsActive,
		LastActivityAt: w.LastActivityAt,
	}
	m.FromDomainBaseEntity(w.BaseEntity)
	return m
}

// WalletTransactionModel is the persistence model for a wallet ledger entry
type WalletTransactionModel struct {
	BaseModel
	WalletID             uuid.UUID                `gorm:"type:uuid;not null;index"`
	Type                 wallet.TransactionType   `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Status               wallet.TransactionStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	BalanceBefore        decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceAfter         decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Reference            string                   `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description          string                   `gorm:"type:varchar(500)"`
	Provider             string                   `gorm:"type:varchar(20)"`
	CounterpartyWalletID *uuid.UUID               `gorm:"type:uuid"`
	FailureReason        string                   `gorm:"type:varchar(500)"`
	Metadata             map[string]string        `gorm:"type:text;serializer:json"`
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

// ToDomain converts the persistence model to a domain wallet Transaction
func (m *WalletTransactionModel) ToDomain() *wallet.Transaction {
	return &wallet.Transaction{
		BaseEntity:           m.BaseModel.ToDomain(),
		WalletID:             m.WalletID,
		Type:                 m.Type,
		Amount:               m.Amount,
		Status:               m.Status,
		BalanceBefore:        m.BalanceBefore,
		BalanceAfter:         m.BalanceAfter,
		Reference:            m.Reference,
		Description:          m.Description,
		Provider:             m.Provider,
		CounterpartyWalletID: m.CounterpartyWalletID,
		FailureReason:        m.FailureReason,
		Metadata:             m.Metadata,
		CompletedAt:          m.CompletedAt,
	}
}

// WalletTransactionModelFromDomain creates a new persistence model from a domain wallet Transaction
func WalletTransactionModelFromDomain(t *wallet.Transaction) *WalletTransactionModel {
	m := &WalletTransactionModel{
		WalletID:             t.WalletID,
		Type:                 t.Type,
		Amount:               t.Amount,
		Status:               t.Status,
		BalanceBefore:        t.BalanceBefore,
		BalanceAfter:         t.BalanceAfter,
		Reference:            t.Reference,
		Description:          t.Description,
		Provider:             t.Provider,
		CounterpartyWalletID: t.CounterpartyWalletID,
		FailureReason:        t.FailureReason,
		Metadata:             t.Metadata,
		CompletedAt:          t.CompletedAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
