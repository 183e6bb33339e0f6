package models

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentProviderModel is the persistence model for a gateway configuration row
type PaymentProviderModel struct {
	BaseModel
	Name         string   `gorm:"type:varchar(20);not null;uniqueIndex"`
	DisplayName  string   `gorm:"type:varchar(50);not null"`
	Capabilities []string `gorm:"type:text;serializer:json"`
	IsActive     bool     `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentProviderModel) TableName() string {
	return "payment_providers"
}

// ToDomain converts the persistence model to a domain PaymentProvider
func (m *PaymentProviderModel) ToDomain() *order.PaymentProvider {
	return &order.PaymentProvider{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		Capabilities: m.Capabilities,
		IsActive:     m.IsActive,
	}
}

// PaymentProviderModelFromDomain creates a new persistence model from a domain PaymentProvider
func PaymentProviderModelFromDomain(p *order.PaymentProvider) *PaymentProviderModel {
	m := &PaymentProviderModel{
		Name:         p.Name,
		DisplayName:  p.DisplayName,
		Capabilities: p.Capabilities,
		IsActive:     p.IsActive,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// TransactionModel is the persistence model for a gateway payment attempt
type TransactionModel struct {
	BaseModel
	OrderID              uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProviderID           uuid.UUID               `gorm:"type:uuid;not null"`
	Reference            string                  `gorm:"type:varchar(100);not null;uniqueIndex"`
	ProviderReference    string                  `gorm:"type:varchar(100)"`
	GatewayTransactionID string                  `gorm:"type:varchar(100);index"`
	Amount               decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	ProcessingFee        decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	NetAmount            decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	Currency             string                  `gorm:"type:varchar(3);not null"`
	Status               order.TransactionStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	FailureReason        string                  `gorm:"type:varchar(500)"`
	Payload              string                  `gorm:"type:text"`
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *order.Transaction {
	return &order.Transaction{
		BaseEntity:           m.BaseModel.ToDomain(),
		OrderID:              m.OrderID,
		ProviderID:           m.ProviderID,
		Reference:            m.Reference,
		ProviderReference:    m.ProviderReference,
		GatewayTransactionID: m.GatewayTransactionID,
		Amount:               m.Amount,
		ProcessingFee:        m.ProcessingFee,
		NetAmount:            m.NetAmount,
		Currency:             m.Currency,
		Status:               m.Status,
		FailureReason:        m.FailureReason,
		Payload:              m.Payload,
		CompletedAt:          m.CompletedAt,
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *order.Transaction) *TransactionModel {
	m := &TransactionModel{
		OrderID:              t.OrderID,
		ProviderID:           t.ProviderID,
		Reference:            t.Reference,
		ProviderReference:    t.ProviderReference,
		GatewayTransactionID: t.GatewayTransactionID,
		Amount:               t.Amount,
		ProcessingFee:        t.ProcessingFee,
		NetAmount:            t.NetAmount,
		Currency:             t.Currency,
		Status:               t.Status,
		FailureReason:        t.FailureReason,
		Payload:              t.Payload,
		CompletedAt:          t.CompletedAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// WebhookEventModel is an audit row for an accepted webhook delivery
type WebhookEventModel struct {
	BaseModel
	Provider   payment.ProviderName       `gorm:"type:varchar(20);not null"`
	Reference  string                     `gorm:"type:varchar(100);not null;index"`
	Status     payment.NotificationStatus `gorm:"type:varchar(20);not null"`
	Outcome    payment.WebhookOutcome     `gorm:"type:varchar(20);not null"`
	BodyHash   string                     `gorm:"type:varchar(64);not null"`
	ArchiveKey string                     `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (WebhookEventModel) TableName() string {
	return "webhook_events"
}

// ToDomain converts the persistence model to a domain WebhookEvent
func (m *WebhookEventModel) ToDomain() *payment.WebhookEvent {
	return &payment.WebhookEvent{
		BaseEntity: m.BaseModel.ToDomain(),
		Provider:   m.Provider,
		Reference:  m.Reference,
		Status:     m.Status,
		Outcome:    m.Outcome,
		BodyHash:   m.BodyHash,
		ArchiveKey: m.ArchiveKey,
	}
}

// WebhookEventModelFromDomain creates a new persistence model from a domain WebhookEvent
func WebhookEventModelFromDomain(e *payment.WebhookEvent) *WebhookEventModel {
	m := &WebhookEventModel{
		Provider:   e.Provider,
		Reference:  e.Reference,
		Status:     e.Status,
		Outcome:    e.Outcome,
		BodyHash:   e.BodyHash,
		ArchiveKey: e.ArchiveKey,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
