package models

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutModel is the persistence model for the Checkout entity
type CheckoutModel struct {
	BaseModel
	OwnerColumns
	AmountColumns
	Status          order.CheckoutStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentStatus   order.PaymentStatus  `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	Currency        string               `gorm:"type:varchar(3);not null"`
	ShippingAddress valueobject.Address  `gorm:"type:text"`
	BillingAddress  valueobject.Address  `gorm:"type:text"`
	OrderID         *uuid.UUID           `gorm:"type:uuid;uniqueIndex"`
	ExpiresAt       time.Time            `gorm:"not null;index"`
	Items           []CheckoutItemModel  `gorm:"foreignKey:CheckoutID;references:ID"`
}

// TableName returns the table name for GORM
func (CheckoutModel) TableName() string {
	return "checkouts"
}

// ToDomain converts the persistence model to a domain Checkout
func (m *CheckoutModel) ToDomain() *order.Checkout {
	c := &order.Checkout{
		BaseEntity:      m.BaseModel.ToDomain(),
		Owner:           m.OwnerColumns.ToDomain(),
		Status:          m.Status,
		PaymentStatus:   m.PaymentStatus,
		Amounts:         m.AmountColumns.ToDomain(),
		Currency:        m.Currency,
		ShippingAddress: m.ShippingAddress,
		BillingAddress:  m.BillingAddress,
		OrderID:         m.OrderID,
		ExpiresAt:       m.ExpiresAt,
		Items:           make([]order.LineItem, len(m.Items)),
	}
	for i, item := range m.Items {
		c.Items[i] = item.ToDomain()
	}
	return c
}

// FromDomain populates the persistence model from a domain Checkout.
// Items are mapped separately by the repository because they are written once.
func (m *CheckoutModel) FromDomain(c *order.Checkout) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.OwnerColumns = OwnerColumnsFromDomain(c.Owner)
	m.AmountColumns = AmountColumnsFromDomain(c.Amounts)
	m.Status = c.Status
	m.PaymentStatus = c.PaymentStatus
	m.Currency = c.Currency
	m.ShippingAddress = c.ShippingAddress
	m.BillingAddress = c.BillingAddress
	m.OrderID = c.OrderID
	m.ExpiresAt = c.ExpiresAt
}

// CheckoutModelFromDomain creates a new persistence model from a domain Checkout
func CheckoutModelFromDomain(c *order.Checkout) *CheckoutModel {
	m := &CheckoutModel{}
	m.FromDomain(c)
	return m
}

// CheckoutItemModel is a line item snapshot of a checkout
type CheckoutItemModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CheckoutID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItemColumns
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CheckoutItemModel) TableName() string {
	return "checkout_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *CheckoutItemModel) ToDomain() order.LineItem {
	return m.LineItemColumns.ToDomain()
}

// OrderModel is the persistence model for the Order entity
type OrderModel struct {
	BaseModel
	OwnerColumns
	AmountColumns
	OrderNumber          string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status               order.OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentStatus        order.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ProviderName         string              `gorm:"type:varchar(20)"`
	PaymentID            string              `gorm:"type:varchar(100);index"`
	TransactionID        string              `gorm:"type:varchar(100);index"`
	GatewayTransactionID string              `gorm:"type:varchar(100);index"`
	Currency             string              `gorm:"type:varchar(3);not null"`
	ShippingAddress      valueobject.Address `gorm:"type:text"`
	BillingAddress       valueobject.Address `gorm:"type:text"`
	FailureReason        string              `gorm:"type:varchar(500)"`
	ProcessedAt          *time.Time
	Items                []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseEntity:           m.BaseModel.ToDomain(),
		Owner:                m.OwnerColumns.ToDomain(),
		OrderNumber:          m.OrderNumber,
		Status:               m.Status,
		PaymentStatus:        m.PaymentStatus,
		ProviderName:         m.ProviderName,
		PaymentID:            m.PaymentID,
		TransactionID:        m.TransactionID,
		GatewayTransactionID: m.GatewayTransactionID,
		Amounts:              m.AmountColumns.ToDomain(),
		Currency:             m.Currency,
		ShippingAddress:      m.ShippingAddress,
		BillingAddress:       m.BillingAddress,
		FailureReason:        m.FailureReason,
		ProcessedAt:          m.ProcessedAt,
		Items:                make([]order.LineItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order (items excluded)
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.OwnerColumns = OwnerColumnsFromDomain(o.Owner)
	m.AmountColumns = AmountColumnsFromDomain(o.Amounts)
	m.OrderNumber = o.OrderNumber
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.ProviderName = o.ProviderName
	m.PaymentID = o.PaymentID
	m.TransactionID = o.TransactionID
	m.GatewayTransactionID = o.GatewayTransactionID
	m.Currency = o.Currency
	m.ShippingAddress = o.ShippingAddress
	m.BillingAddress = o.BillingAddress
	m.FailureReason = o.FailureReason
	m.ProcessedAt = o.ProcessedAt
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is an immutable line item snapshot of an order
type OrderItemModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItemColumns
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *OrderItemModel) ToDomain() order.LineItem {
	return m.LineItemColumns.ToDomain()
}

// InvoiceModel is the persistence model for the Invoice entity
type InvoiceModel struct {
	BaseModel
	OwnerColumns
	AmountColumns
	OrderID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex"`
	InvoiceNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        order.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	PaymentStatus order.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	AmountPaid    decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Currency      string              `gorm:"type:varchar(3);not null"`
	DueDate       time.Time           `gorm:"not null"`
	PaidAt        *time.Time
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *order.Invoice {
	inv := &order.Invoice{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderID:       m.OrderID,
		Owner:         m.OwnerColumns.ToDomain(),
		InvoiceNumber: m.InvoiceNumber,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		Amounts:       m.AmountColumns.ToDomain(),
		AmountPaid:    m.AmountPaid,
		BalanceAmount: m.BalanceAmount,
		Currency:      m.Currency,
		DueDate:       m.DueDate,
		PaidAt:        m.PaidAt,
		Items:         make([]order.LineItem, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Items[i] = item.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice (items excluded)
func (m *InvoiceModel) FromDomain(inv *order.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.OwnerColumns = OwnerColumnsFromDomain(inv.Owner)
	m.AmountColumns = AmountColumnsFromDomain(inv.Amounts)
	m.OrderID = inv.OrderID
	m.InvoiceNumber = inv.InvoiceNumber
	m.Status = inv.Status
	m.PaymentStatus = inv.PaymentStatus
	m.AmountPaid = inv.AmountPaid
	m.BalanceAmount = inv.BalanceAmount
	m.Currency = inv.Currency
	m.DueDate = inv.DueDate
	m.PaidAt = inv.PaidAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *order.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is a line item snapshot of an invoice
type InvoiceItemModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	LineItemColumns
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *InvoiceItemModel) ToDomain() order.LineItem {
	return m.LineItemColumns.ToDomain()
}
