package models

import (
	"time"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/order"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// OwnerColumns stores a shared.Owner. Exactly one column is set.
type OwnerColumns struct {
	UserID  *uuid.UUID `gorm:"type:uuid;index"`
	GuestID string     `gorm:"type:varchar(64);index"`
}

// ToDomain converts the columns to a domain Owner
func (c OwnerColumns) ToDomain() shared.Owner {
	if c.UserID != nil {
		return shared.UserOwner(*c.UserID)
	}
	return shared.GuestOwner(c.GuestID)
}

// OwnerColumnsFromDomain converts a domain Owner to columns
func OwnerColumnsFromDomain(o shared.Owner) OwnerColumns {
	if o.IsUser() {
		id := *o.UserID
		return OwnerColumns{UserID: &id}
	}
	return OwnerColumns{GuestID: o.GuestID}
}

// AmountColumns stores an order.Amounts money snapshot
type AmountColumns struct {
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// ToDomain converts the columns to domain Amounts
func (c AmountColumns) ToDomain() order.Amounts {
	return order.Amounts{
		Subtotal: c.Subtotal,
		Tax:      c.TaxAmount,
		Shipping: c.ShippingAmount,
		Discount: c.DiscountAmount,
		Total:    c.TotalAmount,
	}
}

// AmountColumnsFromDomain converts domain Amounts to columns
func AmountColumnsFromDomain(a order.Amounts) AmountColumns {
	return AmountColumns{
		Subtotal:       a.Subtotal,
		TaxAmount:      a.Tax,
		ShippingAmount: a.Shipping,
		DiscountAmount: a.Discount,
		TotalAmount:    a.Total,
	}
}

// LineItemColumns stores an immutable order.LineItem snapshot
type LineItemColumns struct {
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	UnitID      *uuid.UUID      `gorm:"type:uuid"`
	UnitName    string          `gorm:"type:varchar(50)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// ToDomain converts the columns to a domain LineItem
func (c LineItemColumns) ToDomain() order.LineItem {
	return order.LineItem{
		ProductID:   c.ProductID,
		ProductName: c.ProductName,
		UnitID:      c.UnitID,
		UnitName:    c.UnitName,
		UnitPrice:   c.UnitPrice,
		Quantity:    c.Quantity,
		LineTotal:   c.LineTotal,
	}
}

// LineItemColumnsFromDomain converts a domain LineItem to columns
func LineItemColumnsFromDomain(li order.LineItem) LineItemColumns {
	return LineItemColumns{
		ProductID:   li.ProductID,
		ProductName: li.ProductName,
		UnitID:      li.UnitID,
		UnitName:    li.UnitName,
		UnitPrice:   li.UnitPrice,
		Quantity:    li.Quantity,
		LineTotal:   li.LineTotal,
	}
}

// All returns every model in dependency order, for AutoMigrate in tests and
// SQLite development databases. PostgreSQL uses the SQL migrations instead.
func All() []any {
	return []any{
		&ProductModel{},
		&ProductUnitModel{},
		&CartItemModel{},
		&PaymentProviderModel{},
		&OrderModel{},
		&OrderItemModel{},
		&CheckoutModel{},
		&CheckoutItemModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&TransactionModel{},
		&WebhookEventModel{},
		&WalletModel{},
		&WalletTransactionModel{},
	}
}
