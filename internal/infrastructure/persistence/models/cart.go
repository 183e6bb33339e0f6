package models

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemModel is the persistence model for the CartItem entity.
// A cart is the set of items sharing an owner; there is no cart header row.
type CartItemModel struct {
	BaseModel
	OwnerColumns
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	PriceMode cart.PriceMode  `gorm:"type:varchar(10);not null"`
	UnitID    *uuid.UUID      `gorm:"type:uuid"`
	UnitName  string          `gorm:"type:varchar(50)"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain CartItem
func (m *CartItemModel) ToDomain() *cart.CartItem {
	return &cart.CartItem{
		BaseEntity: m.BaseModel.ToDomain(),
		Owner:      m.OwnerColumns.ToDomain(),
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		Price: cart.PriceSnapshot{
			Mode:      m.PriceMode,
			UnitID:    m.UnitID,
			UnitName:  m.UnitName,
			UnitPrice: m.UnitPrice,
		},
	}
}

// FromDomain populates the persistence model from a domain CartItem
func (m *CartItemModel) FromDomain(i *cart.CartItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.OwnerColumns = OwnerColumnsFromDomain(i.Owner)
	m.ProductID = i.ProductID
	m.Quantity = i.Quantity
	m.PriceMode = i.Price.Mode
	m.UnitID = i.Price.UnitID
	m.UnitName = i.Price.UnitName
	m.UnitPrice = i.Price.UnitPrice
}

// CartItemModelFromDomain creates a new persistence model from a domain CartItem
func CartItemModelFromDomain(i *cart.CartItem) *CartItemModel {
	m := &CartItemModel{}
	m.FromDomain(i)
	return m
}
