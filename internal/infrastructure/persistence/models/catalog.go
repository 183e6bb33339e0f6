package models

import (
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the read side of the product catalog. Only the columns the
// cart and checkout read are mapped; catalog management owns the table.
type ProductModel struct {
	BaseModel
	Name      string             `gorm:"type:varchar(200);not null"`
	PriceMode cart.PriceMode     `gorm:"type:varchar(10);not null;default:'FIXED'"`
	Price     decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Weight    decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive  bool               `gorm:"not null;default:true"`
	Units     []ProductUnitModel `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *cart.Product {
	p := &cart.Product{
		ID:        m.ID,
		Name:      m.Name,
		PriceMode: m.PriceMode,
		Price:     m.Price,
		Weight:    m.Weight,
		IsActive:  m.IsActive,
		Units:     make([]cart.ProductUnit, len(m.Units)),
	}
	for i, u := range m.Units {
		p.Units[i] = cart.ProductUnit{ID: u.ID, Name: u.Name, Price: u.Price, Weight: u.Weight}
	}
	return p
}

// ProductUnitModel is a purchasable unit of a per-unit priced product
type ProductUnitModel struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"type:varchar(50);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Weight    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductUnitModel) TableName() string {
	return "product_units"
}
