package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is an immutable price snapshot of one purchased product.
// Checkout, order and invoice items all carry the same snapshot.
type LineItem struct {
	ProductID   uuid.UUID
	ProductName string
	UnitID      *uuid.UUID
	UnitName    string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// NewLineItem builds a line item and computes its total from the snapshot
func NewLineItem(productID uuid.UUID, name string, unitID *uuid.UUID, unitName string, unitPrice decimal.Decimal, qty int) LineItem {
	return LineItem{
		ProductID:   productID,
		ProductName: name,
		UnitID:      unitID,
		UnitName:    unitName,
		UnitPrice:   unitPrice,
		Quantity:    qty,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

// Amounts is the money snapshot shared by checkout, order and invoice
type Amounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// NewAmounts computes the total from its parts
func NewAmounts(subtotal, tax, shipping, discount decimal.Decimal) Amounts {
	return Amounts{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount).Round(2),
	}
}

// CloneItems copies a slice of line items
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
