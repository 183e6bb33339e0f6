package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryLine is a cart item enriched with catalog data for display
type SummaryLine struct {
	ItemID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitID      *uuid.UUID
	UnitName    string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
	LineWeight  decimal.Decimal
}

// Summary is a freshly computed view of an owner's cart
type Summary struct {
	Items       []SummaryLine
	Subtotal    decimal.Decimal
	ItemCount   int
	TotalWeight decimal.Decimal
}

// IsEmpty reports whether the cart has no items
func (s *Summary) IsEmpty() bool {
	return len(s.Items) == 0
}

// Summarize computes the summary for items. Prices come from the item snapshots;
// products only contribute names and weights. Products missing from the map
// still count towards the subtotal.
func Summarize(items []CartItem, products map[uuid.UUID]*Product) *Summary {
	s := &Summary{
		Items:       make([]SummaryLine, 0, len(items)),
		Subtotal:    decimal.Zero,
		TotalWeight: decimal.Zero,
	}
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		line := SummaryLine{
			ItemID:     item.ID,
			ProductID:  item.ProductID,
			UnitID:     item.Price.UnitID,
			UnitName:   item.Price.UnitName,
			UnitPrice:  item.Price.UnitPrice,
			Quantity:   item.Quantity,
			LineTotal:  item.Price.UnitPrice.Mul(qty),
			LineWeight: decimal.Zero,
		}
		if p, ok := products[item.ProductID]; ok {
			line.ProductName = p.Name
			line.LineWeight = p.WeightFor(item.Price.UnitID).Mul(qty)
		}
		s.Items = append(s.Items, line)
		s.Subtotal = s.Subtotal.Add(line.LineTotal)
		s.TotalWeight = s.TotalWeight.Add(line.LineWeight)
		s.ItemCount += item.Quantity
	}
	return s
}
