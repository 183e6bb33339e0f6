package cart

import (
	"testing"

	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPrice(p string) PriceSnapshot {
	return PriceSnapshot{Mode: PriceModeFixed, UnitPrice: decimal.RequireFromString(p)}
}

func TestNewCartItem(t *testing.T) {
	owner := shared.GuestOwner("g-1")

	t.Run("valid", func(t *testing.T) {
		item, err := NewCartItem(owner, uuid.New(), 2, fixedPrice("10"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, item.ID)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := NewCartItem(owner, uuid.New(), 0, fixedPrice("10"))
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := NewCartItem(owner, uuid.Nil, 1, fixedPrice("10"))
		assert.ErrorIs(t, err, ErrProductRequired)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := NewCartItem(shared.Owner{}, uuid.New(), 1, fixedPrice("10"))
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestCartItem_SameLine(t *testing.T) {
	owner := shared.GuestOwner("g-1")
	productID := uuid.New()
	unitA := uuid.New()
	unitB := uuid.New()

	noUnit, _ := NewCartItem(owner, productID, 1, fixedPrice("5"))
	noUnit2, _ := NewCartItem(owner, productID, 3, fixedPrice("5"))
	withA, _ := NewCartItem(owner, productID, 1, PriceSnapshot{Mode: PriceModeUnit, UnitID: &unitA})
	withA2, _ := NewCartItem(owner, productID, 1, PriceSnapshot{Mode: PriceModeUnit, UnitID: &unitA})
	withB, _ := NewCartItem(owner, productID, 1, PriceSnapshot{Mode: PriceModeUnit, UnitID: &unitB})

	assert.True(t, noUnit.SameLine(noUnit2))
	assert.True(t, withA.SameLine(withA2))
	assert.False(t, noUnit.SameLine(withA))
	assert.False(t, withA.SameLine(withB))
}

func TestCartItem_CheckCoherence(t *testing.T) {
	owner := shared.GuestOwner("g-1")
	unitID := uuid.New()
	fixed := &Product{ID: uuid.New(), PriceMode: PriceModeFixed, IsActive: true}
	perUnit := &Product{ID: uuid.New(), PriceMode: PriceModeUnit, IsActive: true,
		Units: []ProductUnit{{ID: unitID, Name: "crate", Price: decimal.NewFromInt(900)}}}

	fixedItem, _ := NewCartItem(owner, fixed.ID, 1, fixedPrice("5"))
	unitItem, _ := NewCartItem(owner, perUnit.ID, 1, PriceSnapshot{Mode: PriceModeUnit, UnitID: &unitID})
	other := uuid.New()
	staleUnit, _ := NewCartItem(owner, perUnit.ID, 1, PriceSnapshot{Mode: PriceModeUnit, UnitID: &other})

	assert.NoError(t, fixedItem.CheckCoherence(fixed))
	assert.NoError(t, unitItem.CheckCoherence(perUnit))
	assert.ErrorIs(t, fixedItem.CheckCoherence(perUnit), ErrIncoherentPricing)
	assert.ErrorIs(t, unitItem.CheckCoherence(fixed), ErrIncoherentPricing)
	assert.ErrorIs(t, staleUnit.CheckCoherence(perUnit), ErrIncoherentPricing)
	assert.ErrorIs(t, fixedItem.CheckCoherence(nil), ErrIncoherentPricing)

	fixed.IsActive = false
	assert.ErrorIs(t, fixedItem.CheckCoherence(fixed), ErrIncoherentPricing)
}

func TestSummarize(t *testing.T) {
	owner := shared.GuestOwner("g-1")
	p := &Product{ID: uuid.New(), Name: "Rice 5kg", PriceMode: PriceModeFixed, Weight: decimal.NewFromInt(5), IsActive: true}

	a, _ := NewCartItem(owner, p.ID, 2, fixedPrice("12.50"))
	b, _ := NewCartItem(owner, uuid.New(), 1, fixedPrice("3"))

	s := Summarize([]CartItem{*a, *b}, map[uuid.UUID]*Product{p.ID: p})

	require.Len(t, s.Items, 2)
	assert.Equal(t, "Rice 5kg", s.Items[0].ProductName)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("28")))
	assert.Equal(t, 3, s.ItemCount)
	assert.True(t, s.TotalWeight.Equal(decimal.NewFromInt(10)))
	assert.False(t, s.IsEmpty())

	empty := Summarize(nil, nil)
	assert.True(t, empty.IsEmpty())
	assert.True(t, empty.Subtotal.IsZero())
}
