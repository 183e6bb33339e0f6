package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{"whole", "1500", 150000},
		{"two places", "12.34", 1234},
		{"rounds half up", "0.005", 1},
		{"zero", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinorUnits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(1234).Equal(decimal.RequireFromString("12.34")))
	assert.True(t, FromMinorUnits(0).IsZero())
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, NGN.IsValid())
	assert.False(t, Currency("XYZ").IsValid())
}

func TestAddress_ValueScan(t *testing.T) {
	addr := Address{FullName: "Ada Obi", Line1: "12 Marina", City: "Lagos", Country: "NG"}

	v, err := addr.Value()
	require.NoError(t, err)

	var scanned Address
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, addr, scanned)

	t.Run("empty address stores null", func(t *testing.T) {
		v, err := Address{}.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("scan nil", func(t *testing.T) {
		var a Address
		require.NoError(t, a.Scan(nil))
		assert.True(t, a.IsEmpty())
	})

	t.Run("scan bad type", func(t *testing.T) {
		var a Address
		assert.Error(t, a.Scan(42))
	})
}

func TestAddress_Validate(t *testing.T) {
	assert.NoError(t, Address{Line1: "1 Road", City: "Abuja", Country: "NG"}.Validate())
	assert.Error(t, Address{City: "Abuja", Country: "NG"}.Validate())
	assert.Error(t, Address{Line1: "1 Road", Country: "NG"}.Validate())
	assert.Error(t, Address{Line1: "1 Road", City: "Abuja"}.Validate())
	assert.Equal(t, "1 Road, Abuja, NG", Address{Line1: "1 Road", City: "Abuja", Country: "NG"}.String())
}
