package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     int64
	}{
		{"positive cents", 1234, USD, 1234},
		{"zero", 0, USD, 0},
		{"negative cents", -5000, USD, -5000},
		{"euro", 1000, EUR, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.cents, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"precise decimal", "123.45", EUR, 12345},
		{"many decimals", "99.999", EUR, 10000}, // Rounds up
		{"whole number", "500", EUR, 50000},
		{"negative", "-25.50", EUR, -2550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			m := NewFromDecimal(d, tt.currency)
			assert.Equal(t, tt.want, m.Amount())
		})
	}

	t.Run("unknown currency falls back to EUR", func(t *testing.T) {
		m := NewFromDecimal(decimal.NewFromInt(10), "NOPE")
		assert.Equal(t, EUR, m.Currency())
	})
}

func TestZeroAndPredicates(t *testing.T) {
	m := Zero(EUR)
	assert.True(t, m.IsZero())
	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, EUR, m.Currency())

	neg := New(-150, EUR)
	assert.True(t, neg.IsNegative())
	assert.False(t, neg.IsZero())
	assert.Equal(t, int64(150), neg.Abs().Amount())
}

func TestToDecimalRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("4924.50")
	m := NewFromDecimal(d, EUR)
	assert.True(t, d.Equal(m.ToDecimal()), "expected %s got %s", d, m.ToDecimal())
	assert.Equal(t, "4924.5", m.String())
}

func TestPercentageOf(t *testing.T) {
	part := NewFromDecimal(decimal.NewFromInt(25), EUR)
	total := NewFromDecimal(decimal.NewFromInt(100), EUR)

	pct := part.PercentageOf(total)
	assert.True(t, pct.Equal(decimal.NewFromInt(25)), "got %s", pct)

	assert.True(t, part.PercentageOf(Zero(EUR)).IsZero())
	var nilMoney *Money
	assert.True(t, nilMoney.PercentageOf(total).IsZero())
}

func TestMarshalJSON(t *testing.T) {
	m := New(7550, EUR)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(7550), got["amount"])
	assert.Equal(t, EUR, got["currency"])
	assert.NotEmpty(t, got["display"])
}

func TestNilReceivers(t *testing.T) {
	var m *Money
	assert.Equal(t, int64(0), m.Amount())
	assert.Equal(t, "", m.Currency())
	assert.True(t, m.IsZero())
	assert.Equal(t, "0.00", m.String())
	assert.True(t, m.ToDecimal().IsZero())
}
