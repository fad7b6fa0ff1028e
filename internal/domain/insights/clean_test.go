package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"plain", "75.50", "75.50", true},
		{"negative", "-75.50", "-75.50", true},
		{"positive sign", "+12.00", "12.00", true},
		{"dollar symbol", "$1,234.56", "1234.56", true},
		{"euro european format", "€1.234,56", "1234.56", true},
		{"decimal comma", "42,10", "42.10", true},
		{"thousands comma only", "1,234", "1234", true},
		{"parenthesized negative", "(75.50)", "-75.50", true},
		{"brl symbol", "R$ 99,90", "99.90", true},
		{"whitespace", "  120  ", "120", true},
		{"empty", "", "0", false},
		{"garbage", "not-a-number", "0", false},
		{"double dot", "1.2.3", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAmount(tt.input)
			assert.Equal(t, tt.ok, ok)
			want := decimal.RequireFromString(tt.expected)
			assert.True(t, want.Equal(got), "expected %s, got %s", tt.expected, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"iso", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"european slash", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"german dots", "15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"iso with time", "2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"written month", "15 Mar 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.input)
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "expected %s, got %s", tt.expected, got)
		})
	}

	t.Run("ambiguous slash date reads day first", func(t *testing.T) {
		got := parseDate("03/04/2024")
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), *got)
	})

	t.Run("unreadable returns nil", func(t *testing.T) {
		assert.Nil(t, parseDate("someday"))
		assert.Nil(t, parseDate(""))
		assert.Nil(t, parseDate("   "))
		assert.Nil(t, parseDate("2024-13-45"))
	})
}

func TestCleanRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		tx := cleanRecord(RawRecord{
			Date:        "2024-03-15",
			Description: ptr(" Salary "),
			Amount:      ptr("-100.00"),
		})
		require.NotNil(t, tx.Date)
		assert.Equal(t, "Salary", tx.Description)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("everything missing", func(t *testing.T) {
		tx := cleanRecord(RawRecord{})
		assert.Nil(t, tx.Date)
		assert.Equal(t, UnknownDescription, tx.Description)
		assert.True(t, tx.Amount.IsZero())
	})
}
