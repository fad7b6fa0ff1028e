// Package insights turns raw statement records into categorized transactions
// and summary statistics. The generator is pure computation: no IO, no
// persistence, deterministic for a given rule table.
package insights

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownDescription replaces descriptions that were absent from the source.
const UnknownDescription = "Unknown"

// ErrAmountColumnMissing is returned when no record carries an amount at all,
// meaning the extracted table had no amount column to begin with.
var ErrAmountColumnMissing = errors.New("statement has no amount column")

// RawRecord is one extracted statement row before cleaning. Description and
// Amount are pointers because a short row can miss those cells entirely;
// an absent cell and an empty cell clean differently.
type RawRecord struct {
	Date        string
	Description *string
	Amount      *string
}

// Transaction is a cleaned, categorized statement row. Date is nil when the
// source value was absent or unparseable. Amount is always non-negative;
// direction comes from Category.
type Transaction struct {
	Date        *time.Time      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
}

// Stats summarizes a statement. All decimal fields are exact.
type Stats struct {
	TotalIncome        decimal.Decimal            `json:"total_income"`
	TotalExpenses      decimal.Decimal            `json:"total_expenses"`
	NetFlow            decimal.Decimal            `json:"net_flow"`
	SpendingByCategory map[string]decimal.Decimal `json:"spending_by_category"`
	TransactionsCount  int                        `json:"transactions_count"`
	CategorizedCount   int                        `json:"categorized_count"`
	UncategorizedCount int                        `json:"uncategorized_count"`
}

// CategoryTotal is one row of the spending breakdown in display order.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// CategoriesByAmount returns the spending breakdown sorted by amount
// descending, ties broken alphabetically.
func (s Stats) CategoriesByAmount() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(s.SpendingByCategory))
	for category, total := range s.SpendingByCategory {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Report is the full output for one statement batch.
type Report struct {
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
}
