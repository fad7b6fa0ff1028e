package insights

import (
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
)

// Generator cleans, categorizes, and aggregates raw statement records.
// It is safe for concurrent use once built.
type Generator struct {
	engine *categorization.Engine
	rules  []categorization.Rule
}

// NewGenerator creates a generator for the given rule table.
// A nil or empty table falls back to the built-in rules.
func NewGenerator(rules []categorization.Rule) *Generator {
	if len(rules) == 0 {
		rules = categorization.DefaultRules()
	}
	engine := categorization.NewEngine(rules)
	return &Generator{engine: engine, rules: engine.Rules()}
}

// Rules returns the effective rule table the generator categorizes with.
func (g *Generator) Rules() []categorization.Rule {
	out := make([]categorization.Rule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Generate produces a report for one batch of records.
//
// Empty input yields an empty report with zeroed stats, not an error. The
// only failure is ErrAmountColumnMissing: at least one record but not a
// single amount cell anywhere, meaning the table itself had no amount column.
func (g *Generator) Generate(records []RawRecord) (*Report, error) {
	if len(records) == 0 {
		return &Report{
			Transactions: []Transaction{},
			Stats:        emptyStats(),
		}, nil
	}

	if !hasAmountColumn(records) {
		return nil, ErrAmountColumnMissing
	}

	transactions := make([]Transaction, len(records))
	descriptions := make([]string, len(records))
	for i, rec := range records {
		transactions[i] = cleanRecord(rec)
		descriptions[i] = transactions[i].Description
	}

	matches := g.engine.MatchBatch(descriptions)
	for i, m := range matches {
		if m != nil {
			transactions[i].Category = m.Category
		} else {
			transactions[i].Category = categorization.Uncategorized
		}
	}

	return &Report{
		Transactions: transactions,
		Stats:        aggregate(transactions),
	}, nil
}

// hasAmountColumn reports whether any record carries an amount cell.
// Empty strings count as present; they clean to zero later.
func hasAmountColumn(records []RawRecord) bool {
	for _, rec := range records {
		if rec.Amount != nil {
			return true
		}
	}
	return false
}

func emptyStats() Stats {
	return Stats{
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		NetFlow:            decimal.Zero,
		SpendingByCategory: map[string]decimal.Decimal{},
	}
}

// aggregate computes statement totals.
//
// TotalIncome and TotalExpenses sum exactly the Income and Expenses
// categories. SpendingByCategory covers every non-Income category, including
// Transfers, Payments, and Uncategorized, so the breakdown accounts for all
// outgoing money even when it is not an expense in the strict sense.
func aggregate(transactions []Transaction) Stats {
	stats := emptyStats()
	stats.TransactionsCount = len(transactions)

	for _, tx := range transactions {
		switch tx.Category {
		case categorization.CategoryIncome:
			stats.TotalIncome = stats.TotalIncome.Add(tx.Amount)
		case categorization.CategoryExpenses:
			stats.TotalExpenses = stats.TotalExpenses.Add(tx.Amount)
		}

		if tx.Category != categorization.CategoryIncome {
			stats.SpendingByCategory[tx.Category] = stats.SpendingByCategory[tx.Category].Add(tx.Amount)
		}

		if tx.Category != categorization.Uncategorized {
			stats.CategorizedCount++
		}
	}

	stats.NetFlow = stats.TotalIncome.Sub(stats.TotalExpenses)
	stats.UncategorizedCount = stats.TransactionsCount - stats.CategorizedCount
	return stats
}
