package categorization

import "strings"

// Category names assigned by the default rule table.
const (
	CategoryIncome    = "Income"
	CategoryExpenses  = "Expenses"
	CategoryTransfers = "Transfers"
	CategoryPayments  = "Payments"

	// Uncategorized is assigned when no keyword matches a description.
	Uncategorized = "Uncategorized"
)

// Rule maps a keyword to a category. Matching is a case-insensitive
// substring check against the transaction description.
type Rule struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// DefaultRules returns the built-in keyword table. Order is part of the
// contract: when several keywords appear in one description, the rule
// furthest down the table wins. "Received payment from Client A" must hit
// "received payment" (Income), not "payment" (Payments).
func DefaultRules() []Rule {
	return []Rule{
		{Keyword: "salary", Category: CategoryIncome},
		{Keyword: "deposit", Category: CategoryIncome},
		{Keyword: "groceries", Category: CategoryExpenses},
		{Keyword: "supermarket", Category: CategoryExpenses},
		{Keyword: "restaurant", Category: CategoryExpenses},
		{Keyword: "rent", Category: CategoryExpenses},
		{Keyword: "mortgage", Category: CategoryExpenses},
		{Keyword: "utilities", Category: CategoryExpenses},
		{Keyword: "gas", Category: CategoryExpenses},
		{Keyword: "transport", Category: CategoryExpenses},
		{Keyword: "travel", Category: CategoryExpenses},
		{Keyword: "shopping", Category: CategoryExpenses},
		{Keyword: "pharmacy", Category: CategoryExpenses},
		{Keyword: "doctor", Category: CategoryExpenses},
		{Keyword: "health", Category: CategoryExpenses},
		{Keyword: "insurance", Category: CategoryExpenses},
		{Keyword: "gym", Category: CategoryExpenses},
		{Keyword: "entertainment", Category: CategoryExpenses},
		{Keyword: "transfer", Category: CategoryTransfers},
		{Keyword: "payment", Category: CategoryPayments},
		{Keyword: "withdrawal", Category: CategoryExpenses},
		{Keyword: "atm", Category: CategoryExpenses},
		{Keyword: "interest", Category: CategoryIncome},
		{Keyword: "freelance", Category: CategoryIncome},
		{Keyword: "invoice", Category: CategoryIncome},
		{Keyword: "coffee", Category: CategoryExpenses},
		{Keyword: "netflix", Category: CategoryExpenses},
		{Keyword: "subscription", Category: CategoryExpenses},
		{Keyword: "received payment", Category: CategoryIncome},
		{Keyword: "client payment", Category: CategoryIncome},
	}
}

// normalizeKeyword lowercases and trims a keyword for matching.
func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// dedupeKeepLast drops blank keywords and collapses duplicates, keeping each
// keyword's last occurrence in its original position. Relative order of the
// survivors is unchanged, so last-wins selection over the result behaves
// exactly like last-wins over the full table.
func dedupeKeepLast(rules []Rule) []Rule {
	last := make(map[string]int, len(rules))
	for i, r := range rules {
		kw := normalizeKeyword(r.Keyword)
		if kw == "" {
			continue
		}
		last[kw] = i
	}

	out := make([]Rule, 0, len(last))
	for i, r := range rules {
		kw := normalizeKeyword(r.Keyword)
		if kw == "" || last[kw] != i {
			continue
		}
		out = append(out, Rule{Keyword: kw, Category: r.Category})
	}
	return out
}
