package insights

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// cleanRecord normalizes one raw record. Nothing here fails: a missing
// description becomes UnknownDescription, an unparseable amount becomes zero,
// an unparseable date becomes nil.
func cleanRecord(rec RawRecord) Transaction {
	desc := UnknownDescription
	if rec.Description != nil {
		desc = strings.TrimSpace(*rec.Description)
	}

	amount := decimal.Zero
	if rec.Amount != nil {
		if parsed, ok := parseAmount(*rec.Amount); ok {
			amount = parsed
		}
	}

	return Transaction{
		Date:        parseDate(rec.Date),
		Description: desc,
		Amount:      amount.Abs(),
	}
}

// dateFormats are tried in order. Day-first forms come before month-first;
// statements here are overwhelmingly European.
var dateFormats = []string{
	"2006-01-02",           // ISO 8601
	"02/01/2006",           // DD/MM/YYYY (European)
	"01/02/2006",           // MM/DD/YYYY (American)
	"02-01-2006",           // DD-MM-YYYY
	"01-02-2006",           // MM-DD-YYYY
	"2006/01/02",           // YYYY/MM/DD
	"02.01.2006",           // DD.MM.YYYY (German)
	"2006-01-02T15:04:05Z", // ISO 8601 with time
	"2006-01-02 15:04:05",  // ISO with space
	"02/01/2006 15:04",     // European with time
	"01/02/2006 15:04",     // American with time
	"2 Jan 2006",
	"Jan 2, 2006",
}

// parseDate returns nil for anything it cannot read.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t
		}
	}
	return nil
}

// parseAmount reads common currency notation: symbols, thousands separators,
// European decimal commas, and parenthesized negatives. The sign is parsed
// but callers take the absolute value anyway.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	// Longer symbols first so "R$" is gone before "$" is tried.
	for _, sym := range []string{"R$", "CHF", "USD", "EUR", "GBP", "BRL", "$", "€", "£"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(") {
		negative = true
		s = strings.TrimPrefix(s, "-")
		s = strings.Trim(s, "()")
		s = strings.TrimSpace(s)
	}
	s = strings.TrimPrefix(s, "+")

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		// Both present: the later one is the decimal separator.
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		// Comma only: decimal separator when it looks like cents,
		// thousands separator otherwise.
		if len(s)-comma-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if negative {
		d = d.Neg()
	}
	return d, true
}
