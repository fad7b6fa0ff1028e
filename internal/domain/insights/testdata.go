package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// StatementGenerator produces realistic raw statement records for tests and
// benchmarks using gofakeit. Descriptions are built around the default rule
// keywords so generated statements categorize the way real ones do.
type StatementGenerator struct {
	faker *gofakeit.Faker
}

// NewStatementGenerator creates a generator with a random seed.
func NewStatementGenerator() *StatementGenerator {
	return &StatementGenerator{faker: gofakeit.New(0)}
}

// NewStatementGeneratorWithSeed creates a generator with a fixed seed for
// reproducible statements.
func NewStatementGeneratorWithSeed(seed int64) *StatementGenerator {
	return &StatementGenerator{faker: gofakeit.New(seed)}
}

var incomeDescriptions = []string{
	"%s salary April",
	"Salary deposit %s",
	"Freelance invoice %s",
	"Interest credit Q1",
	"Received payment from %s",
	"Client payment - %s",
}

var expenseDescriptions = []string{
	"Groceries at %s",
	"Supermarket %s",
	"Restaurant dinner %s",
	"Rent apartment %s",
	"Utilities bill %s",
	"Gas station %s",
	"Pharmacy %s",
	"Gym membership",
	"Netflix subscription",
	"Coffee at %s",
	"ATM withdrawal %s",
	"Shopping %s",
}

var uncategorizedDescriptions = []string{
	"POS %s REF %s",
	"CARD %s %s",
	"DEB %s",
}

// IncomeRecord generates a record that categorizes as Income.
func (g *StatementGenerator) IncomeRecord() RawRecord {
	desc := g.fill(incomeDescriptions[g.faker.Number(0, len(incomeDescriptions)-1)])
	return RawRecord{
		Date:        g.randomDate(),
		Description: ptr(desc),
		Amount:      ptr(fmt.Sprintf("%.2f", g.faker.Price(1000, 8000))),
	}
}

// ExpenseRecord generates a record that categorizes as Expenses.
// Statements list expenses as negatives; cleaning takes the absolute value.
func (g *StatementGenerator) ExpenseRecord() RawRecord {
	desc := g.fill(expenseDescriptions[g.faker.Number(0, len(expenseDescriptions)-1)])
	return RawRecord{
		Date:        g.randomDate(),
		Description: ptr(desc),
		Amount:      ptr(fmt.Sprintf("-%.2f", g.faker.Price(5, 500))),
	}
}

// UncategorizedRecord generates a record no keyword matches.
func (g *StatementGenerator) UncategorizedRecord() RawRecord {
	tmpl := uncategorizedDescriptions[g.faker.Number(0, len(uncategorizedDescriptions)-1)]
	var desc string
	if strings.Count(tmpl, "%s") == 2 {
		desc = fmt.Sprintf(tmpl, g.faker.DigitN(4), g.faker.DigitN(4))
	} else {
		desc = fmt.Sprintf(tmpl, g.faker.DigitN(6))
	}
	return RawRecord{
		Date:        g.randomDate(),
		Description: ptr(desc),
		Amount:      ptr(fmt.Sprintf("-%.2f", g.faker.Price(5, 200))),
	}
}

// TransferRecord generates a record that categorizes as Transfers.
func (g *StatementGenerator) TransferRecord() RawRecord {
	return RawRecord{
		Date:        g.randomDate(),
		Description: ptr("Transfer to savings account"),
		Amount:      ptr(fmt.Sprintf("-%.2f", g.faker.Price(50, 2000))),
	}
}

// MessyRecord generates a record with a hole in it: missing description,
// missing amount, or an unreadable date.
func (g *StatementGenerator) MessyRecord() RawRecord {
	rec := g.ExpenseRecord()
	switch g.faker.Number(0, 2) {
	case 0:
		rec.Description = nil
	case 1:
		rec.Amount = ptr("not-a-number")
	default:
		rec.Date = "someday"
	}
	return rec
}

// MonthlyStatement generates a realistic month: one or two salaries, a
// transfer, a spread of expenses, and a few lines nothing matches.
func (g *StatementGenerator) MonthlyStatement() []RawRecord {
	records := make([]RawRecord, 0, 40)

	for i := 0; i < g.faker.Number(1, 2); i++ {
		records = append(records, g.IncomeRecord())
	}
	records = append(records, g.TransferRecord())
	for i := 0; i < g.faker.Number(15, 30); i++ {
		records = append(records, g.ExpenseRecord())
	}
	for i := 0; i < g.faker.Number(1, 4); i++ {
		records = append(records, g.UncategorizedRecord())
	}
	return records
}

func (g *StatementGenerator) fill(tmpl string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, g.faker.Company())
	}
	return tmpl
}

func (g *StatementGenerator) randomDate() string {
	start := time.Now().AddDate(-1, 0, 0)
	return g.faker.DateRange(start, time.Now()).Format("2006-01-02")
}

func ptr(s string) *string {
	return &s
}
