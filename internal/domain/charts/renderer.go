// Package charts rasterizes report data into PNG images. Both operations
// return (nil, nil) when there is nothing to draw; only real render
// failures surface as errors.
package charts

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
)

const (
	defaultWidth  = 1024
	defaultHeight = 512
)

// Renderer draws the two report charts.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a Renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{Width: defaultWidth, Height: defaultHeight}
}

// CategoryBar renders spending totals as a bar chart, one bar per category,
// sorted by amount descending. Non-positive totals are dropped; when none
// remain there is nothing to draw and both returns are nil.
func (r *Renderer) CategoryBar(totals map[string]decimal.Decimal) ([]byte, error) {
	type entry struct {
		label string
		value float64
	}

	entries := make([]entry, 0, len(totals))
	for label, amount := range totals {
		if !amount.IsPositive() {
			continue
		}
		entries = append(entries, entry{label: label, value: amount.InexactFloat64()})
	}
	if len(entries) == 0 {
		return nil, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].label < entries[j].label
	})

	bars := make([]chart.Value, 0, len(entries))
	for _, e := range entries {
		bars = append(bars, chart.Value{Label: e.label, Value: e.value})
	}

	barChart := chart.BarChart{
		Title:      "Spending by Category",
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   60,
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := barChart.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyTrend renders income and expenses as two lines over a continuous
// monthly axis. Records without a parsed date are dropped; when neither
// category has a dated record both returns are nil.
func (r *Renderer) MonthlyTrend(txs []insights.Transaction) ([]byte, error) {
	months, income, expenses, ok := monthlyBuckets(txs)
	if !ok {
		return nil, nil
	}

	trend := chart.Chart{
		Title:  "Monthly Income vs Expenses",
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Income",
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.5},
				XValues: months,
				YValues: income,
			},
			chart.TimeSeries{
				Name:    "Expenses",
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.5},
				XValues: months,
				YValues: expenses,
			},
		},
	}
	trend.Elements = []chart.Renderable{chart.Legend(&trend)}

	var buf bytes.Buffer
	if err := trend.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render monthly trend chart: %w", err)
	}
	return buf.Bytes(), nil
}

// monthlyBuckets sums dated Income and Expenses amounts per calendar month
// and lays them out on a continuous axis from the earliest to the latest
// month seen, zero-filling the gaps. ok is false when no dated record
// belongs to either category.
func monthlyBuckets(txs []insights.Transaction) (months []time.Time, income, expenses []float64, ok bool) {
	incomeByMonth := make(map[time.Time]decimal.Decimal)
	expensesByMonth := make(map[time.Time]decimal.Decimal)

	var first, last time.Time
	for _, tx := range txs {
		if tx.Date == nil {
			continue
		}
		if tx.Category != categorization.CategoryIncome && tx.Category != categorization.CategoryExpenses {
			continue
		}

		month := monthOf(*tx.Date)
		if first.IsZero() || month.Before(first) {
			first = month
		}
		if last.IsZero() || month.After(last) {
			last = month
		}

		switch tx.Category {
		case categorization.CategoryIncome:
			incomeByMonth[month] = incomeByMonth[month].Add(tx.Amount)
		case categorization.CategoryExpenses:
			expensesByMonth[month] = expensesByMonth[month].Add(tx.Amount)
		}
	}
	if first.IsZero() {
		return nil, nil, nil, false
	}

	// A single month cannot span an axis; pad one zero month before it.
	if first.Equal(last) {
		first = first.AddDate(0, -1, 0)
	}

	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		months = append(months, month)
		income = append(income, incomeByMonth[month].InexactFloat64())
		expenses = append(expenses, expensesByMonth[month].InexactFloat64())
	}
	return months, income, expenses, true
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
