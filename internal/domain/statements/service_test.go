package statements

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-insights/internal/domain/categorization"
	"github.com/FACorreiaa/statement-insights/internal/domain/charts"
	"github.com/FACorreiaa/statement-insights/internal/domain/extract"
	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/pkg/metrics"
	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catSvc := categorization.NewService(logger)
	t.Cleanup(func() { _ = catSvc.Close() })

	return NewService(
		extract.NewExtractor(logger),
		insights.NewService(catSvc, logger),
		charts.NewRenderer(),
		logger,
	)
}

func writeSpoolFile(t *testing.T, dir, name, content string) spool.File {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return spool.File{Name: name, Path: path, Size: int64(len(content))}
}

func TestProcess_FullPipeline(t *testing.T) {
	dir := t.TempDir()
	statement := writeSpoolFile(t, dir, "march.csv",
		"Date,Description,Amount\n"+
			"2024-01-15,ACME Corp Salary,5000.00\n"+
			"2024-01-20,Grocery Supermarket,-150.00\n"+
			"2024-02-10,Netflix Subscription,-15.99\n"+
			"2024-02-11,Transfer to savings,-400.00\n")

	result := newTestService(t).Process(context.Background(), []spool.File{statement})

	assert.Equal(t, MsgProcessed, result.Outcome)
	assert.Contains(t, result.Messages, MsgProcessed)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, result.Columns)

	require.True(t, result.HasReport())
	stats := result.Report.Stats
	assert.True(t, stats.TotalIncome.Equal(decimal.RequireFromString("5000")),
		"total income %s", stats.TotalIncome)
	assert.True(t, stats.TotalExpenses.Equal(decimal.RequireFromString("165.99")),
		"total expenses %s", stats.TotalExpenses)
	assert.Equal(t, 4, stats.TransactionsCount)
	assert.Equal(t, 4, stats.CategorizedCount)

	// Both charts render: positive spending exists and two months carry
	// dated income/expense records.
	assert.NotEmpty(t, result.CategoryChartB64)
	assert.NotEmpty(t, result.TrendChartB64)
	assert.Empty(t, result.Suggestions)

	require.Len(t, result.Summary.Extracted, 1)
	assert.Equal(t, 4, result.Summary.RowsExtracted())
}

func TestProcess_NoFiles(t *testing.T) {
	result := newTestService(t).Process(context.Background(), nil)

	assert.Equal(t, MsgNoData, result.Outcome)
	assert.False(t, result.HasReport())
	assert.Empty(t, result.CategoryChartB64)
	assert.Zero(t, result.Summary.FilesReceived)
}

func TestProcess_AllFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	broken := writeSpoolFile(t, dir, "broken.pdf", "not a pdf at all")

	result := newTestService(t).Process(context.Background(), []spool.File{broken})

	assert.Equal(t, MsgNoData, result.Outcome)
	assert.False(t, result.HasReport())
	require.Len(t, result.Summary.Skipped, 1)
	assert.Equal(t, "broken.pdf", result.Summary.Skipped[0].File)
}

func TestProcess_MissingAmountColumn(t *testing.T) {
	dir := t.TempDir()
	narrow := writeSpoolFile(t, dir, "narrow.csv",
		"Date,Note\n2024-03-15,Coffee\n2024-03-16,Rent\n")

	result := newTestService(t).Process(context.Background(), []spool.File{narrow})

	// Extraction succeeded, the summary renders, but insights degrade.
	assert.Equal(t, MsgNoAmountColumn, result.Outcome)
	assert.False(t, result.HasReport())
	require.Len(t, result.Summary.Extracted, 1)
	assert.Equal(t, []string{"Date", "Note"}, result.Columns)

	foundWarning := false
	for _, msg := range result.Messages {
		if msg != MsgNoAmountColumn {
			foundWarning = true
			assert.Contains(t, msg, "narrow.csv")
		}
	}
	assert.True(t, foundWarning, "expected a narrow-table warning message")
}

func TestProcess_RecordsMetrics(t *testing.T) {
	dir := t.TempDir()
	statement := writeSpoolFile(t, dir, "ok.csv",
		"Date,Description,Amount\n2024-01-15,Salary,5000.00\n")
	broken := writeSpoolFile(t, dir, "broken.pdf", "nope")

	m := metrics.New()
	svc := newTestService(t).WithMetrics(m)

	result := svc.Process(context.Background(), []spool.File{statement, broken})

	require.True(t, result.HasReport())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchesProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesExtracted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsExtracted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsBuilt))
}
