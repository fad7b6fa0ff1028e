package extract

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTestFile(t *testing.T, dir, name, content string) spool.File {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return spool.File{Name: name, Path: path, Size: int64(len(content))}
}

func TestNormalize_ThreeColumnConvention(t *testing.T) {
	tables := []Table{{
		File:    "statement.pdf",
		Headers: []string{"Date", "Description", "Amount"},
		Rows: [][]string{
			{"2024-03-15", "Coffee Shop", "-4.50"},
			{"2024-03-16", "ACME Salary", "5000.00"},
		},
	}}

	records, warnings := Normalize(tables)

	require.Len(t, records, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, "2024-03-15", records[0].Date)
	require.NotNil(t, records[0].Description)
	assert.Equal(t, "Coffee Shop", *records[0].Description)
	require.NotNil(t, records[0].Amount)
	assert.Equal(t, "-4.50", *records[0].Amount)
}

func TestNormalize_WideTableKeepsFirstThreeColumns(t *testing.T) {
	tables := []Table{{
		File:    "export.csv",
		Headers: []string{"Date", "Description", "Amount", "Balance", "Reference"},
		Rows: [][]string{
			{"2024-03-15", "Groceries", "-50.00", "950.00", "REF-1"},
		},
	}}

	records, warnings := Normalize(tables)

	require.Len(t, records, 1)
	assert.Empty(t, warnings)
	require.NotNil(t, records[0].Amount)
	assert.Equal(t, "-50.00", *records[0].Amount)
}

func TestNormalize_NarrowTablePassesThroughWithWarning(t *testing.T) {
	tables := []Table{{
		File:    "partial.csv",
		Headers: []string{"Date", "Note"},
		Rows: [][]string{
			{"2024-03-15", "Coffee"},
			{"2024-03-16", "Rent"},
		},
	}}

	records, warnings := Normalize(tables)

	require.Len(t, records, 2)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "partial.csv")
	assert.Contains(t, warnings[0], "expected at least 3")

	// Rows survive but carry no amount cell.
	require.NotNil(t, records[0].Description)
	assert.Equal(t, "Coffee", *records[0].Description)
	assert.Nil(t, records[0].Amount)
}

func TestNormalize_ShortRowsMissCellsEntirely(t *testing.T) {
	tables := []Table{{
		File:    "ragged.csv",
		Headers: []string{"Date", "Description", "Amount"},
		Rows: [][]string{
			{"2024-03-15"},
			{"2024-03-16", "Coffee"},
			{"2024-03-17", "Salary", "5000.00"},
		},
	}}

	records, warnings := Normalize(tables)

	require.Len(t, records, 3)
	assert.Empty(t, warnings)
	assert.Nil(t, records[0].Description)
	assert.Nil(t, records[0].Amount)
	assert.Nil(t, records[1].Amount)
	require.NotNil(t, records[2].Amount)
	assert.Equal(t, "5000.00", *records[2].Amount)
}

func TestNormalize_NoTables(t *testing.T) {
	records, warnings := Normalize(nil)
	assert.Empty(t, records)
	assert.Empty(t, warnings)
}

func TestExtractAll_SkipsBadFilesAndContinues(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "statement.csv",
		"Date,Description,Amount\n2024-03-15,Coffee Shop,-4.50\n")
	broken := writeTestFile(t, dir, "broken.pdf", "definitely not a pdf")
	notes := writeTestFile(t, dir, "notes.txt", "remember to pay rent")

	tables, summary := newTestExtractor().ExtractAll(context.Background(),
		[]spool.File{good, broken, notes})

	require.Len(t, tables, 1)
	assert.Equal(t, "statement.csv", tables[0].File)

	assert.Equal(t, 3, summary.FilesReceived)
	require.Len(t, summary.Extracted, 1)
	assert.Equal(t, "statement.csv", summary.Extracted[0].File)
	assert.Equal(t, 1, summary.Extracted[0].Rows)
	assert.Equal(t, 3, summary.Extracted[0].Columns)

	require.Len(t, summary.Skipped, 2)
	assert.Equal(t, "broken.pdf", summary.Skipped[0].File)
	assert.NotEmpty(t, summary.Skipped[0].Reason)
	assert.Equal(t, "notes.txt", summary.Skipped[1].File)
	assert.Equal(t, ErrUnsupportedFormat.Error(), summary.Skipped[1].Reason)
}

func TestExtractAll_MissingFileIsSkipped(t *testing.T) {
	missing := spool.File{Name: "gone.csv", Path: filepath.Join(t.TempDir(), "gone.csv")}

	tables, summary := newTestExtractor().ExtractAll(context.Background(), []spool.File{missing})

	assert.Empty(t, tables)
	require.Len(t, summary.Skipped, 1)
	assert.Contains(t, summary.Skipped[0].Reason, "read upload")
}

func TestExtractAll_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	f := writeTestFile(t, dir, "statement.csv", "Date,Description,Amount\n2024-03-15,Coffee,-4.50\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tables, summary := newTestExtractor().ExtractAll(ctx, []spool.File{f})

	assert.Empty(t, tables)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "request cancelled", summary.Skipped[0].Reason)
}

func TestSummaryAccessors(t *testing.T) {
	summary := Summary{
		FilesReceived: 3,
		Extracted: []FileSummary{
			{File: "a.pdf", Rows: 10, Columns: 3},
			{File: "b.pdf", Rows: 5, Columns: 3},
		},
		Skipped: []SkippedFile{{File: "c.pdf", Reason: "scanned"}},
	}

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, summary.FileNames())
	assert.Equal(t, 15, summary.RowsExtracted())
}
