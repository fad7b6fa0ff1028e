// Package extract turns uploaded statement files into tabular rows.
// PDF is the primary path; CSV and XLSX are accepted on the API route.
// Extraction is best-effort per file: an unreadable file is skipped and
// reported in the summary, never fatal for the batch.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/statement-insights/internal/domain/insights"
	"github.com/FACorreiaa/statement-insights/pkg/spool"
)

var (
	// ErrScannedStatement means the PDF yielded almost no text. Image-only
	// statements need OCR, which this service does not do.
	ErrScannedStatement = errors.New("no extractable text, statement looks scanned")

	// ErrNoTransactionRows means text came out but no line matched the
	// date/description/amount shape.
	ErrNoTransactionRows = errors.New("no transaction lines recognized")

	// ErrUnsupportedFormat is returned for file extensions no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported file type")
)

// Table holds best-effort tabular rows pulled from one file. Column layout
// is whatever the source gave us; Normalize applies the three-column
// convention downstream.
type Table struct {
	File    string     `json:"file"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// FileSummary describes one successfully extracted file.
type FileSummary struct {
	File    string `json:"file"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// SkippedFile records why a file produced no table.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Summary is the per-batch extraction report shown to the user.
type Summary struct {
	FilesReceived int           `json:"files_received"`
	Extracted     []FileSummary `json:"extracted"`
	Skipped       []SkippedFile `json:"skipped"`
}

// FileNames lists the files that produced tables, in extraction order.
func (s Summary) FileNames() []string {
	names := make([]string, 0, len(s.Extracted))
	for _, f := range s.Extracted {
		names = append(names, f.File)
	}
	return names
}

// RowsExtracted is the total row count across all extracted tables.
func (s Summary) RowsExtracted() int {
	total := 0
	for _, f := range s.Extracted {
		total += f.Rows
	}
	return total
}

// Extractor reads statement files from disk and produces Tables.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractAll runs extraction over a batch of spooled files. Files that fail
// are logged and recorded in the summary; the rest of the batch still runs.
func (e *Extractor) ExtractAll(ctx context.Context, files []spool.File) ([]Table, Summary) {
	summary := Summary{FilesReceived: len(files)}
	tables := make([]Table, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			summary.Skipped = append(summary.Skipped, SkippedFile{File: f.Name, Reason: "request cancelled"})
			continue
		}

		table, err := e.extractFile(f)
		if err != nil {
			e.logger.Warn("statement file skipped", "file", f.Name, "error", err)
			summary.Skipped = append(summary.Skipped, SkippedFile{File: f.Name, Reason: err.Error()})
			continue
		}

		e.logger.Info("statement file extracted",
			"file", f.Name,
			"rows", len(table.Rows),
			"columns", len(table.Headers))
		summary.Extracted = append(summary.Extracted, FileSummary{
			File:    f.Name,
			Rows:    len(table.Rows),
			Columns: len(table.Headers),
		})
		tables = append(tables, *table)
	}

	return tables, summary
}

func (e *Extractor) extractFile(f spool.File) (*Table, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".pdf":
		return e.extractPDF(f.Name, data)
	case ".csv":
		return e.extractCSV(f.Name, data)
	case ".xlsx", ".xlsm":
		return e.extractExcel(f.Name, data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Normalize applies the three-column convention: when a table has at least
// three columns the first three are taken as date, description and amount.
// Narrower tables pass through with a warning; their rows carry no amount
// cell, which the insights stage reports as a missing amount column when
// nothing else was convertible.
func Normalize(tables []Table) ([]insights.RawRecord, []string) {
	var records []insights.RawRecord
	var warnings []string

	for _, t := range tables {
		cols := len(t.Headers)
		if cols == 0 && len(t.Rows) > 0 {
			cols = len(t.Rows[0])
		}

		if cols < 3 {
			warnings = append(warnings, fmt.Sprintf(
				"%s: table has %d column(s), expected at least 3 (date, description, amount)",
				t.File, cols))
		}

		for _, row := range t.Rows {
			rec := insights.RawRecord{Date: cell(row, 0)}
			if len(row) > 1 {
				rec.Description = &row[1]
			}
			if cols >= 3 && len(row) > 2 {
				rec.Amount = &row[2]
			}
			records = append(records, rec)
		}
	}

	return records, warnings
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
