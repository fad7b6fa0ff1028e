package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheets are tried by name before falling back to the first one. Portuguese
// names show up often enough to warrant their own entries.
var preferredSheetNames = []string{
	"transactions", "movimentos", "extrato",
	"statement", "data", "sheet1",
}

// extractExcel reads the most statement-like sheet of a workbook. When the
// headers map to known statement columns the table is reduced to the
// three-column shape; otherwise rows pass through raw.
func (e *Extractor) extractExcel(name string, data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := findStatementSheet(f)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := findHeaderCells(rows)
	headers := rows[headerIdx]
	dataRows := rows[headerIdx+1:]

	hints := suggestColumns(headers)
	if !hints.statementLike() {
		e.logger.Debug("workbook headers unrecognized, passing rows through",
			"file", name, "sheet", sheet)
		return &Table{File: name, Headers: headers, Rows: dataRows}, nil
	}

	out := make([][]string, 0, len(dataRows))
	for _, row := range dataRows {
		getValue := func(idx int) string {
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		date := getValue(hints.dateCol)
		desc := getValue(hints.descCol)
		amount := getValue(hints.amountCol)
		if amount == "" {
			amount = mergeDebitCredit(getValue(hints.debitCol), getValue(hints.creditCol))
		}

		if date == "" && desc == "" && amount == "" {
			continue
		}
		out = append(out, []string{date, desc, amount})
	}

	e.logger.Debug("workbook parsed", "file", name, "sheet", sheet, "rows", len(out))
	return &Table{
		File:    name,
		Headers: []string{"Date", "Description", "Amount"},
		Rows:    out,
	}, nil
}

// findStatementSheet picks the sheet most likely to hold transaction data.
func findStatementSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}

	for _, preferred := range preferredSheetNames {
		for _, sheet := range sheets {
			if strings.EqualFold(sheet, preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}

// findHeaderCells scans the first rows for the one holding column headers,
// scored by known header keywords. Falls back to the first row.
func findHeaderCells(rows [][]string) int {
	limit := len(rows)
	if limit > 20 {
		limit = 20
	}

	bestIdx := 0
	bestScore := 0
	for i := 0; i < limit; i++ {
		lower := strings.ToLower(strings.Join(rows[i], " "))
		score := 0
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}
