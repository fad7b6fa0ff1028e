package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// maxPDFTextBytes caps extracted text so a pathological file cannot
	// balloon memory.
	maxPDFTextBytes = 1 << 20

	// scannedCharsPerPage: below this much text per page the statement is
	// treated as a scanned image rather than a text PDF.
	scannedCharsPerPage = 50
)

// A transaction line starts with a date and ends with a monetary amount;
// everything between is the description. Amounts must carry two decimal
// digits so reference numbers do not match.
var (
	pdfDatePattern = regexp.MustCompile(
		`^(?:\d{4}[./-]\d{1,2}[./-]\d{1,2}` +
			`|\d{1,2}[./-]\d{1,2}[./-]\d{2,4}` +
			`|\d{1,2}\s+(?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?(?:\s+\d{2,4})?)`)

	pdfAmountPattern = regexp.MustCompile(
		`[-+(]?\s?(?:R\$|US\$|[$€£])?\s?-?\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\)?$`)
)

// extractPDF pulls transaction rows out of a text-layer PDF. The pdf library
// panics on some malformed files, so the whole routine runs under recover.
func (e *Extractor) extractPDF(name string, data []byte) (table *Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	if pages < 1 {
		pages = 1
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	text, err := io.ReadAll(io.LimitReader(plain, maxPDFTextBytes))
	if err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	if len(text)/pages < scannedCharsPerPage {
		return nil, ErrScannedStatement
	}

	rows := parseStatementText(string(text))
	if len(rows) == 0 {
		return nil, ErrNoTransactionRows
	}

	e.logger.Debug("pdf text parsed", "file", name, "pages", pages, "rows", len(rows))
	return &Table{
		File:    name,
		Headers: []string{"Date", "Description", "Amount"},
		Rows:    rows,
	}, nil
}

// parseStatementText walks extracted text line by line and keeps lines shaped
// like transactions. The amount token keeps its raw text; sign and symbol
// handling belongs to the insights stage.
func parseStatementText(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		date := pdfDatePattern.FindString(line)
		if date == "" {
			continue
		}

		rest := strings.TrimSpace(line[len(date):])
		loc := pdfAmountPattern.FindStringIndex(rest)
		if loc == nil {
			continue
		}

		desc := strings.TrimSpace(rest[:loc[0]])
		amount := strings.TrimSpace(rest[loc[0]:])
		rows = append(rows, []string{date, desc, amount})
	}
	return rows
}
