package extract

import (
	"encoding/csv"
	"strings"

	"github.com/gocarina/gocsv"
)

// statementRow is the gocsv target for delimited statements. The tags cover
// the column names banks actually use (gocsv matches by header name), and
// coalescing picks whichever variant the file populated.
type statementRow struct {
	Date      string `csv:"date"`
	DataMov   string `csv:"data mov."`
	DataMovim string `csv:"data movim."`
	Data      string `csv:"data"`
	Fecha     string `csv:"fecha"`
	Datum     string `csv:"datum"`

	Description string `csv:"description"`
	Descricao   string `csv:"descrição"`
	Descricao2  string `csv:"descricao"`
	Descripcion string `csv:"descripción"`
	Merchant    string `csv:"merchant"`
	Payee       string `csv:"payee"`
	Details     string `csv:"details"`
	Memo        string `csv:"memo"`

	Amount  string `csv:"amount"`
	Valor   string `csv:"valor"`
	Importe string `csv:"importe"`
	Value   string `csv:"value"`
	Montant string `csv:"montant"`

	Debit   string `csv:"debit"`
	Debito  string `csv:"débito"`
	Debito2 string `csv:"debito"`
	Cargo   string `csv:"cargo"`

	Credit   string `csv:"credit"`
	Credito  string `csv:"crédito"`
	Credito2 string `csv:"credito"`
	Abono    string `csv:"abono"`

	// Balance columns are recognized so they are not mistaken for amounts,
	// but their values are not used.
	Balance string `csv:"balance"`
	Saldo   string `csv:"saldo"`
}

// extractCSV sniffs the file dialect, then decodes against the known header
// names. Files whose headers carry no statement signal fall back to raw
// passthrough so Normalize can still try the three-column convention.
func (e *Extractor) extractCSV(name string, data []byte) (*Table, error) {
	cfg, err := detectConfig(data)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("csv dialect sniffed",
		"file", name,
		"delimiter", string(cfg.Delimiter),
		"skip_lines", cfg.SkipLines,
		"fingerprint", cfg.Fingerprint)

	hints := suggestColumns(cfg.Headers)
	if !hints.statementLike() {
		return e.passthroughCSV(name, data, cfg)
	}

	rows, err := decodeStatementRows(data, cfg)
	if err != nil {
		// Decode failures on a recognized layout usually mean broken
		// quoting; raw passthrough still salvages the rows.
		e.logger.Warn("csv decode failed, using raw rows", "file", name, "error", err)
		return e.passthroughCSV(name, data, cfg)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		date := coalesce(row.Date, row.DataMov, row.DataMovim, row.Data, row.Fecha, row.Datum)
		desc := coalesce(row.Description, row.Descricao, row.Descricao2, row.Descripcion,
			row.Merchant, row.Payee, row.Details, row.Memo)
		amount := coalesce(row.Amount, row.Valor, row.Importe, row.Value, row.Montant)
		if amount == "" {
			debit := coalesce(row.Debit, row.Debito, row.Debito2, row.Cargo)
			credit := coalesce(row.Credit, row.Credito, row.Credito2, row.Abono)
			amount = mergeDebitCredit(debit, credit)
		}

		if date == "" && desc == "" && amount == "" {
			continue
		}
		out = append(out, []string{date, desc, amount})
	}

	return &Table{
		File:    name,
		Headers: []string{"Date", "Description", "Amount"},
		Rows:    out,
	}, nil
}

// decodeStatementRows hands the file to gocsv from the header line on. The
// header line is lowercased so tag matching is case-insensitive.
func decodeStatementRows(data []byte, cfg *fileConfig) ([]statementRow, error) {
	lines := splitLines(data)
	if cfg.SkipLines >= len(lines) {
		return nil, ErrEmptyFile
	}

	content := strings.ToLower(lines[cfg.SkipLines])
	if rest := lines[cfg.SkipLines+1:]; len(rest) > 0 {
		content += "\n" + strings.Join(rest, "\n")
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows []statementRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// passthroughCSV returns the rows as split, headers included, leaving column
// interpretation to Normalize.
func (e *Extractor) passthroughCSV(name string, data []byte, cfg *fileConfig) (*Table, error) {
	lines := splitLines(data)
	if cfg.SkipLines >= len(lines) {
		return nil, ErrEmptyFile
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[cfg.SkipLines:], "\n")))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return &Table{
		File:    name,
		Headers: records[0],
		Rows:    records[1:],
	}, nil
}

// mergeDebitCredit folds double-entry columns into one signed raw amount.
// Credits stay positive, debits are negated unless already signed.
func mergeDebitCredit(debit, credit string) string {
	if credit != "" {
		return credit
	}
	if debit == "" {
		return ""
	}
	if strings.HasPrefix(debit, "-") {
		return debit
	}
	return "-" + debit
}

// coalesce returns the first non-empty trimmed value.
func coalesce(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
