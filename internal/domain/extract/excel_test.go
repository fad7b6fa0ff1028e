package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractExcel_EnglishHeaders(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]string{
		{"Date", "Description", "Amount"},
		{"2024-03-15", "Coffee Shop", "-4.50"},
		{"2024-03-16", "ACME Salary", "5000.00"},
	})

	table, err := newTestExtractor().extractExcel("statement.xlsx", data)

	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2024-03-15", "Coffee Shop", "-4.50"}, table.Rows[0])
}

func TestExtractExcel_PortugueseDoubleEntryWithPreamble(t *testing.T) {
	data := buildWorkbook(t, "Movimentos", [][]string{
		{"Banco Exemplo"},
		{"Conta: 0045 1234"},
		{"Data Mov.", "Descrição", "Débito", "Crédito"},
		{"05-03-2024", "COMPRA CONTINENTE", "23,45", ""},
		{"06-03-2024", "ORDENADO ACME", "", "1.500,00"},
	})

	table, err := newTestExtractor().extractExcel("extrato.xlsx", data)

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"05-03-2024", "COMPRA CONTINENTE", "-23,45"}, table.Rows[0])
	assert.Equal(t, []string{"06-03-2024", "ORDENADO ACME", "1.500,00"}, table.Rows[1])
}

func TestExtractExcel_UnrecognizedHeadersPassThrough(t *testing.T) {
	data := buildWorkbook(t, "Sheet1", [][]string{
		{"alpha", "beta", "gamma"},
		{"1", "2", "3"},
	})

	table, err := newTestExtractor().extractExcel("odd.xlsx", data)

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, table.Headers)
	require.Len(t, table.Rows, 1)
}

func TestExtractExcel_RejectsGarbage(t *testing.T) {
	_, err := newTestExtractor().extractExcel("broken.xlsx", []byte("not a workbook"))
	assert.Error(t, err)
}

func TestFindStatementSheet_PrefersTransactionNames(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet("Transactions")
	require.NoError(t, err)

	assert.Equal(t, "Transactions", findStatementSheet(f))
}

func TestFindStatementSheet_FallsBackToFirst(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Whatever"))

	assert.Equal(t, "Whatever", findStatementSheet(f))
}
