package excel_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/excel"
)

func buildSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestPriceSheetReader_ReadsAliasedColumns(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"Descripción", "Código", "Precio"},
		{"Arroz", "RICE-1", "25.50"},
		{"", "", ""},
		{"Aceite", "OIL-2", "1.234,5"},
	})

	rows, err := excel.NewPriceSheetReader().Read(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "RICE-1", rows[0].ItemCode)
	assert.Equal(t, "25.5", rows[0].Price.String())
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, "OIL-2", rows[1].ItemCode)
	assert.Equal(t, "1234.5", rows[1].Price.String())
	assert.Equal(t, 4, rows[1].Row)
}

func TestPriceSheetReader_Errors(t *testing.T) {
	cases := map[string][][]any{
		"missing price column": {{"code", "name"}, {"A", "x"}},
		"negative price":       {{"code", "price"}, {"A", "-1"}},
		"not numeric":          {{"code", "price"}, {"A", "abc"}},
		"duplicate code":       {{"code", "price"}, {"A", "1"}, {"a", "2"}},
		"no data rows":         {{"code", "price"}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := excel.NewPriceSheetReader().Read(buildSheet(t, rows))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestPriceSheetReader_NotXLSX(t *testing.T) {
	_, err := excel.NewPriceSheetReader().Read(strings.NewReader("code,price\nA,1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPriceSheetReader_EncabezadoConBOM(t *testing.T) {
	buf := buildSheet(t, [][]any{
		{"\ufeffCódigo", "Precio"},
		{"FLOUR", "25,50"},
	})

	rows, err := excel.NewPriceSheetReader().Read(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "FLOUR", rows[0].ItemCode)
	assert.Equal(t, "25.5", rows[0].Price.String())
}
