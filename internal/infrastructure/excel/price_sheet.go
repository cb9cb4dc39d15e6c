package excel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// PriceSheetReader lee la primera hoja de un .xlsx con columnas de código de ítem y precio.
type PriceSheetReader struct{}

var _ ports.PriceSheetReader = PriceSheetReader{}

func NewPriceSheetReader() PriceSheetReader {
	return PriceSheetReader{}
}

var headerAliases = map[string]string{
	"item_code":       "item_code",
	"item code":       "item_code",
	"code":            "item_code",
	"sku":             "item_code",
	"codigo":          "item_code",
	"código":          "item_code",
	"cod":             "item_code",
	"price":           "price",
	"unit price":      "price",
	"unit_price":      "price",
	"period price":    "price",
	"precio":          "price",
	"precio unitario": "price",
	"valor":           "price",
}

// Read devuelve las filas con datos; las filas vacías se ignoran.
// Errores de formato se reportan como VALIDATION_ERROR con el número de fila.
func (PriceSheetReader) Read(r io.Reader) ([]ports.PriceRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer planilla: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.Invalid("file", "el archivo está vacío")
	}

	rows, err := sheetRows(data)
	if err != nil {
		return nil, err
	}

	cols := mapColumns(rows[0])
	for _, key := range []string{"item_code", "price"} {
		if _, ok := cols[key]; !ok {
			return nil, domain.Invalid("file", "falta la columna "+key)
		}
	}

	seen := make(map[string]int)
	out := make([]ports.PriceRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowNo := i + 1
		code := cleanText(readCell(rows[i], cols["item_code"]))
		raw := cleanText(readCell(rows[i], cols["price"]))
		if code == "" && raw == "" {
			continue
		}
		if code == "" {
			return nil, domain.Invalid(fmt.Sprintf("row %d", rowNo), "código de ítem vacío")
		}
		if prev, dup := seen[strings.ToUpper(code)]; dup {
			return nil, domain.Invalid(fmt.Sprintf("row %d", rowNo), fmt.Sprintf("ítem %s repetido (fila %d)", code, prev))
		}
		price, err := parsePrice(raw)
		if err != nil {
			return nil, domain.Invalid(fmt.Sprintf("row %d", rowNo), err.Error())
		}
		seen[strings.ToUpper(code)] = rowNo
		out = append(out, ports.PriceRow{Row: rowNo, ItemCode: code, Price: price})
	}
	if len(out) == 0 {
		return nil, domain.Invalid("file", "la planilla no tiene filas de precios")
	}
	return out, nil
}

func sheetRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Invalid("file", "no es un archivo xlsx válido")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid("file", "el archivo no tiene hojas")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer filas de %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, domain.Invalid("file", "la hoja está vacía")
	}
	return rows, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		canonical, ok := headerAliases[normalizeHeader(col)]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

// parsePrice acepta "1.234,56", "1,234.56", "25,5" y "25.5".
func parsePrice(raw string) (decimal.Decimal, error) {
	v := strings.ReplaceAll(raw, " ", "")
	v = strings.TrimPrefix(v, "$")
	if v == "" {
		return decimal.Zero, fmt.Errorf("precio vacío")
	}
	lastComma, lastDot := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		v = strings.ReplaceAll(v, ",", "")
	case lastComma >= 0:
		v = strings.Replace(v, ",", ".", 1)
	}
	price, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("precio %q no es numérico", raw)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("el precio no puede ser negativo")
	}
	return price, nil
}

func readCell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func normalizeHeader(value string) string {
	text := strings.TrimPrefix(strings.TrimSpace(value), "\ufeff")
	return strings.ToLower(cleanText(text))
}

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
