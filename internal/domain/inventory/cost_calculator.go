package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
)

// Escalas de almacenamiento.
const (
	WACScale   int32 = 6
	ValueScale int32 = 4
)

// ApplyReceipt implementa el costo promedio ponderado (servicio de dominio, sin I/O).
// NuevoWAC = ((StockActual * WACActual) + (CantRecibida * PrecioUnitario)) / (StockActual + CantRecibida)
// Si la cantidad resultante no es positiva el WAC es 0.
func ApplyReceipt(currentQty, currentWAC, receivedQty, unitPrice decimal.Decimal) decimal.Decimal {
	sum := currentQty.Add(receivedQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := currentQty.Mul(currentWAC).Add(receivedQty.Mul(unitPrice))
	return num.DivRound(sum, WACScale+2).Round(WACScale)
}

// LineValue cantidad × costo unitario, redondeado a la escala de valores.
func LineValue(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitCost).Round(ValueScale)
}

// CheckScale rechaza cantidades y montos con más decimales que la columna NUMERIC(18,4).
// Los ceros a la derecha no cuentan: 1.00000 es válido.
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Round(ValueScale)) {
		return domain.Invalid(field, "máximo 4 decimales")
	}
	return nil
}
