package ncr

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
)

// Variance resultado de comparar el precio entregado contra el precio del periodo.
type Variance struct {
	PeriodPrice *decimal.Decimal
	UnitDiff    decimal.Decimal // unit_price − period_price, sin redondear
	Amount      decimal.Decimal // quantity × UnitDiff a escala de valores
}

// HasVariance tolerancia cero sobre el precio unitario: cualquier diferencia genera NCR,
// aunque el monto redondeado a 4 decimales quede en cero.
func (v Variance) HasVariance() bool {
	return v.PeriodPrice != nil && !v.UnitDiff.IsZero()
}

// Detect calcula la variación de una línea. Sin precio de periodo no hay variación.
func Detect(quantity, unitPrice decimal.Decimal, periodPrice *decimal.Decimal) Variance {
	if periodPrice == nil {
		return Variance{Amount: decimal.Zero}
	}
	pp := *periodPrice
	diff := unitPrice.Sub(pp)
	return Variance{
		PeriodPrice: &pp,
		UnitDiff:    diff,
		Amount:      inventory.LineValue(quantity, diff),
	}
}
