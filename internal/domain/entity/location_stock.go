package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LocationStock stock actual de un ítem en una ubicación con su costo promedio ponderado.
// OnHand nunca es negativo; WAC solo cambia con entradas (entregas o traslados recibidos).
type LocationStock struct {
	LocationID string
	ItemID     string
	OnHand     decimal.Decimal
	WAC        decimal.Decimal
	UpdatedAt  time.Time
}

// Value valoriza el stock al costo promedio actual.
func (s *LocationStock) Value() decimal.Decimal {
	return s.OnHand.Mul(s.WAC)
}
