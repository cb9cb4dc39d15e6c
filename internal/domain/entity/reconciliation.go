package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation derivación por (periodo, ubicación). Consumption y MandayCost son derivados.
type Reconciliation struct {
	PeriodID      string
	LocationID    string
	Opening       decimal.Decimal
	Receipts      decimal.Decimal
	TransfersIn   decimal.Decimal
	TransfersOut  decimal.Decimal
	Issues        decimal.Decimal
	Closing       decimal.Decimal
	BackCharges   decimal.Decimal
	Credits       decimal.Decimal // créditos manuales
	Condemnations decimal.Decimal
	Adjustments   decimal.Decimal
	NCRCredits    decimal.Decimal
	NCRLosses     decimal.Decimal
	TotalMandays  decimal.Decimal
	Consumption   decimal.Decimal
	MandayCost    *decimal.Decimal
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
