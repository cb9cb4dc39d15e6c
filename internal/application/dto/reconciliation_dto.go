package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ReconciliationAdjustmentsRequest campos manuales; el resto de cifras se recalcula del libro.
type ReconciliationAdjustmentsRequest struct {
	BackCharges   decimal.Decimal `json:"back_charges"`
	Credits       decimal.Decimal `json:"credits"`
	Condemnations decimal.Decimal `json:"condemnations"`
	Adjustments   decimal.Decimal `json:"adjustments"`
}

// ReconciliationResponse cifras del libro, ajustes y valores derivados.
type ReconciliationResponse struct {
	PeriodID      string           `json:"period_id"`
	LocationID    string           `json:"location_id"`
	Opening       decimal.Decimal  `json:"opening"`
	Receipts      decimal.Decimal  `json:"receipts"`
	TransfersIn   decimal.Decimal  `json:"transfers_in"`
	TransfersOut  decimal.Decimal  `json:"transfers_out"`
	Issues        decimal.Decimal  `json:"issues"`
	Closing       decimal.Decimal  `json:"closing"`
	BackCharges   decimal.Decimal  `json:"back_charges"`
	Credits       decimal.Decimal  `json:"credits"`
	Condemnations decimal.Decimal  `json:"condemnations"`
	Adjustments   decimal.Decimal  `json:"adjustments"`
	NCRCredits    decimal.Decimal  `json:"ncr_credits"`
	NCRLosses     decimal.Decimal  `json:"ncr_losses"`
	TotalMandays  decimal.Decimal  `json:"total_mandays"`
	Consumption   decimal.Decimal  `json:"consumption"`
	MandayCost    *decimal.Decimal `json:"manday_cost"`
	UpdatedBy     string           `json:"updated_by"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewReconciliationResponse mapea la reconciliación.
func NewReconciliationResponse(r *entity.Reconciliation) *ReconciliationResponse {
	return &ReconciliationResponse{
		PeriodID:      r.PeriodID,
		LocationID:    r.LocationID,
		Opening:       r.Opening,
		Receipts:      r.Receipts,
		TransfersIn:   r.TransfersIn,
		TransfersOut:  r.TransfersOut,
		Issues:        r.Issues,
		Closing:       r.Closing,
		BackCharges:   r.BackCharges,
		Credits:       r.Credits,
		Condemnations: r.Condemnations,
		Adjustments:   r.Adjustments,
		NCRCredits:    r.NCRCredits,
		NCRLosses:     r.NCRLosses,
		TotalMandays:  r.TotalMandays,
		Consumption:   r.Consumption,
		MandayCost:    r.MandayCost,
		UpdatedBy:     r.UpdatedBy,
		UpdatedAt:     r.UpdatedAt,
	}
}
