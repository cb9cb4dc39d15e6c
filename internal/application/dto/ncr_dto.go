package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// NCRLineRequest detalle de una NCR manual.
type NCRLineRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
}

// CreateNCRRequest body para POST /api/ncrs: líneas o un valor explícito.
type CreateNCRRequest struct {
	LocationID string           `json:"location_id" validate:"required"`
	Reason     string           `json:"reason" validate:"required,max=1000"`
	DeliveryID *string          `json:"delivery_id,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	Lines      []NCRLineRequest `json:"lines" validate:"omitempty,dive"`
}

// UpdateNCRStatusRequest body para PATCH /api/ncrs/:id/status.
type UpdateNCRStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=SENT CREDITED REJECTED RESOLVED"`
	ResolutionType  string `json:"resolution_type" validate:"max=200"`
	FinancialImpact string `json:"financial_impact" validate:"omitempty,oneof=NONE CREDIT LOSS"`
}

// NCRResponse salida de una NCR.
type NCRResponse struct {
	ID              string          `json:"id"`
	LocationID      string          `json:"location_id"`
	PeriodID        string          `json:"period_id"`
	Type            string          `json:"type"`
	AutoGenerated   bool            `json:"auto_generated"`
	DeliveryID      *string         `json:"delivery_id,omitempty"`
	DeliveryLineID  *string         `json:"delivery_line_id,omitempty"`
	Reason          string          `json:"reason"`
	Value           decimal.Decimal `json:"value"`
	Status          string          `json:"status"`
	ResolutionType  string          `json:"resolution_type,omitempty"`
	FinancialImpact *string         `json:"financial_impact,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NCRWarning NCR abierta reportada como advertencia al solicitar el cierre.
type NCRWarning struct {
	NCRID      string          `json:"ncr_id"`
	LocationID string          `json:"location_id"`
	Value      decimal.Decimal `json:"value"`
	Reason     string          `json:"reason"`
}

// NewNCRResponse mapea una NCR.
func NewNCRResponse(n *entity.NCR) *NCRResponse {
	out := &NCRResponse{
		ID:             n.ID,
		LocationID:     n.LocationID,
		PeriodID:       n.PeriodID,
		Type:           string(n.Type),
		AutoGenerated:  n.AutoGenerated,
		DeliveryID:     n.DeliveryID,
		DeliveryLineID: n.DeliveryLineID,
		Reason:         n.Reason,
		Value:          n.Value,
		Status:         string(n.Status),
		ResolutionType: n.ResolutionType,
		CreatedBy:      n.CreatedBy,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
	if n.FinancialImpact != nil {
		s := string(*n.FinancialImpact)
		out.FinancialImpact = &s
	}
	return out
}
