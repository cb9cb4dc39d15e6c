package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// CreatePeriodRequest body para POST /api/periods (fechas YYYY-MM-DD).
type CreatePeriodRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// PriceInput precio de un ítem para el periodo.
type PriceInput struct {
	ItemID string          `json:"item_id" validate:"required"`
	Price  decimal.Decimal `json:"price"`
}

// SetPricesRequest body para PUT /api/periods/:id/prices.
type SetPricesRequest struct {
	Prices []PriceInput `json:"prices" validate:"required,min=1,dive"`
}

// SetPricesResponse cantidad de precios escritos.
type SetPricesResponse struct {
	PeriodID string `json:"period_id"`
	Count    int    `json:"count"`
}

// RollForwardRequest body para POST /api/periods/:id/roll-forward.
type RollForwardRequest struct {
	Name       string `json:"name" validate:"max=100"`
	CopyPrices bool   `json:"copy_prices"`
}

// PeriodLocationResponse estado de una ubicación dentro del periodo.
type PeriodLocationResponse struct {
	LocationID   string           `json:"location_id"`
	Status       string           `json:"status"`
	OpeningValue decimal.Decimal  `json:"opening_value"`
	ClosingValue *decimal.Decimal `json:"closing_value,omitempty"`
	Snapshot     json.RawMessage  `json:"snapshot,omitempty"`
	ReadyAt      *time.Time       `json:"ready_at,omitempty"`
	ClosedAt     *time.Time       `json:"closed_at,omitempty"`
}

// PeriodResponse salida de un periodo con sus ubicaciones.
type PeriodResponse struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	StartDate string                   `json:"start_date"`
	EndDate   string                   `json:"end_date"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	ClosedAt  *time.Time               `json:"closed_at,omitempty"`
	Locations []PeriodLocationResponse `json:"locations,omitempty"`
}

// CloseRequestResponse resultado de solicitar el cierre: aprobación creada y advertencias.
type CloseRequestResponse struct {
	Period   *PeriodResponse   `json:"period"`
	Approval *ApprovalResponse `json:"approval"`
	Warnings []NCRWarning      `json:"warnings"`
}

// NewPeriodResponse mapea el periodo y, si se pasan, sus ubicaciones.
func NewPeriodResponse(p *entity.Period, locations []*entity.PeriodLocation) *PeriodResponse {
	out := &PeriodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format(time.DateOnly),
		EndDate:   p.EndDate.Format(time.DateOnly),
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		ClosedAt:  p.ClosedAt,
	}
	for _, pl := range locations {
		out.Locations = append(out.Locations, PeriodLocationResponse{
			LocationID:   pl.LocationID,
			Status:       string(pl.Status),
			OpeningValue: pl.OpeningValue,
			ClosingValue: pl.ClosingValue,
			Snapshot:     pl.Snapshot,
			ReadyAt:      pl.ReadyAt,
			ClosedAt:     pl.ClosedAt,
		})
	}
	return out
}
