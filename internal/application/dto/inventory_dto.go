package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// DeliveryLineRequest línea de entrega: cantidad > 0 y precio unitario >= 0.
type DeliveryLineRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PostDeliveryRequest body para POST /api/deliveries.
type PostDeliveryRequest struct {
	LocationID   string                `json:"location_id" validate:"required"`
	PeriodID     string                `json:"period_id" validate:"required"`
	SupplierID   string                `json:"supplier_id" validate:"required"`
	InvoiceNo    string                `json:"invoice_no" validate:"omitempty,max=60"`
	DeliveryDate string                `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Status       string                `json:"status" validate:"omitempty,oneof=DRAFT POSTED"`
	Lines        []DeliveryLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PostDraftDeliveryRequest body para POST /api/deliveries/:id/post.
type PostDraftDeliveryRequest struct {
	InvoiceNo string `json:"invoice_no" validate:"omitempty,max=60"`
}

// DeliveryLineResponse línea con los valores capturados al contabilizar.
type DeliveryLineResponse struct {
	ID            string           `json:"id"`
	ItemID        string           `json:"item_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	PeriodPrice   *decimal.Decimal `json:"period_price"`
	PriceVariance decimal.Decimal  `json:"price_variance"`
	LineValue     decimal.Decimal  `json:"line_value"`
	NCRID         *string          `json:"ncr_id,omitempty"`
}

// DeliveryResponse salida de una entrega, con las NCR creadas automáticamente.
type DeliveryResponse struct {
	ID           string                 `json:"id"`
	LocationID   string                 `json:"location_id"`
	PeriodID     string                 `json:"period_id"`
	SupplierID   string                 `json:"supplier_id"`
	InvoiceNo    string                 `json:"invoice_no,omitempty"`
	DeliveryDate string                 `json:"delivery_date"`
	Status       string                 `json:"status"`
	TotalValue   decimal.Decimal        `json:"total_value"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    time.Time              `json:"created_at"`
	PostedAt     *time.Time             `json:"posted_at,omitempty"`
	Lines        []DeliveryLineResponse `json:"lines"`
	NCRsCreated  []NCRResponse          `json:"ncrs_created"`
}

// IssueLineRequest línea de salida.
type IssueLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PostIssueRequest body para POST /api/issues.
type PostIssueRequest struct {
	LocationID string             `json:"location_id" validate:"required"`
	CostCentre string             `json:"cost_centre" validate:"required,max=60"`
	Lines      []IssueLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// IssueLineResponse línea con el WAC congelado.
type IssueLineResponse struct {
	ItemID     string          `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	WACAtIssue decimal.Decimal `json:"wac_at_issue"`
	LineValue  decimal.Decimal `json:"line_value"`
}

// IssueResponse salida de una salida de stock.
type IssueResponse struct {
	ID         string              `json:"id"`
	LocationID string              `json:"location_id"`
	PeriodID   string              `json:"period_id"`
	CostCentre string              `json:"cost_centre"`
	TotalValue decimal.Decimal     `json:"total_value"`
	CreatedBy  string              `json:"created_by"`
	CreatedAt  time.Time           `json:"created_at"`
	Lines      []IssueLineResponse `json:"lines"`
}

// NewDeliveryResponse mapea la entrega y las NCR creadas.
func NewDeliveryResponse(d *entity.Delivery, created []*entity.NCR) *DeliveryResponse {
	out := &DeliveryResponse{
		ID:           d.ID,
		LocationID:   d.LocationID,
		PeriodID:     d.PeriodID,
		SupplierID:   d.SupplierID,
		InvoiceNo:    d.InvoiceNo,
		DeliveryDate: d.DeliveryDate.Format(time.DateOnly),
		Status:       string(d.Status),
		TotalValue:   d.TotalValue,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
		PostedAt:     d.PostedAt,
		Lines:        make([]DeliveryLineResponse, 0, len(d.Lines)),
		NCRsCreated:  make([]NCRResponse, 0, len(created)),
	}
	for _, l := range d.Lines {
		out.Lines = append(out.Lines, DeliveryLineResponse{
			ID:            l.ID,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			PeriodPrice:   l.PeriodPrice,
			PriceVariance: l.PriceVariance,
			LineValue:     l.LineValue,
			NCRID:         l.NCRID,
		})
	}
	for _, n := range created {
		out.NCRsCreated = append(out.NCRsCreated, *NewNCRResponse(n))
	}
	return out
}

// NewIssueResponse mapea una salida.
func NewIssueResponse(i *entity.Issue) *IssueResponse {
	out := &IssueResponse{
		ID:         i.ID,
		LocationID: i.LocationID,
		PeriodID:   i.PeriodID,
		CostCentre: i.CostCentre,
		TotalValue: i.TotalValue,
		CreatedBy:  i.CreatedBy,
		CreatedAt:  i.CreatedAt,
		Lines:      make([]IssueLineResponse, 0, len(i.Lines)),
	}
	for _, l := range i.Lines {
		out.Lines = append(out.Lines, IssueLineResponse{
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			WACAtIssue: l.WACAtIssue,
			LineValue:  l.LineValue,
		})
	}
	return out
}
