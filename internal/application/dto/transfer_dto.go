package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// TransferLineRequest línea de traslado.
type TransferLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateTransferRequest body para POST /api/transfers. Submit por defecto true.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id" validate:"required"`
	ToLocationID   string                `json:"to_location_id" validate:"required,nefield=FromLocationID"`
	Reason         string                `json:"reason" validate:"max=500"`
	Submit         *bool                 `json:"submit,omitempty"`
	Lines          []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// RejectRequest motivo obligatorio de rechazo.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// TransferLineResponse línea con el WAC de origen capturado al aprobar.
type TransferLineResponse struct {
	ItemID        string          `json:"item_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	WACAtTransfer decimal.Decimal `json:"wac_at_transfer"`
	LineValue     decimal.Decimal `json:"line_value"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID              string                 `json:"id"`
	FromLocationID  string                 `json:"from_location_id"`
	ToLocationID    string                 `json:"to_location_id"`
	Status          string                 `json:"status"`
	PeriodID        *string                `json:"period_id,omitempty"`
	Reason          string                 `json:"reason,omitempty"`
	RejectionReason string                 `json:"rejection_reason,omitempty"`
	TotalValue      decimal.Decimal        `json:"total_value"`
	RequestedBy     string                 `json:"requested_by"`
	ApprovalID      string                 `json:"approval_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	Lines           []TransferLineResponse `json:"lines"`
}

// NewTransferResponse mapea un traslado.
func NewTransferResponse(t *entity.Transfer, approvalID string) *TransferResponse {
	out := &TransferResponse{
		ID:              t.ID,
		FromLocationID:  t.FromLocationID,
		ToLocationID:    t.ToLocationID,
		Status:          string(t.Status),
		PeriodID:        t.PeriodID,
		Reason:          t.Reason,
		RejectionReason: t.RejectionReason,
		TotalValue:      t.TotalValue,
		RequestedBy:     t.RequestedBy,
		ApprovalID:      approvalID,
		CreatedAt:       t.CreatedAt,
		CompletedAt:     t.CompletedAt,
		Lines:           make([]TransferLineResponse, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, TransferLineResponse{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			WACAtTransfer: l.WACAtTransfer,
			LineValue:     l.LineValue,
		})
	}
	return out
}
