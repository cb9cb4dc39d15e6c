package dto

import (
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ApprovalActionRequest comentario opcional al aprobar; obligatorio al rechazar (validado en el caso de uso).
type ApprovalActionRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

// ApprovalResponse salida de una aprobación.
type ApprovalResponse struct {
	ID          string     `json:"id"`
	EntityType  string     `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requested_by"`
	RequestedAt time.Time  `json:"requested_at"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Comments    string     `json:"comments,omitempty"`
}

// ApprovalListResponse lista de aprobaciones pendientes.
type ApprovalListResponse struct {
	Items []ApprovalResponse `json:"items"`
}

// NewApprovalResponse mapea una aprobación.
func NewApprovalResponse(a *entity.Approval) *ApprovalResponse {
	return &ApprovalResponse{
		ID:          a.ID,
		EntityType:  string(a.EntityType),
		EntityID:    a.EntityID,
		Status:      string(a.Status),
		RequestedBy: a.RequestedBy,
		RequestedAt: a.RequestedAt,
		ReviewedBy:  a.ReviewedBy,
		ReviewedAt:  a.ReviewedAt,
		Comments:    a.Comments,
	}
}
