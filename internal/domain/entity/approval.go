package entity

import "time"

// ApprovalEntityType etiqueta de la entidad referenciada por una aprobación.
type ApprovalEntityType string

// Tipos de entidad aprobable.
const (
	ApprovalTransfer    ApprovalEntityType = "TRANSFER"
	ApprovalPRF         ApprovalEntityType = "PRF"
	ApprovalPO          ApprovalEntityType = "PO"
	ApprovalPeriodClose ApprovalEntityType = "PERIOD_CLOSE"
)

// Valid indica si el tipo es conocido.
func (t ApprovalEntityType) Valid() bool {
	switch t {
	case ApprovalTransfer, ApprovalPRF, ApprovalPO, ApprovalPeriodClose:
		return true
	}
	return false
}

// ApprovalStatus estado de la aprobación. APPROVED y REJECTED son terminales.
type ApprovalStatus string

// Estados de aprobación.
const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Approval registro genérico de aprobación; la lógica específica vive en el ejecutor de cada tipo.
type Approval struct {
	ID          string
	EntityType  ApprovalEntityType
	EntityID    string
	Status      ApprovalStatus
	RequestedBy string
	RequestedAt time.Time
	ReviewedBy  string
	ReviewedAt  *time.Time
	Comments    string
}
