package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del traslado entre ubicaciones.
type TransferStatus string

// Estados del traslado. COMPLETED y REJECTED son terminales.
const (
	TransferDraft           TransferStatus = "DRAFT"
	TransferPendingApproval TransferStatus = "PENDING_APPROVAL"
	TransferApproved        TransferStatus = "APPROVED"
	TransferRejected        TransferStatus = "REJECTED"
	TransferCompleted       TransferStatus = "COMPLETED"
)

// Transfer traslado de stock entre dos ubicaciones distintas.
type Transfer struct {
	ID              string
	FromLocationID  string
	ToLocationID    string
	Status          TransferStatus
	PeriodID        *string // periodo en el que se completó
	Reason          string
	RejectionReason string
	TotalValue      decimal.Decimal
	RequestedBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
	Lines           []*TransferLine
}

// TransferLine captura el WAC de origen al aprobar (WACAtTransfer).
type TransferLine struct {
	ID            string
	TransferID    string
	LineNo        int
	ItemID        string
	Quantity      decimal.Decimal
	WACAtTransfer decimal.Decimal
	LineValue     decimal.Decimal
}
