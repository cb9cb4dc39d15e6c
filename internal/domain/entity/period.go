package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus estado del periodo contable mensual.
type PeriodStatus string

// Estados del periodo (solo avanzan).
const (
	PeriodDraft        PeriodStatus = "DRAFT"
	PeriodOpen         PeriodStatus = "OPEN"
	PeriodPendingClose PeriodStatus = "PENDING_CLOSE"
	PeriodApproved     PeriodStatus = "APPROVED"
	PeriodClosed       PeriodStatus = "CLOSED"
)

// Period ventana contable con precios bloqueados.
type Period struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
}

// Contains indica si la fecha cae dentro del periodo (por día, inclusive).
func (p *Period) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Overlaps indica si dos periodos comparten algún día.
func (p *Period) Overlaps(other *Period) bool {
	return !p.EndDate.Before(other.StartDate) && !other.EndDate.Before(p.StartDate)
}

// ItemPrice precio bloqueado de un ítem para un periodo. Único por (ítem, periodo).
type ItemPrice struct {
	ItemID   string
	PeriodID string
	Price    decimal.Decimal
	SetBy    string
	SetAt    time.Time
}

// PeriodLocationStatus estado de una ubicación dentro del periodo.
type PeriodLocationStatus string

// Estados de PeriodLocation (solo avanzan).
const (
	PeriodLocationOpen   PeriodLocationStatus = "OPEN"
	PeriodLocationReady  PeriodLocationStatus = "READY"
	PeriodLocationClosed PeriodLocationStatus = "CLOSED"
)

// PeriodLocation fila (periodo, ubicación). Snapshot es inmutable una vez escrito en el cierre.
type PeriodLocation struct {
	PeriodID     string
	LocationID   string
	Status       PeriodLocationStatus
	OpeningValue decimal.Decimal
	ClosingValue *decimal.Decimal
	Snapshot     json.RawMessage
	ReadyAt      *time.Time
	ClosedAt     *time.Time
}
