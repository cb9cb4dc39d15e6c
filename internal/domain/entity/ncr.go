package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// NCRType origen del reporte de no conformidad.
type NCRType string

// Tipos de NCR.
const (
	NCRManual        NCRType = "MANUAL"
	NCRPriceVariance NCRType = "PRICE_VARIANCE"
)

// NCRStatus estado de la NCR.
type NCRStatus string

// Estados de NCR.
const (
	NCROpen     NCRStatus = "OPEN"
	NCRSent     NCRStatus = "SENT"
	NCRCredited NCRStatus = "CREDITED"
	NCRRejected NCRStatus = "REJECTED"
	NCRResolved NCRStatus = "RESOLVED"
)

// FinancialImpact clasificación obligatoria al resolver una NCR.
type FinancialImpact string

// Impactos financieros.
const (
	ImpactNone   FinancialImpact = "NONE"
	ImpactCredit FinancialImpact = "CREDIT"
	ImpactLoss   FinancialImpact = "LOSS"
)

// NCR reporte de no conformidad (precio o manual).
type NCR struct {
	ID              string
	LocationID      string
	PeriodID        string
	Type            NCRType
	AutoGenerated   bool
	DeliveryID      *string
	DeliveryLineID  *string
	Reason          string
	Value           decimal.Decimal
	Status          NCRStatus
	ResolutionType  string
	FinancialImpact *FinancialImpact
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []*NCRLine
}

// NCRLine detalle opcional de una NCR manual.
type NCRLine struct {
	ID        string
	NCRID     string
	ItemID    string
	Quantity  decimal.Decimal
	UnitValue decimal.Decimal
	Value     decimal.Decimal
}
