package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Issue salida de stock para consumo de un centro de costo.
type Issue struct {
	ID         string
	LocationID string
	PeriodID   string
	CostCentre string
	TotalValue decimal.Decimal
	CreatedBy  string
	CreatedAt  time.Time
	Lines      []*IssueLine
}

// IssueLine congela el WAC al momento de contabilizar (WACAtIssue).
type IssueLine struct {
	ID         string
	IssueID    string
	LineNo     int
	ItemID     string
	Quantity   decimal.Decimal
	WACAtIssue decimal.Decimal
	LineValue  decimal.Decimal
}
