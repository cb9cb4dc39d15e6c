package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryStatus estado de una entrega de proveedor.
type DeliveryStatus string

// Estados de entrega.
const (
	DeliveryDraft  DeliveryStatus = "DRAFT"
	DeliveryPosted DeliveryStatus = "POSTED"
)

// Delivery cabecera de una recepción de proveedor.
type Delivery struct {
	ID           string
	LocationID   string
	PeriodID     string
	SupplierID   string
	InvoiceNo    string
	DeliveryDate time.Time
	Status       DeliveryStatus
	TotalValue   decimal.Decimal
	CreatedBy    string
	CreatedAt    time.Time
	PostedAt     *time.Time
	Lines        []*DeliveryLine
}

// DeliveryLine línea de entrega. PeriodPrice y PriceVariance se capturan al contabilizar.
type DeliveryLine struct {
	ID            string
	DeliveryID    string
	LineNo        int
	ItemID        string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	PeriodPrice   *decimal.Decimal
	PriceVariance decimal.Decimal // quantity × (unit_price − period_price)
	LineValue     decimal.Decimal
	NCRID         *string
}
