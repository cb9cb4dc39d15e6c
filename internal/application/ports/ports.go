package ports

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo; no hay estado intermedio observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Store) error) error
}

// Locker serializa acciones sobre un recurso entre instancias (ej. aprobar un cierre).
// Si el recurso está tomado devuelve domain.ErrConcurrencyConflict.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Metrics eventos de negocio observables. Las implementaciones deben tolerar llamadas concurrentes.
type Metrics interface {
	DeliveryPosted(ncrs int)
	NCRCreated(t entity.NCRType)
	IssuePosted()
	TransferFinished(outcome string)
	PeriodClose(outcome string)
	InsufficientStock()
}

// NopMetrics descarta los eventos.
type NopMetrics struct{}

func (NopMetrics) DeliveryPosted(int)        {}
func (NopMetrics) NCRCreated(entity.NCRType) {}
func (NopMetrics) IssuePosted()              {}
func (NopMetrics) TransferFinished(string)   {}
func (NopMetrics) PeriodClose(string)        {}
func (NopMetrics) InsufficientStock()        {}

// PriceRow fila de una planilla de precios de periodo.
type PriceRow struct {
	Row      int
	ItemCode string
	Price    decimal.Decimal
}

// PriceSheetReader lee una planilla de precios (código de ítem, precio).
type PriceSheetReader interface {
	Read(r io.Reader) ([]PriceRow, error)
}
