package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// PeriodRepository persistencia de periodos contables. Los Get devuelven nil, nil si no existe.
type PeriodRepository interface {
	Create(ctx context.Context, p *entity.Period) error
	GetByID(ctx context.Context, id string) (*entity.Period, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Period, error)
	Update(ctx context.Context, p *entity.Period) error
	// FindByStatus lista los periodos en un estado, ordenados por fecha de inicio.
	FindByStatus(ctx context.Context, status entity.PeriodStatus) ([]*entity.Period, error)
	// LatestClosed el periodo CLOSED con fecha de fin más reciente.
	LatestClosed(ctx context.Context) (*entity.Period, error)
	// Overlapping periodos que comparten algún día con [start, end].
	Overlapping(ctx context.Context, start, end time.Time) ([]*entity.Period, error)
}

// ItemPriceRepository precios bloqueados por periodo.
type ItemPriceRepository interface {
	Upsert(ctx context.Context, price *entity.ItemPrice) error
	Get(ctx context.Context, periodID, itemID string) (*entity.ItemPrice, error)
	ListByPeriod(ctx context.Context, periodID string) ([]*entity.ItemPrice, error)
}

// PeriodLocationRepository filas (periodo, ubicación).
type PeriodLocationRepository interface {
	Create(ctx context.Context, pl *entity.PeriodLocation) error
	Get(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error)
	GetForUpdate(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error)
	// GetForShare bloqueo compartido: varias contabilizaciones conviven, un cambio de estado espera.
	GetForShare(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error)
	ListByPeriod(ctx context.Context, periodID string) ([]*entity.PeriodLocation, error)
	Update(ctx context.Context, pl *entity.PeriodLocation) error
}
