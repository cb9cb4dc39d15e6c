package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// LocationRepository puerto de solo lectura para ubicaciones (datos maestros externos).
// GetByID devuelve nil, nil si no existe.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListActive(ctx context.Context) ([]*entity.Location, error)
}

// ItemRepository puerto de solo lectura para ítems.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
}

// SupplierRepository puerto de solo lectura para proveedores.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}

// MandaysRepository total de mandays (POB) por periodo y ubicación, alimentado externamente.
// Devuelve cero si no hay registro.
type MandaysRepository interface {
	Total(ctx context.Context, periodID, locationID string) (decimal.Decimal, error)
}
