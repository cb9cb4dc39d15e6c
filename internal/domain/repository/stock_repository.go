package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por ubicación+ítem.
// Get y GetForUpdate devuelven una fila en cero (no nil) cuando no existe.
type StockRepository interface {
	Get(ctx context.Context, locationID, itemID string) (*entity.LocationStock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, locationID, itemID string) (*entity.LocationStock, error)
	Save(ctx context.Context, stock *entity.LocationStock) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.LocationStock, error)
}
