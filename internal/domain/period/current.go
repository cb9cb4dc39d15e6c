package period

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// Current busca el periodo OPEN en cada llamada (no se cachea).
// Sin periodo abierto devuelve ErrPeriodClosed.
func Current(ctx context.Context, repo repository.PeriodRepository) (*entity.Period, error) {
	open, err := repo.FindByStatus(ctx, entity.PeriodOpen)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, domain.ErrPeriodClosed
	}
	return open[0], nil
}

// RequirePostingWindow verifica dentro de la tx que el periodo y la ubicación acepten movimientos.
// Toma un bloqueo compartido sobre (periodo, ubicación) para que un marcado READY concurrente espere.
func RequirePostingWindow(ctx context.Context, store repository.Store, periodID, locationID string) (*entity.Period, error) {
	p, err := store.Periods().GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	pl, err := store.PeriodLocations().GetForShare(ctx, periodID, locationID)
	if err != nil {
		return nil, err
	}
	if err := AcceptsPostings(p, pl); err != nil {
		return nil, err
	}
	return p, nil
}
