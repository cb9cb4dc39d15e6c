// Package reconciliation recalcula y guarda la reconciliación por (periodo, ubicación).
package reconciliation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	domncr "github.com/jhoicas/stockledger-api/internal/domain/ncr"
	domrec "github.com/jhoicas/stockledger-api/internal/domain/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// UseCase guarda ajustes manuales y devuelve las cifras derivadas.
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, store: store, log: log.Named("reconciliation"), now: time.Now}
}

// SaveAdjustments recalcula las cifras del libro y guarda los campos manuales.
// Permitido con el periodo OPEN y la ubicación OPEN o READY.
func (uc *UseCase) SaveAdjustments(ctx context.Context, id dto.Identity, periodID, locationID string, in dto.ReconciliationAdjustmentsRequest) (*dto.ReconciliationResponse, error) {
	if !id.CanAccess(locationID) {
		return nil, domain.ErrForbidden
	}
	for _, f := range []struct {
		name   string
		value  decimal.Decimal
		signed bool
	}{
		{"back_charges", in.BackCharges, false},
		{"credits", in.Credits, false},
		{"condemnations", in.Condemnations, false},
		{"adjustments", in.Adjustments, true},
	} {
		if !f.signed && f.value.IsNegative() {
			return nil, domain.Invalid(f.name, "no puede ser negativo")
		}
		if err := inventory.CheckScale(f.name, f.value); err != nil {
			return nil, err
		}
	}

	var rec *entity.Reconciliation
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		p, err := tx.Periods().GetByID(ctx, periodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		pl, err := tx.PeriodLocations().GetForUpdate(ctx, periodID, locationID)
		if err != nil {
			return err
		}
		if pl == nil {
			return domain.ErrNotFound
		}
		if p.Status != entity.PeriodOpen || pl.Status == entity.PeriodLocationClosed {
			return domain.ErrPeriodClosed
		}
		existing, err := tx.Reconciliations().Get(ctx, periodID, locationID)
		if err != nil {
			return err
		}
		now := uc.now()
		if existing == nil {
			existing = &entity.Reconciliation{PeriodID: periodID, LocationID: locationID, CreatedAt: now}
		}
		existing.BackCharges = in.BackCharges
		existing.Credits = in.Credits
		existing.Condemnations = in.Condemnations
		existing.Adjustments = in.Adjustments
		existing.UpdatedBy = id.UserID
		existing.UpdatedAt = now
		if _, _, err := Build(ctx, tx, pl, existing); err != nil {
			return err
		}
		rec = existing
		return tx.Reconciliations().Upsert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("period_id", periodID).
		Str("location_id", locationID).
		Str("consumption", rec.Consumption.String()).
		Msg("reconciliación guardada")
	return dto.NewReconciliationResponse(rec), nil
}

// Get obtiene la última reconciliación guardada.
func (uc *UseCase) Get(ctx context.Context, id dto.Identity, periodID, locationID string) (*dto.ReconciliationResponse, error) {
	if !id.CanAccess(locationID) {
		return nil, domain.ErrForbidden
	}
	rec, err := uc.store.Reconciliations().Get(ctx, periodID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewReconciliationResponse(rec), nil
}

// Build recalcula en rec las cifras del libro (apertura, entradas, traslados, salidas, cierre
// a la valorización actual, NCR y mandays) conservando los campos manuales, y aplica la fórmula.
// Devuelve el resultado y las filas de stock valorizadas.
func Build(ctx context.Context, tx repository.Store, pl *entity.PeriodLocation, rec *entity.Reconciliation) (domrec.Result, []*entity.LocationStock, error) {
	periodID, locationID := pl.PeriodID, pl.LocationID
	receipts, err := tx.Deliveries().SumPosted(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	issues, err := tx.Issues().Sum(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	tIn, err := tx.Transfers().SumCompletedIn(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	tOut, err := tx.Transfers().SumCompletedOut(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	closing, stock, err := inventory.NewStockStore(tx.Stock()).Valuation(ctx, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	ncrs, err := tx.NCRs().ListByPeriodLocation(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}
	credits, losses := domncr.Buckets(ncrs)
	mandays, err := tx.Mandays().Total(ctx, periodID, locationID)
	if err != nil {
		return domrec.Result{}, nil, err
	}

	rec.Opening = pl.OpeningValue
	rec.Receipts = receipts
	rec.Issues = issues
	rec.TransfersIn = tIn
	rec.TransfersOut = tOut
	rec.Closing = closing
	rec.NCRCredits = credits
	rec.NCRLosses = losses
	rec.TotalMandays = mandays
	res := domrec.Calculate(domrec.FromEntity(rec))
	domrec.Apply(rec, res)
	return res, stock, nil
}
