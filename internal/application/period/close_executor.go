package period

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	apprec "github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	domperiod "github.com/jhoicas/stockledger-api/internal/domain/period"
	domrec "github.com/jhoicas/stockledger-api/internal/domain/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// CloseExecutor ejecuta la decisión sobre un PERIOD_CLOSE dentro de la tx de la aprobación.
type CloseExecutor struct {
	metrics ports.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// Approve PENDING_CLOSE -> APPROVED; por cada ubicación READY recalcula la reconciliación, valoriza el
// stock, escribe el snapshot y la cierra; al final el periodo pasa a CLOSED. Cualquier fallo revierte todo.
func (e *CloseExecutor) Approve(ctx context.Context, tx repository.Store, a *entity.Approval, _ dto.Identity) error {
	p, err := tx.Periods().GetForUpdate(ctx, a.EntityID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	now := e.now()
	if err := domperiod.Transition(p, entity.PeriodApproved, now); err != nil {
		return err
	}
	if err := requireAllReady(ctx, tx, p.ID); err != nil {
		return err
	}
	rows, err := tx.PeriodLocations().ListByPeriod(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, pl := range rows {
		if pl.Status != entity.PeriodLocationReady {
			continue
		}
		if err := closeLocation(ctx, tx, pl, now); err != nil {
			return err
		}
	}
	if err := domperiod.Transition(p, entity.PeriodClosed, now); err != nil {
		return err
	}
	return tx.Periods().Update(ctx, p)
}

// Reject devuelve el periodo a OPEN; las ubicaciones siguen READY.
func (e *CloseExecutor) Reject(ctx context.Context, tx repository.Store, a *entity.Approval, _ dto.Identity) error {
	p, err := tx.Periods().GetForUpdate(ctx, a.EntityID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if p.Status != entity.PeriodPendingClose {
		return &domain.TransitionError{Entity: "period", From: string(p.Status), To: string(entity.PeriodOpen)}
	}
	if err := domperiod.Transition(p, entity.PeriodOpen, e.now()); err != nil {
		return err
	}
	return tx.Periods().Update(ctx, p)
}

// Observe registra el resultado una vez confirmado.
func (e *CloseExecutor) Observe(a *entity.Approval) {
	outcome := "closed"
	if a.Status == entity.ApprovalRejected {
		outcome = "rejected"
	}
	e.metrics.PeriodClose(outcome)
	e.log.Info().Str("period_id", a.EntityID).Str("outcome", outcome).Msg("cierre de periodo resuelto")
}

func closeLocation(ctx context.Context, tx repository.Store, pl *entity.PeriodLocation, now time.Time) error {
	rec, err := tx.Reconciliations().Get(ctx, pl.PeriodID, pl.LocationID)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrReconciliationNotCompleted
	}
	res, stock, err := apprec.Build(ctx, tx, pl, rec)
	if err != nil {
		return err
	}
	rec.UpdatedAt = now
	if err := tx.Reconciliations().Upsert(ctx, rec); err != nil {
		return err
	}
	snap, err := domrec.NewSnapshot(pl.PeriodID, pl.LocationID, domrec.FromEntity(rec), res, stock, now).Marshal()
	if err != nil {
		return err
	}
	closing := rec.Closing
	pl.ClosingValue = &closing
	pl.Snapshot = snap
	if err := domperiod.TransitionLocation(pl, entity.PeriodLocationClosed, now); err != nil {
		return err
	}
	return tx.PeriodLocations().Update(ctx, pl)
}
