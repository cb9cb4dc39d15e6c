package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/period"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	domtransfer "github.com/jhoicas/stockledger-api/internal/domain/transfer"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// Executor ejecuta la decisión sobre un traslado dentro de la tx de la aprobación.
type Executor struct {
	metrics ports.Metrics
	log     *logger.Logger
	now     func() time.Time
}

// Approve revalida todas las líneas contra el stock actual del origen y mueve el stock:
// descuenta el origen capturando wac_at_transfer y recibe en destino con ese costo.
// Un faltante revierte todo y el traslado sigue PENDING_APPROVAL.
func (e *Executor) Approve(ctx context.Context, tx repository.Store, a *entity.Approval, reviewer dto.Identity) error {
	t, err := e.load(ctx, tx, a, reviewer)
	if err != nil {
		return err
	}
	current, err := period.Current(ctx, tx.Periods())
	if err != nil {
		return err
	}
	for _, loc := range []string{t.FromLocationID, t.ToLocationID} {
		if _, err := period.RequirePostingWindow(ctx, tx, current.ID, loc); err != nil {
			return err
		}
	}

	stock := inventory.NewStockStore(tx.Stock())
	keys := make([]inventory.StockKey, 0, 2*len(t.Lines))
	for _, l := range t.Lines {
		keys = append(keys,
			inventory.StockKey{LocationID: t.FromLocationID, ItemID: l.ItemID},
			inventory.StockKey{LocationID: t.ToLocationID, ItemID: l.ItemID})
	}
	rows, err := stock.Lock(ctx, keys)
	if err != nil {
		return err
	}
	requested := make(map[string]decimal.Decimal, len(t.Lines))
	for _, l := range t.Lines {
		req := requested[l.ItemID].Add(l.Quantity)
		requested[l.ItemID] = req
		src := rows[inventory.StockKey{LocationID: t.FromLocationID, ItemID: l.ItemID}]
		if src.OnHand.LessThan(req) {
			return &domain.InsufficientStockError{
				ItemID:     l.ItemID,
				LocationID: t.FromLocationID,
				Requested:  req,
				Available:  src.OnHand,
			}
		}
	}

	if err := domtransfer.Transition(t, entity.TransferApproved); err != nil {
		return err
	}
	total := decimal.Zero
	for _, l := range t.Lines {
		wac := rows[inventory.StockKey{LocationID: t.FromLocationID, ItemID: l.ItemID}].WAC
		if _, err := stock.ApplyDelta(ctx, t.FromLocationID, l.ItemID, l.Quantity.Neg(), nil); err != nil {
			return err
		}
		if _, err := stock.Receive(ctx, t.ToLocationID, l.ItemID, l.Quantity, wac); err != nil {
			return err
		}
		l.WACAtTransfer = wac
		l.LineValue = inventory.LineValue(l.Quantity, wac)
		total = total.Add(l.LineValue)
	}
	if err := domtransfer.Transition(t, entity.TransferCompleted); err != nil {
		return err
	}
	now := e.now()
	periodID := current.ID
	t.PeriodID = &periodID
	t.TotalValue = total
	t.CompletedAt = &now
	t.UpdatedAt = now
	return tx.Transfers().Update(ctx, t)
}

// Reject deja el traslado REJECTED (terminal) con el comentario como motivo.
func (e *Executor) Reject(ctx context.Context, tx repository.Store, a *entity.Approval, reviewer dto.Identity) error {
	t, err := e.load(ctx, tx, a, reviewer)
	if err != nil {
		return err
	}
	if err := domtransfer.Transition(t, entity.TransferRejected); err != nil {
		return err
	}
	t.RejectionReason = a.Comments
	t.UpdatedAt = e.now()
	return tx.Transfers().Update(ctx, t)
}

// Observe registra el resultado una vez confirmado.
func (e *Executor) Observe(a *entity.Approval) {
	outcome := "completed"
	if a.Status == entity.ApprovalRejected {
		outcome = "rejected"
	}
	e.metrics.TransferFinished(outcome)
	e.log.Info().Str("transfer_id", a.EntityID).Str("outcome", outcome).Msg("traslado resuelto")
}

func (e *Executor) load(ctx context.Context, tx repository.Store, a *entity.Approval, reviewer dto.Identity) (*entity.Transfer, error) {
	t, err := tx.Transfers().GetForUpdate(ctx, a.EntityID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !reviewer.CanAccess(t.FromLocationID) && !reviewer.CanAccess(t.ToLocationID) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}
