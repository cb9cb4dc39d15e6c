// Package transfer implementa el traslado entre ubicaciones con compuerta de aprobación.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	domtransfer "github.com/jhoicas/stockledger-api/internal/domain/transfer"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// UseCase crea, envía y consulta traslados; aprobar y rechazar se delegan al subsistema de aprobaciones.
type UseCase struct {
	txRunner  ports.TxRunner
	store     repository.Store
	approvals *approval.UseCase
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso y registra el ejecutor TRANSFER en approvals.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, approvals *approval.UseCase, metrics ports.Metrics, log *logger.Logger) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	uc := &UseCase{
		txRunner:  txRunner,
		store:     store,
		approvals: approvals,
		metrics:   metrics,
		log:       log.Named("transfer"),
		now:       time.Now,
	}
	approvals.Register(entity.ApprovalTransfer, &Executor{metrics: uc.metrics, log: uc.log, now: uc.now})
	return uc
}

// CreateTransfer valida origen != destino y suficiencia (no vinculante) en origen.
// Con submit (por defecto) queda PENDING_APPROVAL con su Approval; si no, DRAFT.
func (uc *UseCase) CreateTransfer(ctx context.Context, id dto.Identity, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.FromLocationID == in.ToLocationID {
		return nil, domain.Invalid("to_location_id", "debe ser distinta del origen")
	}
	if !id.CanAccess(in.FromLocationID) {
		return nil, domain.ErrForbidden
	}
	for _, field := range []struct{ name, id string }{{"from_location_id", in.FromLocationID}, {"to_location_id", in.ToLocationID}} {
		loc, err := uc.store.Locations().GetByID(ctx, field.id)
		if err != nil {
			return nil, err
		}
		if loc == nil || !loc.Active {
			return nil, domain.Invalid(field.name, "ubicación inexistente o inactiva")
		}
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "al menos una línea")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if !l.Quantity.IsPositive() {
			return nil, domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		if err := inventory.CheckScale(field+".quantity", l.Quantity); err != nil {
			return nil, err
		}
		item, err := uc.store.Items().GetByID(ctx, l.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.Invalid(field+".item_id", "ítem inexistente")
		}
	}
	submit := in.Submit == nil || *in.Submit

	now := uc.now()
	t := &entity.Transfer{
		ID:             uuid.New().String(),
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Status:         entity.TransferDraft,
		Reason:         strings.TrimSpace(in.Reason),
		TotalValue:     decimal.Zero,
		RequestedBy:    id.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, l := range in.Lines {
		t.Lines = append(t.Lines, &entity.TransferLine{
			ID:            uuid.New().String(),
			TransferID:    t.ID,
			LineNo:        i + 1,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			WACAtTransfer: decimal.Zero,
			LineValue:     decimal.Zero,
		})
	}

	var approvalID string
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		t.Status = entity.TransferDraft
		if err := softCheck(ctx, tx.Stock(), t); err != nil {
			return err
		}
		if submit {
			if err := domtransfer.Transition(t, entity.TransferPendingApproval); err != nil {
				return err
			}
		}
		if err := tx.Transfers().Create(ctx, t); err != nil {
			return err
		}
		if !submit {
			return nil
		}
		a, err := approval.Request(ctx, tx, entity.ApprovalTransfer, t.ID, id.UserID, now)
		if err != nil {
			return err
		}
		approvalID = a.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.InsufficientStock()
		}
		return nil, err
	}
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("from", t.FromLocationID).
		Str("to", t.ToLocationID).
		Str("status", string(t.Status)).
		Msg("traslado creado")
	return dto.NewTransferResponse(t, approvalID), nil
}

// SubmitTransfer DRAFT -> PENDING_APPROVAL, repitiendo la verificación de stock y creando la aprobación.
func (uc *UseCase) SubmitTransfer(ctx context.Context, id dto.Identity, transferID string) (*dto.TransferResponse, error) {
	var t *entity.Transfer
	var approvalID string
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		var err error
		t, err = tx.Transfers().GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !id.CanAccess(t.FromLocationID) {
			return domain.ErrForbidden
		}
		if err := domtransfer.Transition(t, entity.TransferPendingApproval); err != nil {
			return err
		}
		if err := softCheck(ctx, tx.Stock(), t); err != nil {
			return err
		}
		t.UpdatedAt = uc.now()
		if err := tx.Transfers().Update(ctx, t); err != nil {
			return err
		}
		a, err := approval.Request(ctx, tx, entity.ApprovalTransfer, t.ID, id.UserID, t.UpdatedAt)
		if err != nil {
			return err
		}
		approvalID = a.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewTransferResponse(t, approvalID), nil
}

// ApproveTransfer resuelve la aprobación pendiente del traslado.
func (uc *UseCase) ApproveTransfer(ctx context.Context, id dto.Identity, transferID, comment string) (*dto.TransferResponse, error) {
	a, err := uc.pendingApproval(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.approvals.Approve(ctx, id, a.ID, comment); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.InsufficientStock()
		}
		return nil, err
	}
	return uc.GetTransfer(ctx, id, transferID)
}

// RejectTransfer rechaza con motivo obligatorio; no mueve stock.
func (uc *UseCase) RejectTransfer(ctx context.Context, id dto.Identity, transferID, reason string) (*dto.TransferResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.Invalid("reason", "requerido para rechazar")
	}
	a, err := uc.pendingApproval(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.approvals.Reject(ctx, id, a.ID, reason); err != nil {
		return nil, err
	}
	return uc.GetTransfer(ctx, id, transferID)
}

// GetTransfer obtiene un traslado con sus líneas.
func (uc *UseCase) GetTransfer(ctx context.Context, id dto.Identity, transferID string) (*dto.TransferResponse, error) {
	t, err := uc.store.Transfers().GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !id.CanAccess(t.FromLocationID) && !id.CanAccess(t.ToLocationID) {
		return nil, domain.ErrForbidden
	}
	var approvalID string
	if t.Status == entity.TransferPendingApproval {
		if a, err := uc.approvals.PendingFor(ctx, entity.ApprovalTransfer, t.ID); err == nil && a != nil {
			approvalID = a.ID
		}
	}
	return dto.NewTransferResponse(t, approvalID), nil
}

func (uc *UseCase) pendingApproval(ctx context.Context, transferID string) (*entity.Approval, error) {
	t, err := uc.store.Transfers().GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.Status != entity.TransferPendingApproval {
		return nil, &domain.TransitionError{Entity: "transfer", From: string(t.Status), To: string(entity.TransferApproved)}
	}
	a, err := uc.approvals.PendingFor(ctx, entity.ApprovalTransfer, transferID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// softCheck verifica suficiencia sin bloquear filas; la validación definitiva ocurre al aprobar.
func softCheck(ctx context.Context, repo repository.StockRepository, t *entity.Transfer) error {
	requested := make(map[string]decimal.Decimal, len(t.Lines))
	for _, l := range t.Lines {
		req := requested[l.ItemID].Add(l.Quantity)
		requested[l.ItemID] = req
		row, err := repo.Get(ctx, t.FromLocationID, l.ItemID)
		if err != nil {
			return err
		}
		if row.OnHand.LessThan(req) {
			return &domain.InsufficientStockError{
				ItemID:     l.ItemID,
				LocationID: t.FromLocationID,
				Requested:  req,
				Available:  row.OnHand,
			}
		}
	}
	return nil
}
