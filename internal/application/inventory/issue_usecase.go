package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/period"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// IssueUseCase contabiliza salidas de stock hacia un centro de costo con WAC constante.
type IssueUseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewIssueUseCase construye el caso de uso.
func NewIssueUseCase(txRunner ports.TxRunner, store repository.Store, metrics ports.Metrics, log *logger.Logger) *IssueUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &IssueUseCase{txRunner: txRunner, store: store, metrics: metrics, log: log.Named("issue"), now: time.Now}
}

// PostIssue fase 1: bloquea y lee todas las filas y valida suficiencia (acumulando ítems repetidos)
// antes de mutar. Fase 2: descuenta con el WAC leído en la fase 1. Un faltante aborta toda la salida.
func (uc *IssueUseCase) PostIssue(ctx context.Context, id dto.Identity, in dto.PostIssueRequest) (*dto.IssueResponse, error) {
	if !id.CanAccess(in.LocationID) {
		return nil, domain.ErrForbidden
	}
	costCentre := strings.TrimSpace(in.CostCentre)
	if costCentre == "" {
		return nil, domain.Invalid("cost_centre", "requerido")
	}
	loc, err := uc.store.Locations().GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || !loc.Active {
		return nil, domain.Invalid("location_id", "ubicación inexistente o inactiva")
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
		if err := requireItem(ctx, uc.store, field+".item_id", l.ItemID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	var issue *entity.Issue
	err = uc.txRunner.Run(ctx, func(tx repository.Store) error {
		current, err := period.Current(ctx, tx.Periods())
		if err != nil {
			return err
		}
		if _, err := period.RequirePostingWindow(ctx, tx, current.ID, in.LocationID); err != nil {
			return err
		}

		stock := inventory.NewStockStore(tx.Stock())
		keys := make([]inventory.StockKey, 0, len(in.Lines))
		for _, l := range in.Lines {
			keys = append(keys, inventory.StockKey{LocationID: in.LocationID, ItemID: l.ItemID})
		}
		rows, err := stock.Lock(ctx, keys)
		if err != nil {
			return err
		}

		// Fase 1: validar todas las líneas antes de tocar una fila.
		requested := make(map[string]decimal.Decimal, len(in.Lines))
		for _, l := range in.Lines {
			req := requested[l.ItemID].Add(l.Quantity)
			requested[l.ItemID] = req
			row := rows[inventory.StockKey{LocationID: in.LocationID, ItemID: l.ItemID}]
			if row.OnHand.LessThan(req) {
				return &domain.InsufficientStockError{
					ItemID:     l.ItemID,
					LocationID: in.LocationID,
					Requested:  req,
					Available:  row.OnHand,
				}
			}
		}

		// Fase 2: descontar congelando wac_at_issue.
		issue = &entity.Issue{
			ID:         uuid.New().String(),
			LocationID: in.LocationID,
			PeriodID:   current.ID,
			CostCentre: costCentre,
			TotalValue: decimal.Zero,
			CreatedBy:  id.UserID,
			CreatedAt:  now,
		}
		for i, l := range in.Lines {
			wac := rows[inventory.StockKey{LocationID: in.LocationID, ItemID: l.ItemID}].WAC
			if _, err := stock.ApplyDelta(ctx, in.LocationID, l.ItemID, l.Quantity.Neg(), nil); err != nil {
				return err
			}
			line := &entity.IssueLine{
				ID:         uuid.New().String(),
				IssueID:    issue.ID,
				LineNo:     i + 1,
				ItemID:     l.ItemID,
				Quantity:   l.Quantity,
				WACAtIssue: wac,
				LineValue:  inventory.LineValue(l.Quantity, wac),
			}
			issue.Lines = append(issue.Lines, line)
			issue.TotalValue = issue.TotalValue.Add(line.LineValue)
		}
		return tx.Issues().Create(ctx, issue)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.InsufficientStock()
		}
		return nil, err
	}
	uc.metrics.IssuePosted()
	uc.log.Info().
		Str("issue_id", issue.ID).
		Str("location_id", issue.LocationID).
		Str("cost_centre", issue.CostCentre).
		Str("value", issue.TotalValue.String()).
		Msg("salida contabilizada")
	return dto.NewIssueResponse(issue), nil
}

// GetIssue obtiene una salida con sus líneas.
func (uc *IssueUseCase) GetIssue(ctx context.Context, id dto.Identity, issueID string) (*dto.IssueResponse, error) {
	issue, err := uc.store.Issues().GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, domain.ErrNotFound
	}
	if !id.CanAccess(issue.LocationID) {
		return nil, domain.ErrForbidden
	}
	return dto.NewIssueResponse(issue), nil
}
