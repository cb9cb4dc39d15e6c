// Package ncr gestiona los reportes de no conformidad manuales y sus cambios de estado.
// Las NCR automáticas por variación de precio las crea solo el procesador de entregas.
package ncr

import (
	"context"
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
	domncr "github.com/jhoicas/stockledger-api/internal/domain/ncr"
	"github.com/jhoicas/stockledger-api/internal/domain/period"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// UseCase casos de uso de NCR.
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, metrics ports.Metrics, log *logger.Logger) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{txRunner: txRunner, store: store, metrics: metrics, log: log.Named("ncr"), now: time.Now}
}

// CreateManualNCR crea una NCR MANUAL en el periodo OPEN. El valor es la suma de las líneas
// o, sin líneas, el valor explícito.
func (uc *UseCase) CreateManualNCR(ctx context.Context, id dto.Identity, in dto.CreateNCRRequest) (*dto.NCRResponse, error) {
	if !id.CanAccess(in.LocationID) {
		return nil, domain.ErrForbidden
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "requerido")
	}
	loc, err := uc.store.Locations().GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil || !loc.Active {
		return nil, domain.Invalid("location_id", "ubicación inexistente o inactiva")
	}
	if in.DeliveryID != nil && *in.DeliveryID != "" {
		d, err := uc.store.Deliveries().GetByID(ctx, *in.DeliveryID)
		if err != nil {
			return nil, err
		}
		if d == nil || d.LocationID != in.LocationID {
			return nil, domain.Invalid("delivery_id", "entrega inexistente o de otra ubicación")
		}
	}

	now := uc.now()
	n := &entity.NCR{
		ID:         uuid.New().String(),
		LocationID: in.LocationID,
		Type:       entity.NCRManual,
		Reason:     reason,
		Value:      decimal.Zero,
		Status:     entity.NCROpen,
		CreatedBy:  id.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.DeliveryID != nil && *in.DeliveryID != "" {
		deliveryID := *in.DeliveryID
		n.DeliveryID = &deliveryID
	}
	switch {
	case len(in.Lines) > 0:
		for i, l := range in.Lines {
			field := fmt.Sprintf("lines[%d]", i)
			if !l.Quantity.IsPositive() {
				return nil, domain.Invalid(field+".quantity", "debe ser mayor que cero")
			}
			if l.UnitValue.IsNegative() {
				return nil, domain.Invalid(field+".unit_value", "no puede ser negativo")
			}
			if err := inventory.CheckScale(field+".quantity", l.Quantity); err != nil {
				return nil, err
			}
			if err := inventory.CheckScale(field+".unit_value", l.UnitValue); err != nil {
				return nil, err
			}
			item, err := uc.store.Items().GetByID(ctx, l.ItemID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				return nil, domain.Invalid(field+".item_id", "ítem inexistente")
			}
			line := &entity.NCRLine{
				ID:        uuid.New().String(),
				NCRID:     n.ID,
				ItemID:    l.ItemID,
				Quantity:  l.Quantity,
				UnitValue: l.UnitValue,
				Value:     inventory.LineValue(l.Quantity, l.UnitValue),
			}
			n.Lines = append(n.Lines, line)
			n.Value = n.Value.Add(line.Value)
		}
	case in.Value != nil:
		if in.Value.IsNegative() {
			return nil, domain.Invalid("value", "no puede ser negativo")
		}
		n.Value = in.Value.Round(inventory.ValueScale)
	default:
		return nil, domain.Invalid("lines", "se requieren líneas o un valor")
	}

	err = uc.txRunner.Run(ctx, func(tx repository.Store) error {
		current, err := period.Current(ctx, tx.Periods())
		if err != nil {
			return err
		}
		if _, err := period.RequirePostingWindow(ctx, tx, current.ID, in.LocationID); err != nil {
			return err
		}
		n.PeriodID = current.ID
		return tx.NCRs().Create(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.NCRCreated(n.Type)
	uc.log.Info().Str("ncr_id", n.ID).Str("location_id", n.LocationID).Str("value", n.Value.String()).Msg("NCR manual creada")
	return dto.NewNCRResponse(n), nil
}

// UpdateNCRStatus aplica la máquina de estados: OPEN->SENT, SENT->CREDITED|REJECTED, OPEN->RESOLVED.
func (uc *UseCase) UpdateNCRStatus(ctx context.Context, id dto.Identity, ncrID string, in dto.UpdateNCRStatusRequest) (*dto.NCRResponse, error) {
	to := entity.NCRStatus(strings.ToUpper(in.Status))
	var res *domncr.Resolution
	if to == entity.NCRResolved {
		res = &domncr.Resolution{
			Type:            in.ResolutionType,
			FinancialImpact: entity.FinancialImpact(strings.ToUpper(in.FinancialImpact)),
		}
	}
	var n *entity.NCR
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		var err error
		n, err = tx.NCRs().GetForUpdate(ctx, ncrID)
		if err != nil {
			return err
		}
		if n == nil {
			return domain.ErrNotFound
		}
		if !id.CanAccess(n.LocationID) {
			return domain.ErrForbidden
		}
		if err := domncr.Transition(n, to, res); err != nil {
			return err
		}
		n.UpdatedAt = uc.now()
		return tx.NCRs().Update(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("ncr_id", n.ID).Str("status", string(n.Status)).Msg("estado de NCR actualizado")
	return dto.NewNCRResponse(n), nil
}

// GetNCR obtiene una NCR por ID.
func (uc *UseCase) GetNCR(ctx context.Context, id dto.Identity, ncrID string) (*dto.NCRResponse, error) {
	n, err := uc.store.NCRs().GetByID(ctx, ncrID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, domain.ErrNotFound
	}
	if !id.CanAccess(n.LocationID) {
		return nil, domain.ErrForbidden
	}
	return dto.NewNCRResponse(n), nil
}
