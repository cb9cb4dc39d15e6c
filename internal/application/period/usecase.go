// Package period orquesta el ciclo de vida del periodo: apertura, precios, ubicaciones listas,
// solicitud y aprobación de cierre atómico con snapshot, y roll-forward.
package period

import (
	"context"
	"errors"
	"fmt"
	"io"
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
	domperiod "github.com/jhoicas/stockledger-api/internal/domain/period"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// UseCase casos de uso del periodo.
type UseCase struct {
	txRunner  ports.TxRunner
	store     repository.Store
	approvals *approval.UseCase
	sheets    ports.PriceSheetReader
	metrics   ports.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso y registra el ejecutor PERIOD_CLOSE en approvals.
func NewUseCase(
	txRunner ports.TxRunner,
	store repository.Store,
	approvals *approval.UseCase,
	sheets ports.PriceSheetReader,
	metrics ports.Metrics,
	log *logger.Logger,
) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	uc := &UseCase{
		txRunner:  txRunner,
		store:     store,
		approvals: approvals,
		sheets:    sheets,
		metrics:   metrics,
		log:       log.Named("period"),
		now:       time.Now,
	}
	approvals.Register(entity.ApprovalPeriodClose, &CloseExecutor{metrics: uc.metrics, log: uc.log, now: uc.now})
	return uc
}

// CreatePeriod crea un periodo DRAFT. Un solapamiento con otro periodo devuelve ErrDuplicate.
func (uc *UseCase) CreatePeriod(ctx context.Context, id dto.Identity, in dto.CreatePeriodRequest) (*dto.PeriodResponse, error) {
	start, err := time.Parse(time.DateOnly, in.StartDate)
	if err != nil {
		return nil, domain.Invalid("start_date", "formato YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, in.EndDate)
	if err != nil {
		return nil, domain.Invalid("end_date", "formato YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, domain.Invalid("end_date", "anterior a la fecha de inicio")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	var p *entity.Period
	err = uc.txRunner.Run(ctx, func(tx repository.Store) error {
		p, err = createDraft(ctx, tx, name, start, end, uc.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("period_id", p.ID).Str("name", p.Name).Str("by", id.UserID).Msg("periodo creado")
	return dto.NewPeriodResponse(p, nil), nil
}

// OpenPeriod DRAFT -> OPEN. No puede existir otro periodo OPEN. Crea las filas (periodo, ubicación)
// que falten para cada ubicación activa con apertura = cierre del último periodo CLOSED (0 si no hay).
func (uc *UseCase) OpenPeriod(ctx context.Context, id dto.Identity, periodID string) (*dto.PeriodResponse, error) {
	var p *entity.Period
	var rows []*entity.PeriodLocation
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		var err error
		p, err = tx.Periods().GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		open, err := tx.Periods().FindByStatus(ctx, entity.PeriodOpen)
		if err != nil {
			return err
		}
		for _, o := range open {
			if o.ID != p.ID {
				return fmt.Errorf("el periodo %s ya está abierto: %w", o.Name, domain.ErrInvalidTransition)
			}
		}
		now := uc.now()
		if err := domperiod.Transition(p, entity.PeriodOpen, now); err != nil {
			return err
		}

		openings, err := priorClosings(ctx, tx)
		if err != nil {
			return err
		}
		active, err := tx.Locations().ListActive(ctx)
		if err != nil {
			return err
		}
		for _, loc := range active {
			pl, err := tx.PeriodLocations().Get(ctx, p.ID, loc.ID)
			if err != nil {
				return err
			}
			if pl != nil {
				continue
			}
			opening, ok := openings[loc.ID]
			if !ok {
				opening = decimal.Zero
			}
			if err := tx.PeriodLocations().Create(ctx, &entity.PeriodLocation{
				PeriodID:     p.ID,
				LocationID:   loc.ID,
				Status:       entity.PeriodLocationOpen,
				OpeningValue: opening,
			}); err != nil {
				return err
			}
		}
		if err := tx.Periods().Update(ctx, p); err != nil {
			return err
		}
		rows, err = tx.PeriodLocations().ListByPeriod(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("period_id", p.ID).Int("locations", len(rows)).Str("by", id.UserID).Msg("periodo abierto")
	return dto.NewPeriodResponse(p, rows), nil
}

// SetPeriodPrices escribe precios solo con el periodo en DRAFT, sin importar el rol.
func (uc *UseCase) SetPeriodPrices(ctx context.Context, id dto.Identity, periodID string, in dto.SetPricesRequest) (*dto.SetPricesResponse, error) {
	if len(in.Prices) == 0 {
		return nil, domain.Invalid("prices", "al menos un precio")
	}
	for i, pr := range in.Prices {
		field := fmt.Sprintf("prices[%d]", i)
		if pr.Price.IsNegative() {
			return nil, domain.Invalid(field+".price", "no puede ser negativo")
		}
		if err := inventory.CheckScale(field+".price", pr.Price); err != nil {
			return nil, err
		}
		item, err := uc.store.Items().GetByID(ctx, pr.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.Invalid(field+".item_id", "ítem inexistente")
		}
	}
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		p, err := tx.Periods().GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := domperiod.PricesEditable(p); err != nil {
			return err
		}
		now := uc.now()
		for _, pr := range in.Prices {
			if err := tx.Prices().Upsert(ctx, &entity.ItemPrice{
				ItemID:   pr.ItemID,
				PeriodID: p.ID,
				Price:    pr.Price,
				SetBy:    id.UserID,
				SetAt:    now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.SetPricesResponse{PeriodID: periodID, Count: len(in.Prices)}, nil
}

// ImportPeriodPrices lee una planilla (código de ítem, precio) y usa la misma ruta que SetPeriodPrices.
func (uc *UseCase) ImportPeriodPrices(ctx context.Context, id dto.Identity, periodID string, r io.Reader) (*dto.SetPricesResponse, error) {
	if uc.sheets == nil {
		return nil, domain.Invalid("file", "importación de planillas no disponible")
	}
	rows, err := uc.sheets.Read(r)
	if err != nil {
		return nil, err
	}
	req := dto.SetPricesRequest{Prices: make([]dto.PriceInput, 0, len(rows))}
	for _, row := range rows {
		item, err := uc.store.Items().GetByCode(ctx, row.ItemCode)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.Invalid(fmt.Sprintf("row %d", row.Row), "código de ítem desconocido: "+row.ItemCode)
		}
		req.Prices = append(req.Prices, dto.PriceInput{ItemID: item.ID, Price: row.Price})
	}
	return uc.SetPeriodPrices(ctx, id, periodID, req)
}

// MarkLocationReady OPEN -> READY. Requiere que exista la reconciliación de la ubicación.
func (uc *UseCase) MarkLocationReady(ctx context.Context, id dto.Identity, periodID, locationID string) (*dto.PeriodResponse, error) {
	if !id.CanAccess(locationID) {
		return nil, domain.ErrForbidden
	}
	var p *entity.Period
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		var err error
		p, err = tx.Periods().GetByID(ctx, periodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status != entity.PeriodOpen {
			return domain.ErrPeriodClosed
		}
		pl, err := tx.PeriodLocations().GetForUpdate(ctx, periodID, locationID)
		if err != nil {
			return err
		}
		if pl == nil {
			return domain.ErrNotFound
		}
		rec, err := tx.Reconciliations().Get(ctx, periodID, locationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrReconciliationNotCompleted
		}
		if err := domperiod.TransitionLocation(pl, entity.PeriodLocationReady, uc.now()); err != nil {
			return err
		}
		return tx.PeriodLocations().Update(ctx, pl)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("period_id", periodID).Str("location_id", locationID).Msg("ubicación lista para cierre")
	return uc.GetPeriod(ctx, p.ID)
}

// RequestPeriodClose exige todas las ubicaciones activas READY (si no, LocationsNotReadyError sin mutar nada),
// crea la aprobación PERIOD_CLOSE y pasa el periodo a PENDING_CLOSE. Las NCR abiertas son advertencias.
func (uc *UseCase) RequestPeriodClose(ctx context.Context, id dto.Identity, periodID string) (*dto.CloseRequestResponse, error) {
	if !id.IsElevated() {
		return nil, domain.ErrForbidden
	}
	var p *entity.Period
	var a *entity.Approval
	var open []*entity.NCR
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		var err error
		p, err = tx.Periods().GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.Status != entity.PeriodOpen {
			return &domain.TransitionError{Entity: "period", From: string(p.Status), To: string(entity.PeriodPendingClose)}
		}
		if err := requireAllReady(ctx, tx, p.ID); err != nil {
			return err
		}
		now := uc.now()
		a, err = approval.Request(ctx, tx, entity.ApprovalPeriodClose, p.ID, id.UserID, now)
		if err != nil {
			return err
		}
		if err := domperiod.Transition(p, entity.PeriodPendingClose, now); err != nil {
			return err
		}
		if err := tx.Periods().Update(ctx, p); err != nil {
			return err
		}
		open, err = tx.NCRs().ListByStatus(ctx, p.ID, entity.NCROpen)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := &dto.CloseRequestResponse{
		Period:   dto.NewPeriodResponse(p, nil),
		Approval: dto.NewApprovalResponse(a),
		Warnings: make([]dto.NCRWarning, 0, len(open)),
	}
	for _, n := range open {
		out.Warnings = append(out.Warnings, dto.NCRWarning{NCRID: n.ID, LocationID: n.LocationID, Value: n.Value, Reason: n.Reason})
	}
	uc.metrics.PeriodClose("requested")
	ev := uc.log.Info()
	if len(open) > 0 {
		ev = uc.log.Warn()
	}
	ev.Str("period_id", p.ID).Str("approval_id", a.ID).Int("open_ncrs", len(open)).Msg("cierre de periodo solicitado")
	return out, nil
}

// ApprovePeriodClose aprueba la solicitud de cierre; el cierre atómico lo ejecuta CloseExecutor.
func (uc *UseCase) ApprovePeriodClose(ctx context.Context, id dto.Identity, approvalID, comment string) (*dto.PeriodResponse, error) {
	a, err := uc.approvals.Get(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if entity.ApprovalEntityType(a.EntityType) != entity.ApprovalPeriodClose {
		return nil, domain.Invalid("approval_id", "no corresponde a un cierre de periodo")
	}
	if _, err := uc.approvals.Approve(ctx, id, approvalID, comment); err != nil {
		uc.metrics.PeriodClose("failed")
		return nil, err
	}
	return uc.GetPeriod(ctx, a.EntityID)
}

// RollForwardPeriod crea el periodo DRAFT siguiente a uno CLOSED, con apertura = cierre por ubicación
// y copia opcional de precios.
func (uc *UseCase) RollForwardPeriod(ctx context.Context, id dto.Identity, periodID string, in dto.RollForwardRequest) (*dto.PeriodResponse, error) {
	if !id.IsElevated() {
		return nil, domain.ErrForbidden
	}
	var next *entity.Period
	var rows []*entity.PeriodLocation
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		prev, err := tx.Periods().GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if prev == nil {
			return domain.ErrNotFound
		}
		if prev.Status != entity.PeriodClosed {
			return &domain.TransitionError{Entity: "period", From: string(prev.Status), To: "ROLL_FORWARD"}
		}
		start, end := domperiod.NextRange(prev)
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = start.Format("2006-01")
		}
		now := uc.now()
		next, err = createDraft(ctx, tx, name, start, end, now)
		if err != nil {
			return err
		}
		closed, err := tx.PeriodLocations().ListByPeriod(ctx, prev.ID)
		if err != nil {
			return err
		}
		for _, pl := range closed {
			if pl.ClosingValue == nil {
				continue
			}
			row := &entity.PeriodLocation{
				PeriodID:     next.ID,
				LocationID:   pl.LocationID,
				Status:       entity.PeriodLocationOpen,
				OpeningValue: *pl.ClosingValue,
			}
			if err := tx.PeriodLocations().Create(ctx, row); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if !in.CopyPrices {
			return nil
		}
		prices, err := tx.Prices().ListByPeriod(ctx, prev.ID)
		if err != nil {
			return err
		}
		for _, pr := range prices {
			if err := tx.Prices().Upsert(ctx, &entity.ItemPrice{
				ItemID:   pr.ItemID,
				PeriodID: next.ID,
				Price:    pr.Price,
				SetBy:    id.UserID,
				SetAt:    now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("from_period", periodID).Str("period_id", next.ID).Bool("copy_prices", in.CopyPrices).Msg("roll-forward de periodo")
	return dto.NewPeriodResponse(next, rows), nil
}

// CurrentPeriod el periodo OPEN, consultado en cada llamada.
func (uc *UseCase) CurrentPeriod(ctx context.Context) (*dto.PeriodResponse, error) {
	p, err := domperiod.Current(ctx, uc.store.Periods())
	if err != nil {
		if errors.Is(err, domain.ErrPeriodClosed) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return uc.GetPeriod(ctx, p.ID)
}

// GetPeriod obtiene un periodo con sus ubicaciones.
func (uc *UseCase) GetPeriod(ctx context.Context, periodID string) (*dto.PeriodResponse, error) {
	p, err := uc.store.Periods().GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.store.PeriodLocations().ListByPeriod(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewPeriodResponse(p, rows), nil
}

func createDraft(ctx context.Context, tx repository.Store, name string, start, end, now time.Time) (*entity.Period, error) {
	overlapping, err := tx.Periods().Overlapping(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("se solapa con el periodo %s: %w", overlapping[0].Name, domain.ErrDuplicate)
	}
	p := &entity.Period{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    entity.PeriodDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Periods().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// priorClosings valores de cierre por ubicación del último periodo CLOSED.
func priorClosings(ctx context.Context, tx repository.Store) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	last, err := tx.Periods().LatestClosed(ctx)
	if err != nil || last == nil {
		return out, err
	}
	rows, err := tx.PeriodLocations().ListByPeriod(ctx, last.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.ClosingValue != nil {
			out[r.LocationID] = *r.ClosingValue
		}
	}
	return out, nil
}

func requireAllReady(ctx context.Context, tx repository.Store, periodID string) error {
	active, err := tx.Locations().ListActive(ctx)
	if err != nil {
		return err
	}
	rows, err := tx.PeriodLocations().ListByPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if pending := domperiod.PendingLocations(active, rows); len(pending) > 0 {
		return &domain.LocationsNotReadyError{PeriodID: periodID, Pending: pending}
	}
	return nil
}
