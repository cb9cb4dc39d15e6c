package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var (
	_ repository.PeriodRepository         = (*PeriodRepo)(nil)
	_ repository.ItemPriceRepository      = (*ItemPriceRepo)(nil)
	_ repository.PeriodLocationRepository = (*PeriodLocationRepo)(nil)
	_ repository.ReconciliationRepository = (*ReconciliationRepo)(nil)
)

// PeriodRepo persistencia de periodos.
type PeriodRepo struct {
	q Querier
}

const periodColumns = `id, name, start_date, end_date, status, created_at, updated_at, closed_at`

func scanPeriod(row pgx.Row) (*entity.Period, error) {
	var p entity.Period
	if err := row.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.ClosedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PeriodRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Period, error) {
	p, err := scanPeriod(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return p, nil
}

func (r *PeriodRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Period, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create persiste un periodo nuevo. Un segundo OPEN viola ux_periods_single_open.
func (r *PeriodRepo) Create(ctx context.Context, p *entity.Period) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO periods (id, name, start_date, end_date, status, created_at, updated_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.StartDate, p.EndDate, p.Status, p.CreatedAt, p.UpdatedAt, p.ClosedAt)
	return wrapErr("insert period", err)
}

// GetByID obtiene un periodo por ID.
func (r *PeriodRepo) GetByID(ctx context.Context, id string) (*entity.Period, error) {
	return r.one(ctx, "get period", `SELECT `+periodColumns+` FROM periods WHERE id = $1`, id)
}

// GetForUpdate obtiene el periodo y bloquea la fila.
func (r *PeriodRepo) GetForUpdate(ctx context.Context, id string) (*entity.Period, error) {
	return r.one(ctx, "get period for update", `SELECT `+periodColumns+` FROM periods WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza nombre, estado y marcas de tiempo.
func (r *PeriodRepo) Update(ctx context.Context, p *entity.Period) error {
	return execOne(ctx, r.q, "update period", `
		UPDATE periods SET name = $2, status = $3, updated_at = $4, closed_at = $5
		WHERE id = $1`, p.ID, p.Name, p.Status, p.UpdatedAt, p.ClosedAt)
}

// FindByStatus periodos en el estado dado ordenados por inicio.
func (r *PeriodRepo) FindByStatus(ctx context.Context, status entity.PeriodStatus) ([]*entity.Period, error) {
	return r.list(ctx, "find periods by status",
		`SELECT `+periodColumns+` FROM periods WHERE status = $1 ORDER BY start_date`, status)
}

// LatestClosed el CLOSED más reciente por fecha de fin.
func (r *PeriodRepo) LatestClosed(ctx context.Context) (*entity.Period, error) {
	return r.one(ctx, "latest closed period",
		`SELECT `+periodColumns+` FROM periods WHERE status = 'CLOSED' ORDER BY end_date DESC LIMIT 1`)
}

// Overlapping periodos con algún día en común con [start, end].
func (r *PeriodRepo) Overlapping(ctx context.Context, start, end time.Time) ([]*entity.Period, error) {
	return r.list(ctx, "overlapping periods", `
		SELECT `+periodColumns+` FROM periods
		WHERE start_date <= $2 AND end_date >= $1
		ORDER BY start_date`, start, end)
}

// ItemPriceRepo precios por periodo.
type ItemPriceRepo struct {
	q Querier
}

// Upsert inserta o reemplaza el precio del ítem en el periodo.
func (r *ItemPriceRepo) Upsert(ctx context.Context, p *entity.ItemPrice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO item_prices (period_id, item_id, price, set_by, set_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period_id, item_id)
		DO UPDATE SET price = EXCLUDED.price, set_by = EXCLUDED.set_by, set_at = EXCLUDED.set_at`,
		p.PeriodID, p.ItemID, p.Price, p.SetBy, p.SetAt)
	return wrapErr("upsert item price", err)
}

// Get devuelve nil, nil si el ítem no tiene precio en el periodo.
func (r *ItemPriceRepo) Get(ctx context.Context, periodID, itemID string) (*entity.ItemPrice, error) {
	var p entity.ItemPrice
	err := r.q.QueryRow(ctx, `
		SELECT item_id, period_id, price, set_by, set_at
		FROM item_prices WHERE period_id = $1 AND item_id = $2`, periodID, itemID).
		Scan(&p.ItemID, &p.PeriodID, &p.Price, &p.SetBy, &p.SetAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get item price", err)
	}
	return &p, nil
}

// ListByPeriod precios del periodo ordenados por ítem.
func (r *ItemPriceRepo) ListByPeriod(ctx context.Context, periodID string) ([]*entity.ItemPrice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT item_id, period_id, price, set_by, set_at
		FROM item_prices WHERE period_id = $1 ORDER BY item_id`, periodID)
	if err != nil {
		return nil, wrapErr("list item prices", err)
	}
	defer rows.Close()
	var list []*entity.ItemPrice
	for rows.Next() {
		var p entity.ItemPrice
		if err := rows.Scan(&p.ItemID, &p.PeriodID, &p.Price, &p.SetBy, &p.SetAt); err != nil {
			return nil, wrapErr("scan item price", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// PeriodLocationRepo filas (periodo, ubicación).
type PeriodLocationRepo struct {
	q Querier
}

const periodLocationColumns = `period_id, location_id, status, opening_value, closing_value, snapshot, ready_at, closed_at`

func scanPeriodLocation(row pgx.Row) (*entity.PeriodLocation, error) {
	var pl entity.PeriodLocation
	var snapshot []byte
	if err := row.Scan(&pl.PeriodID, &pl.LocationID, &pl.Status, &pl.OpeningValue, &pl.ClosingValue,
		&snapshot, &pl.ReadyAt, &pl.ClosedAt); err != nil {
		return nil, err
	}
	if snapshot != nil {
		pl.Snapshot = json.RawMessage(snapshot)
	}
	return &pl, nil
}

func (r *PeriodLocationRepo) one(ctx context.Context, op, suffix, periodID, locationID string) (*entity.PeriodLocation, error) {
	pl, err := scanPeriodLocation(r.q.QueryRow(ctx,
		`SELECT `+periodLocationColumns+` FROM period_locations WHERE period_id = $1 AND location_id = $2`+suffix,
		periodID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return pl, nil
}

func snapshotParam(s json.RawMessage) any {
	if len(s) == 0 {
		return nil
	}
	return []byte(s)
}

// Create inserta la fila; duplicada devuelve ErrDuplicate.
func (r *PeriodLocationRepo) Create(ctx context.Context, pl *entity.PeriodLocation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO period_locations (`+periodLocationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pl.PeriodID, pl.LocationID, pl.Status, pl.OpeningValue, pl.ClosingValue,
		snapshotParam(pl.Snapshot), pl.ReadyAt, pl.ClosedAt)
	return wrapErr("insert period location", err)
}

func (r *PeriodLocationRepo) Get(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	return r.one(ctx, "get period location", "", periodID, locationID)
}

func (r *PeriodLocationRepo) GetForUpdate(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	return r.one(ctx, "get period location for update", " FOR UPDATE", periodID, locationID)
}

func (r *PeriodLocationRepo) GetForShare(ctx context.Context, periodID, locationID string) (*entity.PeriodLocation, error) {
	return r.one(ctx, "get period location for share", " FOR SHARE", periodID, locationID)
}

// ListByPeriod filas del periodo ordenadas por ubicación.
func (r *PeriodLocationRepo) ListByPeriod(ctx context.Context, periodID string) ([]*entity.PeriodLocation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+periodLocationColumns+` FROM period_locations WHERE period_id = $1 ORDER BY location_id`, periodID)
	if err != nil {
		return nil, wrapErr("list period locations", err)
	}
	defer rows.Close()
	var list []*entity.PeriodLocation
	for rows.Next() {
		pl, err := scanPeriodLocation(rows)
		if err != nil {
			return nil, wrapErr("scan period location", err)
		}
		list = append(list, pl)
	}
	return list, rows.Err()
}

// Update cambia estado y valores. Snapshot y closing_value, una vez escritos, no se reemplazan.
func (r *PeriodLocationRepo) Update(ctx context.Context, pl *entity.PeriodLocation) error {
	return execOne(ctx, r.q, "update period location", `
		UPDATE period_locations SET
			status        = $3,
			opening_value = $4,
			closing_value = COALESCE(closing_value, $5),
			snapshot      = COALESCE(snapshot, $6),
			ready_at      = $7,
			closed_at     = $8
		WHERE period_id = $1 AND location_id = $2`,
		pl.PeriodID, pl.LocationID, pl.Status, pl.OpeningValue, pl.ClosingValue,
		snapshotParam(pl.Snapshot), pl.ReadyAt, pl.ClosedAt)
}

// ReconciliationRepo una fila por (periodo, ubicación).
type ReconciliationRepo struct {
	q Querier
}

// Get devuelve nil, nil si la ubicación aún no registró su reconciliación.
func (r *ReconciliationRepo) Get(ctx context.Context, periodID, locationID string) (*entity.Reconciliation, error) {
	var rec entity.Reconciliation
	err := r.q.QueryRow(ctx, `
		SELECT period_id, location_id, opening, receipts, transfers_in, transfers_out, issues, closing,
		       back_charges, credits, condemnations, adjustments, ncr_credits, ncr_losses,
		       total_mandays, consumption, manday_cost, updated_by, created_at, updated_at
		FROM reconciliations WHERE period_id = $1 AND location_id = $2`, periodID, locationID).Scan(
		&rec.PeriodID, &rec.LocationID, &rec.Opening, &rec.Receipts, &rec.TransfersIn, &rec.TransfersOut,
		&rec.Issues, &rec.Closing, &rec.BackCharges, &rec.Credits, &rec.Condemnations, &rec.Adjustments,
		&rec.NCRCredits, &rec.NCRLosses, &rec.TotalMandays, &rec.Consumption, &rec.MandayCost,
		&rec.UpdatedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get reconciliation", err)
	}
	return &rec, nil
}

// Upsert inserta o reemplaza la fila completa (created_at se conserva).
func (r *ReconciliationRepo) Upsert(ctx context.Context, rec *entity.Reconciliation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO reconciliations (
			period_id, location_id, opening, receipts, transfers_in, transfers_out, issues, closing,
			back_charges, credits, condemnations, adjustments, ncr_credits, ncr_losses,
			total_mandays, consumption, manday_cost, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (period_id, location_id) DO UPDATE SET
			opening       = EXCLUDED.opening,
			receipts      = EXCLUDED.receipts,
			transfers_in  = EXCLUDED.transfers_in,
			transfers_out = EXCLUDED.transfers_out,
			issues        = EXCLUDED.issues,
			closing       = EXCLUDED.closing,
			back_charges  = EXCLUDED.back_charges,
			credits       = EXCLUDED.credits,
			condemnations = EXCLUDED.condemnations,
			adjustments   = EXCLUDED.adjustments,
			ncr_credits   = EXCLUDED.ncr_credits,
			ncr_losses    = EXCLUDED.ncr_losses,
			total_mandays = EXCLUDED.total_mandays,
			consumption   = EXCLUDED.consumption,
			manday_cost   = EXCLUDED.manday_cost,
			updated_by    = EXCLUDED.updated_by,
			updated_at    = EXCLUDED.updated_at`,
		rec.PeriodID, rec.LocationID, rec.Opening, rec.Receipts, rec.TransfersIn, rec.TransfersOut,
		rec.Issues, rec.Closing, rec.BackCharges, rec.Credits, rec.Condemnations, rec.Adjustments,
		rec.NCRCredits, rec.NCRLosses, rec.TotalMandays, rec.Consumption, rec.MandayCost,
		rec.UpdatedBy, rec.CreatedAt, rec.UpdatedAt)
	return wrapErr("upsert reconciliation", err)
}
