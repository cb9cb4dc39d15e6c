package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.NCRRepository = (*NCRRepo)(nil)

// NCRRepo reportes de no conformidad.
type NCRRepo struct {
	q Querier
}

const ncrColumns = `id, location_id, period_id, type, auto_generated, delivery_id, delivery_line_id, reason,
	value, status, resolution_type, financial_impact, created_by, created_at, updated_at`

func scanNCR(row pgx.Row) (*entity.NCR, error) {
	var n entity.NCR
	var impact *string
	if err := row.Scan(&n.ID, &n.LocationID, &n.PeriodID, &n.Type, &n.AutoGenerated, &n.DeliveryID,
		&n.DeliveryLineID, &n.Reason, &n.Value, &n.Status, &n.ResolutionType, &impact,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if impact != nil {
		fi := entity.FinancialImpact(*impact)
		n.FinancialImpact = &fi
	}
	return &n, nil
}

func impactParam(fi *entity.FinancialImpact) *string {
	if fi == nil {
		return nil
	}
	s := string(*fi)
	return &s
}

// Create inserta la NCR y sus líneas. Una segunda NCR automática para la misma línea es ErrDuplicate.
func (r *NCRRepo) Create(ctx context.Context, n *entity.NCR) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO ncrs (`+ncrColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		n.ID, n.LocationID, n.PeriodID, n.Type, n.AutoGenerated, n.DeliveryID, n.DeliveryLineID, n.Reason,
		n.Value, n.Status, n.ResolutionType, impactParam(n.FinancialImpact), n.CreatedBy, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return wrapErr("insert ncr", err)
	}
	for _, l := range n.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.NCRID = n.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO ncr_lines (id, ncr_id, item_id, quantity, unit_value, value)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.NCRID, l.ItemID, l.Quantity, l.UnitValue, l.Value)
		if err != nil {
			return wrapErr("insert ncr line", err)
		}
	}
	return nil
}

func (r *NCRRepo) get(ctx context.Context, op, suffix, id string) (*entity.NCR, error) {
	n, err := scanNCR(r.q.QueryRow(ctx, `SELECT `+ncrColumns+` FROM ncrs WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, ncr_id, item_id, quantity, unit_value, value
		FROM ncr_lines WHERE ncr_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, wrapErr("list ncr lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.NCRLine
		if err := rows.Scan(&l.ID, &l.NCRID, &l.ItemID, &l.Quantity, &l.UnitValue, &l.Value); err != nil {
			return nil, wrapErr("scan ncr line", err)
		}
		n.Lines = append(n.Lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list ncr lines", err)
	}
	return n, nil
}

func (r *NCRRepo) GetByID(ctx context.Context, id string) (*entity.NCR, error) {
	return r.get(ctx, "get ncr", "", id)
}

func (r *NCRRepo) GetForUpdate(ctx context.Context, id string) (*entity.NCR, error) {
	return r.get(ctx, "get ncr for update", " FOR UPDATE", id)
}

// Update cambia estado y resolución.
func (r *NCRRepo) Update(ctx context.Context, n *entity.NCR) error {
	return execOne(ctx, r.q, "update ncr", `
		UPDATE ncrs SET status = $2, resolution_type = $3, financial_impact = $4, updated_at = $5
		WHERE id = $1`, n.ID, n.Status, n.ResolutionType, impactParam(n.FinancialImpact), n.UpdatedAt)
}

func (r *NCRRepo) list(ctx context.Context, op, where string, args ...any) ([]*entity.NCR, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ncrColumns+` FROM ncrs WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.NCR
	for rows.Next() {
		n, err := scanNCR(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// ListByPeriodLocation NCR de la ubicación en el periodo (sin líneas).
func (r *NCRRepo) ListByPeriodLocation(ctx context.Context, periodID, locationID string) ([]*entity.NCR, error) {
	return r.list(ctx, "list ncrs", "period_id = $1 AND location_id = $2", periodID, locationID)
}

// ListByStatus NCR del periodo en un estado (sin líneas).
func (r *NCRRepo) ListByStatus(ctx context.Context, periodID string, status entity.NCRStatus) ([]*entity.NCR, error) {
	return r.list(ctx, "list ncrs by status", "period_id = $1 AND status = $2", periodID, status)
}
