package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre ubicaciones.
type TransferRepo struct {
	q Querier
}

const transferColumns = `id, from_location_id, to_location_id, status, period_id, reason, rejection_reason,
	total_value, requested_by, created_at, updated_at, completed_at`

// Create inserta el traslado y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.FromLocationID, t.ToLocationID, t.Status, t.PeriodID, t.Reason, t.RejectionReason,
		t.TotalValue, t.RequestedBy, t.CreatedAt, t.UpdatedAt, t.CompletedAt)
	if err != nil {
		return wrapErr("insert transfer", err)
	}
	for _, l := range t.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.TransferID = t.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_lines (id, transfer_id, line_no, item_id, quantity, wac_at_transfer, line_value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.TransferID, l.LineNo, l.ItemID, l.Quantity, l.WACAtTransfer, l.LineValue)
		if err != nil {
			return wrapErr("insert transfer line", err)
		}
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, op, suffix, id string) (*entity.Transfer, error) {
	var t entity.Transfer
	err := r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`+suffix, id).Scan(
		&t.ID, &t.FromLocationID, &t.ToLocationID, &t.Status, &t.PeriodID, &t.Reason, &t.RejectionReason,
		&t.TotalValue, &t.RequestedBy, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, line_no, item_id, quantity, wac_at_transfer, line_value
		FROM transfer_lines WHERE transfer_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, wrapErr("list transfer lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.LineNo, &l.ItemID, &l.Quantity, &l.WACAtTransfer, &l.LineValue); err != nil {
			return nil, wrapErr("scan transfer line", err)
		}
		t.Lines = append(t.Lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list transfer lines", err)
	}
	return &t, nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, "get transfer", "", id)
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, "get transfer for update", " FOR UPDATE", id)
}

// Update reescribe la cabecera y el WAC/valor capturado en cada línea.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	if err := execOne(ctx, r.q, "update transfer", `
		UPDATE transfers SET status = $2, period_id = $3, rejection_reason = $4, total_value = $5,
			updated_at = $6, completed_at = $7
		WHERE id = $1`,
		t.ID, t.Status, t.PeriodID, t.RejectionReason, t.TotalValue, t.UpdatedAt, t.CompletedAt); err != nil {
		return err
	}
	for _, l := range t.Lines {
		if err := execOne(ctx, r.q, "update transfer line", `
			UPDATE transfer_lines SET wac_at_transfer = $2, line_value = $3 WHERE id = $1`,
			l.ID, l.WACAtTransfer, l.LineValue); err != nil {
			return err
		}
	}
	return nil
}

func (r *TransferRepo) sum(ctx context.Context, op, column, periodID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_value), 0) FROM transfers
		WHERE period_id = $1 AND `+column+` = $2 AND status = 'COMPLETED'`, periodID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr(op, err)
	}
	return total, nil
}

// SumCompletedIn valor recibido por la ubicación en el periodo.
func (r *TransferRepo) SumCompletedIn(ctx context.Context, periodID, locationID string) (decimal.Decimal, error) {
	return r.sum(ctx, "sum transfers in", "to_location_id", periodID, locationID)
}

// SumCompletedOut valor enviado por la ubicación en el periodo.
func (r *TransferRepo) SumCompletedOut(ctx context.Context, periodID, locationID string) (decimal.Decimal, error) {
	return r.sum(ctx, "sum transfers out", "from_location_id", periodID, locationID)
}
