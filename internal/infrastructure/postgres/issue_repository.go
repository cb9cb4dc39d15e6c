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

var _ repository.IssueRepository = (*IssueRepo)(nil)

// IssueRepo salidas de stock.
type IssueRepo struct {
	q Querier
}

// Create inserta la salida y sus líneas con el WAC congelado.
func (r *IssueRepo) Create(ctx context.Context, i *entity.Issue) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO issues (id, location_id, period_id, cost_centre, total_value, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.LocationID, i.PeriodID, i.CostCentre, i.TotalValue, i.CreatedBy, i.CreatedAt)
	if err != nil {
		return wrapErr("insert issue", err)
	}
	for _, l := range i.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.IssueID = i.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO issue_lines (id, issue_id, line_no, item_id, quantity, wac_at_issue, line_value)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, l.IssueID, l.LineNo, l.ItemID, l.Quantity, l.WACAtIssue, l.LineValue)
		if err != nil {
			return wrapErr("insert issue line", err)
		}
	}
	return nil
}

// GetByID salida con líneas; nil, nil si no existe.
func (r *IssueRepo) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	var i entity.Issue
	err := r.q.QueryRow(ctx, `
		SELECT id, location_id, period_id, cost_centre, total_value, created_by, created_at
		FROM issues WHERE id = $1`, id).Scan(
		&i.ID, &i.LocationID, &i.PeriodID, &i.CostCentre, &i.TotalValue, &i.CreatedBy, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get issue", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, issue_id, line_no, item_id, quantity, wac_at_issue, line_value
		FROM issue_lines WHERE issue_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, wrapErr("list issue lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.IssueLine
		if err := rows.Scan(&l.ID, &l.IssueID, &l.LineNo, &l.ItemID, &l.Quantity, &l.WACAtIssue, &l.LineValue); err != nil {
			return nil, wrapErr("scan issue line", err)
		}
		i.Lines = append(i.Lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list issue lines", err)
	}
	return &i, nil
}

// Sum valor total de salidas de la ubicación en el periodo.
func (r *IssueRepo) Sum(ctx context.Context, periodID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_value), 0) FROM issues
		WHERE period_id = $1 AND location_id = $2`, periodID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr("sum issues", err)
	}
	return total, nil
}
