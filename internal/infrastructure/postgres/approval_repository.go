package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*ApprovalRepo)(nil)

// ApprovalRepo aprobaciones genéricas.
type ApprovalRepo struct {
	q Querier
}

const approvalColumns = `id, entity_type, entity_id, status, requested_by, requested_at, reviewed_by, reviewed_at, comments`

func scanApproval(row pgx.Row) (*entity.Approval, error) {
	var a entity.Approval
	if err := row.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Status, &a.RequestedBy, &a.RequestedAt,
		&a.ReviewedBy, &a.ReviewedAt, &a.Comments); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta la aprobación. Otra PENDING para la misma entidad es ErrDuplicate.
func (r *ApprovalRepo) Create(ctx context.Context, a *entity.Approval) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO approvals (`+approvalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.EntityType, a.EntityID, a.Status, a.RequestedBy, a.RequestedAt, a.ReviewedBy, a.ReviewedAt, a.Comments)
	return wrapErr("insert approval", err)
}

func (r *ApprovalRepo) one(ctx context.Context, op, query string, args ...any) (*entity.Approval, error) {
	a, err := scanApproval(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return a, nil
}

func (r *ApprovalRepo) GetByID(ctx context.Context, id string) (*entity.Approval, error) {
	return r.one(ctx, "get approval", `SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila: dos aprobadores concurrentes se serializan y el segundo ve el estado final.
func (r *ApprovalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Approval, error) {
	return r.one(ctx, "get approval for update", `SELECT `+approvalColumns+` FROM approvals WHERE id = $1 FOR UPDATE`, id)
}

func (r *ApprovalRepo) Update(ctx context.Context, a *entity.Approval) error {
	return execOne(ctx, r.q, "update approval", `
		UPDATE approvals SET status = $2, reviewed_by = $3, reviewed_at = $4, comments = $5
		WHERE id = $1`, a.ID, a.Status, a.ReviewedBy, a.ReviewedAt, a.Comments)
}

func (r *ApprovalRepo) GetPendingByEntity(ctx context.Context, entityType entity.ApprovalEntityType, entityID string) (*entity.Approval, error) {
	return r.one(ctx, "get pending approval", `
		SELECT `+approvalColumns+` FROM approvals
		WHERE entity_type = $1 AND entity_id = $2 AND status = 'PENDING'`, entityType, entityID)
}

// ListPending aprobaciones PENDING por antigüedad; entityType vacío lista todos los tipos.
func (r *ApprovalRepo) ListPending(ctx context.Context, entityType entity.ApprovalEntityType) ([]*entity.Approval, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+approvalColumns+` FROM approvals
		WHERE status = 'PENDING' AND ($1::text = '' OR entity_type = $1::text)
		ORDER BY requested_at, id`, string(entityType))
	if err != nil {
		return nil, wrapErr("list pending approvals", err)
	}
	defer rows.Close()
	var list []*entity.Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, wrapErr("scan approval", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
