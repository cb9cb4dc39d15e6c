package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// NCRRepository persistencia de reportes de no conformidad.
type NCRRepository interface {
	Create(ctx context.Context, n *entity.NCR) error
	GetByID(ctx context.Context, id string) (*entity.NCR, error)
	GetForUpdate(ctx context.Context, id string) (*entity.NCR, error)
	Update(ctx context.Context, n *entity.NCR) error
	ListByPeriodLocation(ctx context.Context, periodID, locationID string) ([]*entity.NCR, error)
	ListByStatus(ctx context.Context, periodID string, status entity.NCRStatus) ([]*entity.NCR, error)
}

// ApprovalRepository persistencia de aprobaciones genéricas.
type ApprovalRepository interface {
	Create(ctx context.Context, a *entity.Approval) error
	GetByID(ctx context.Context, id string) (*entity.Approval, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Approval, error)
	Update(ctx context.Context, a *entity.Approval) error
	GetPendingByEntity(ctx context.Context, entityType entity.ApprovalEntityType, entityID string) (*entity.Approval, error)
	// ListPending filtra por tipo cuando entityType no es vacío.
	ListPending(ctx context.Context, entityType entity.ApprovalEntityType) ([]*entity.Approval, error)
}

// ReconciliationRepository una fila por (periodo, ubicación).
type ReconciliationRepository interface {
	Get(ctx context.Context, periodID, locationID string) (*entity.Reconciliation, error)
	Upsert(ctx context.Context, r *entity.Reconciliation) error
}
