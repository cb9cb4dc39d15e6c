// Package approval implementa el flujo genérico PENDING -> {APPROVED, REJECTED}.
// La lógica propia de cada tipo de entidad vive en un Executor registrado en la tabla de despacho.
package approval

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// Executor ejecuta la decisión sobre la entidad referenciada, dentro de la misma tx que el cambio de estado.
// Si devuelve error se revierte todo, incluido el estado de la aprobación.
type Executor interface {
	Approve(ctx context.Context, tx repository.Store, a *entity.Approval, reviewer dto.Identity) error
	Reject(ctx context.Context, tx repository.Store, a *entity.Approval, reviewer dto.Identity) error
}

// Observer opcional: se invoca después del commit.
type Observer interface {
	Observe(a *entity.Approval)
}

// StatusOnly ejecutor para flujos de compra (PRF, PO) que solo leen la decisión.
type StatusOnly struct{}

func (StatusOnly) Approve(context.Context, repository.Store, *entity.Approval, dto.Identity) error {
	return nil
}

func (StatusOnly) Reject(context.Context, repository.Store, *entity.Approval, dto.Identity) error {
	return nil
}

// UseCase resuelve aprobaciones serializando por id entre instancias (Locker).
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	locker   ports.Locker
	log      *logger.Logger
	now      func() time.Time

	mu        sync.RWMutex
	executors map[entity.ApprovalEntityType]Executor
}

// NewUseCase construye el caso de uso con PRF y PO registrados como StatusOnly.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, locker ports.Locker, log *logger.Logger) *UseCase {
	uc := &UseCase{
		txRunner:  txRunner,
		store:     store,
		locker:    locker,
		log:       log.Named("approval"),
		now:       time.Now,
		executors: make(map[entity.ApprovalEntityType]Executor),
	}
	uc.Register(entity.ApprovalPRF, StatusOnly{})
	uc.Register(entity.ApprovalPO, StatusOnly{})
	return uc
}

// Register asocia un ejecutor a un tipo de entidad (reemplaza el anterior).
func (uc *UseCase) Register(t entity.ApprovalEntityType, ex Executor) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.executors[t] = ex
}

func (uc *UseCase) executor(t entity.ApprovalEntityType) (Executor, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	ex, ok := uc.executors[t]
	if !ok {
		return nil, domain.Invalid("entity_type", fmt.Sprintf("sin ejecutor para %s", t))
	}
	return ex, nil
}

// Request crea la aprobación PENDING dentro de la tx de la acción propietaria.
// Solo puede existir una pendiente por entidad.
func Request(ctx context.Context, tx repository.Store, t entity.ApprovalEntityType, entityID, requestedBy string, now time.Time) (*entity.Approval, error) {
	if !t.Valid() {
		return nil, domain.Invalid("entity_type", "tipo desconocido")
	}
	existing, err := tx.Approvals().GetPendingByEntity(ctx, t, entityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("aprobación pendiente %s para %s %s: %w", existing.ID, t, entityID, domain.ErrDuplicate)
	}
	a := &entity.Approval{
		ID:          uuid.New().String(),
		EntityType:  t,
		EntityID:    entityID,
		Status:      entity.ApprovalPending,
		RequestedBy: requestedBy,
		RequestedAt: now,
	}
	if err := tx.Approvals().Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Approve aprueba una solicitud PENDING; el comentario es opcional.
func (uc *UseCase) Approve(ctx context.Context, reviewer dto.Identity, approvalID, comment string) (*dto.ApprovalResponse, error) {
	return uc.resolve(ctx, reviewer, approvalID, entity.ApprovalApproved, strings.TrimSpace(comment))
}

// Reject rechaza una solicitud PENDING; el comentario es obligatorio.
func (uc *UseCase) Reject(ctx context.Context, reviewer dto.Identity, approvalID, comment string) (*dto.ApprovalResponse, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, domain.Invalid("comment", "requerido para rechazar")
	}
	return uc.resolve(ctx, reviewer, approvalID, entity.ApprovalRejected, comment)
}

func (uc *UseCase) resolve(ctx context.Context, reviewer dto.Identity, approvalID string, to entity.ApprovalStatus, comment string) (*dto.ApprovalResponse, error) {
	if !reviewer.IsElevated() {
		return nil, domain.ErrForbidden
	}
	release, err := uc.locker.Acquire(ctx, "approval:"+approvalID)
	if err != nil {
		return nil, err
	}
	defer release()

	var resolved *entity.Approval
	var ex Executor
	err = uc.txRunner.Run(ctx, func(tx repository.Store) error {
		a, err := tx.Approvals().GetForUpdate(ctx, approvalID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if a.Status != entity.ApprovalPending {
			return &domain.TransitionError{Entity: "approval", From: string(a.Status), To: string(to)}
		}
		ex, err = uc.executor(a.EntityType)
		if err != nil {
			return err
		}
		now := uc.now()
		a.ReviewedBy = reviewer.UserID
		a.ReviewedAt = &now
		a.Comments = comment
		if to == entity.ApprovalApproved {
			err = ex.Approve(ctx, tx, a, reviewer)
		} else {
			err = ex.Reject(ctx, tx, a, reviewer)
		}
		if err != nil {
			return err
		}
		a.Status = to
		if err := tx.Approvals().Update(ctx, a); err != nil {
			return err
		}
		resolved = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	if obs, ok := ex.(Observer); ok {
		obs.Observe(resolved)
	}
	uc.log.Info().
		Str("approval_id", resolved.ID).
		Str("entity_type", string(resolved.EntityType)).
		Str("entity_id", resolved.EntityID).
		Str("status", string(resolved.Status)).
		Str("reviewer", reviewer.UserID).
		Msg("aprobación resuelta")
	return dto.NewApprovalResponse(resolved), nil
}

// Get obtiene una aprobación por ID.
func (uc *UseCase) Get(ctx context.Context, approvalID string) (*dto.ApprovalResponse, error) {
	a, err := uc.store.Approvals().GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewApprovalResponse(a), nil
}

// ListPending lista aprobaciones pendientes, opcionalmente filtradas por tipo.
func (uc *UseCase) ListPending(ctx context.Context, entityType string) (*dto.ApprovalListResponse, error) {
	t := entity.ApprovalEntityType(strings.ToUpper(entityType))
	if t != "" && !t.Valid() {
		return nil, domain.Invalid("entity_type", "tipo desconocido")
	}
	list, err := uc.store.Approvals().ListPending(ctx, t)
	if err != nil {
		return nil, err
	}
	out := &dto.ApprovalListResponse{Items: make([]dto.ApprovalResponse, 0, len(list))}
	for _, a := range list {
		out.Items = append(out.Items, *dto.NewApprovalResponse(a))
	}
	return out, nil
}

// PendingFor busca la aprobación pendiente de una entidad (nil si no hay).
func (uc *UseCase) PendingFor(ctx context.Context, t entity.ApprovalEntityType, entityID string) (*entity.Approval, error) {
	return uc.store.Approvals().GetPendingByEntity(ctx, t, entityID)
}
