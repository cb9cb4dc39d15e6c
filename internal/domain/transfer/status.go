// Package transfer contiene la máquina de estados del traslado entre ubicaciones.
package transfer

import (
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

var edges = map[entity.TransferStatus][]entity.TransferStatus{
	entity.TransferDraft:           {entity.TransferPendingApproval},
	entity.TransferPendingApproval: {entity.TransferApproved, entity.TransferRejected},
	entity.TransferApproved:        {entity.TransferCompleted},
}

// Transition aplica la transición o devuelve TransitionError. COMPLETED y REJECTED son terminales.
func Transition(t *entity.Transfer, to entity.TransferStatus) error {
	for _, s := range edges[t.Status] {
		if s == to {
			t.Status = to
			return nil
		}
	}
	return &domain.TransitionError{Entity: "transfer", From: string(t.Status), To: string(to)}
}
