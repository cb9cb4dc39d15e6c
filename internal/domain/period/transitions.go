// Package period contiene las máquinas de estado de Period y PeriodLocation.
// Ambas solo avanzan; la única arista hacia atrás es PENDING_CLOSE -> OPEN al rechazar el cierre.
package period

import (
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

var periodEdges = map[entity.PeriodStatus][]entity.PeriodStatus{
	entity.PeriodDraft:        {entity.PeriodOpen},
	entity.PeriodOpen:         {entity.PeriodPendingClose},
	entity.PeriodPendingClose: {entity.PeriodApproved, entity.PeriodOpen},
	entity.PeriodApproved:     {entity.PeriodClosed},
}

var locationEdges = map[entity.PeriodLocationStatus][]entity.PeriodLocationStatus{
	entity.PeriodLocationOpen:  {entity.PeriodLocationReady},
	entity.PeriodLocationReady: {entity.PeriodLocationClosed},
}

// CanTransition indica si el periodo puede pasar de from a to.
func CanTransition(from, to entity.PeriodStatus) bool {
	for _, s := range periodEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition aplica la transición al periodo o devuelve TransitionError.
func Transition(p *entity.Period, to entity.PeriodStatus, now time.Time) error {
	if !CanTransition(p.Status, to) {
		return &domain.TransitionError{Entity: "period", From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.UpdatedAt = now
	if to == entity.PeriodClosed {
		p.ClosedAt = &now
	}
	return nil
}

// CanTransitionLocation indica si la fila (periodo, ubicación) puede pasar de from a to.
func CanTransitionLocation(from, to entity.PeriodLocationStatus) bool {
	for _, s := range locationEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionLocation aplica la transición y registra ready_at / closed_at.
func TransitionLocation(pl *entity.PeriodLocation, to entity.PeriodLocationStatus, now time.Time) error {
	if !CanTransitionLocation(pl.Status, to) {
		return &domain.TransitionError{Entity: "period_location", From: string(pl.Status), To: string(to)}
	}
	pl.Status = to
	switch to {
	case entity.PeriodLocationReady:
		pl.ReadyAt = &now
	case entity.PeriodLocationClosed:
		pl.ClosedAt = &now
	}
	return nil
}

// AcceptsPostings indica si se pueden contabilizar movimientos en la ubicación.
// Devuelve ErrPeriodClosed si el periodo o la ubicación no están OPEN.
func AcceptsPostings(p *entity.Period, pl *entity.PeriodLocation) error {
	if p == nil || p.Status != entity.PeriodOpen {
		return domain.ErrPeriodClosed
	}
	if pl == nil || pl.Status != entity.PeriodLocationOpen {
		return domain.ErrPeriodClosed
	}
	return nil
}

// PricesEditable solo en DRAFT, para cualquier rol.
func PricesEditable(p *entity.Period) error {
	if p.Status != entity.PeriodDraft {
		return domain.ErrPricesLocked
	}
	return nil
}

// NextRange fechas del periodo siguiente: inicia el día después del fin y dura un mes calendario.
func NextRange(p *entity.Period) (time.Time, time.Time) {
	start := p.EndDate.AddDate(0, 0, 1)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// PendingLocations ubicaciones activas cuya fila no está READY (o no existe).
func PendingLocations(active []*entity.Location, rows []*entity.PeriodLocation) []string {
	byLoc := make(map[string]*entity.PeriodLocation, len(rows))
	for _, r := range rows {
		byLoc[r.LocationID] = r
	}
	var pending []string
	for _, l := range active {
		pl, ok := byLoc[l.ID]
		if !ok || pl.Status != entity.PeriodLocationReady {
			pending = append(pending, l.ID)
		}
	}
	return pending
}
