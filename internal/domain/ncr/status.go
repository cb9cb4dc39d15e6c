// Package ncr contiene la detección de variaciones de precio y la máquina de estados de las NCR.
package ncr

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

var edges = map[entity.NCRStatus][]entity.NCRStatus{
	entity.NCROpen: {entity.NCRSent, entity.NCRResolved},
	entity.NCRSent: {entity.NCRCredited, entity.NCRRejected},
}

// CanTransition indica si la NCR puede pasar de from a to.
func CanTransition(from, to entity.NCRStatus) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal CREDITED, REJECTED y RESOLVED no admiten más cambios.
func IsTerminal(s entity.NCRStatus) bool {
	return s == entity.NCRCredited || s == entity.NCRRejected || s == entity.NCRResolved
}

// Resolution datos requeridos al pasar a RESOLVED.
type Resolution struct {
	Type            string
	FinancialImpact entity.FinancialImpact
}

// Transition cambia el estado de la NCR validando la resolución cuando aplica.
func Transition(n *entity.NCR, to entity.NCRStatus, res *Resolution) error {
	if !CanTransition(n.Status, to) {
		return &domain.TransitionError{Entity: "ncr", From: string(n.Status), To: string(to)}
	}
	if to == entity.NCRResolved {
		if res == nil || strings.TrimSpace(res.Type) == "" {
			return domain.Invalid("resolution_type", "requerido para RESOLVED")
		}
		switch res.FinancialImpact {
		case entity.ImpactNone, entity.ImpactCredit, entity.ImpactLoss:
		default:
			return domain.Invalid("financial_impact", "debe ser NONE, CREDIT o LOSS")
		}
		impact := res.FinancialImpact
		n.ResolutionType = strings.TrimSpace(res.Type)
		n.FinancialImpact = &impact
	}
	n.Status = to
	return nil
}

// Buckets separa el valor de las NCR en créditos y pérdidas.
// OPEN y SENT quedan fuera de ambos totales; RESOLVED/NONE no suma.
func Buckets(ncrs []*entity.NCR) (credits, losses decimal.Decimal) {
	credits, losses = decimal.Zero, decimal.Zero
	for _, n := range ncrs {
		switch n.Status {
		case entity.NCRCredited:
			credits = credits.Add(n.Value)
		case entity.NCRRejected:
			losses = losses.Add(n.Value)
		case entity.NCRResolved:
			if n.FinancialImpact == nil {
				continue
			}
			switch *n.FinancialImpact {
			case entity.ImpactCredit:
				credits = credits.Add(n.Value)
			case entity.ImpactLoss:
				losses = losses.Add(n.Value)
			}
		}
	}
	return credits, losses
}
