// Package reconciliation deriva consumo y costo por manday de una ubicación en un periodo.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

const mandayScale int32 = 4

// Inputs cifras del libro y ajustes manuales.
type Inputs struct {
	Opening       decimal.Decimal
	Receipts      decimal.Decimal
	TransfersIn   decimal.Decimal
	TransfersOut  decimal.Decimal
	Issues        decimal.Decimal
	Closing       decimal.Decimal
	BackCharges   decimal.Decimal
	ManualCredits decimal.Decimal
	NCRCredits    decimal.Decimal
	NCRLosses     decimal.Decimal
	Condemnations decimal.Decimal
	Adjustments   decimal.Decimal
	TotalMandays  decimal.Decimal
}

// Result cifras derivadas. MandayCost es nil cuando no hay mandays.
type Result struct {
	Consumption decimal.Decimal
	MandayCost  *decimal.Decimal
	Expected    decimal.Decimal // opening + receipts + in − out − issues
	Variance    decimal.Decimal // closing − expected
}

// Consumption = opening + receipts + transfersIn − transfersOut − closing + backCharges
// − (manualCredits + ncrCredits) + ncrLosses − condemnations + adjustments.
// Issues no es término: el cierre ya refleja las salidas.
func Consumption(in Inputs) decimal.Decimal {
	return in.Opening.
		Add(in.Receipts).
		Add(in.TransfersIn).
		Sub(in.TransfersOut).
		Sub(in.Closing).
		Add(in.BackCharges).
		Sub(in.ManualCredits.Add(in.NCRCredits)).
		Add(in.NCRLosses).
		Sub(in.Condemnations).
		Add(in.Adjustments)
}

// MandayCost consumo / mandays; nil si totalMandays es cero.
func MandayCost(consumption, totalMandays decimal.Decimal) *decimal.Decimal {
	if totalMandays.IsZero() {
		return nil
	}
	v := consumption.DivRound(totalMandays, mandayScale)
	return &v
}

// Calculate aplica la fórmula completa.
func Calculate(in Inputs) Result {
	c := Consumption(in)
	expected := in.Opening.Add(in.Receipts).Add(in.TransfersIn).Sub(in.TransfersOut).Sub(in.Issues)
	return Result{
		Consumption: c,
		MandayCost:  MandayCost(c, in.TotalMandays),
		Expected:    expected,
		Variance:    in.Closing.Sub(expected),
	}
}

// FromEntity arma los insumos desde la fila persistida.
func FromEntity(r *entity.Reconciliation) Inputs {
	return Inputs{
		Opening:       r.Opening,
		Receipts:      r.Receipts,
		TransfersIn:   r.TransfersIn,
		TransfersOut:  r.TransfersOut,
		Issues:        r.Issues,
		Closing:       r.Closing,
		BackCharges:   r.BackCharges,
		ManualCredits: r.Credits,
		NCRCredits:    r.NCRCredits,
		NCRLosses:     r.NCRLosses,
		Condemnations: r.Condemnations,
		Adjustments:   r.Adjustments,
		TotalMandays:  r.TotalMandays,
	}
}

// Apply copia las cifras derivadas a la entidad.
func Apply(r *entity.Reconciliation, res Result) {
	r.Consumption = res.Consumption
	r.MandayCost = res.MandayCost
}
