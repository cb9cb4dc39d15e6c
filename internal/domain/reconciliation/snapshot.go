package reconciliation

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockLine valorización de un ítem al cierre.
type StockLine struct {
	ItemID string          `json:"item_id"`
	OnHand decimal.Decimal `json:"on_hand"`
	WAC    decimal.Decimal `json:"wac"`
	Value  decimal.Decimal `json:"value"`
}

// Snapshot desglose inmutable escrito en PeriodLocation al cerrar.
type Snapshot struct {
	PeriodID      string           `json:"period_id"`
	LocationID    string           `json:"location_id"`
	Opening       decimal.Decimal  `json:"opening"`
	Receipts      decimal.Decimal  `json:"receipts"`
	TransfersIn   decimal.Decimal  `json:"transfers_in"`
	TransfersOut  decimal.Decimal  `json:"transfers_out"`
	Issues        decimal.Decimal  `json:"issues"`
	Closing       decimal.Decimal  `json:"closing"`
	BackCharges   decimal.Decimal  `json:"back_charges"`
	ManualCredits decimal.Decimal  `json:"manual_credits"`
	NCRCredits    decimal.Decimal  `json:"ncr_credits"`
	Condemnations decimal.Decimal  `json:"condemnations"`
	NCRLosses     decimal.Decimal  `json:"ncr_losses"`
	Adjustments   decimal.Decimal  `json:"adjustments"`
	Consumption   decimal.Decimal  `json:"consumption"`
	Expected      decimal.Decimal  `json:"expected"`
	Variance      decimal.Decimal  `json:"variance"`
	TotalMandays  decimal.Decimal  `json:"total_mandays"`
	MandayCost    *decimal.Decimal `json:"manday_cost"`
	Stock         []StockLine      `json:"stock"`
	ClosedAt      time.Time        `json:"closed_at"`
}

// NewSnapshot arma el snapshot desde los insumos, el resultado y las filas de stock.
func NewSnapshot(periodID, locationID string, in Inputs, res Result, stock []*entity.LocationStock, closedAt time.Time) Snapshot {
	s := Snapshot{
		PeriodID:      periodID,
		LocationID:    locationID,
		Opening:       in.Opening,
		Receipts:      in.Receipts,
		TransfersIn:   in.TransfersIn,
		TransfersOut:  in.TransfersOut,
		Issues:        in.Issues,
		Closing:       in.Closing,
		BackCharges:   in.BackCharges,
		ManualCredits: in.ManualCredits,
		NCRCredits:    in.NCRCredits,
		Condemnations: in.Condemnations,
		NCRLosses:     in.NCRLosses,
		Adjustments:   in.Adjustments,
		Consumption:   res.Consumption,
		Expected:      res.Expected,
		Variance:      res.Variance,
		TotalMandays:  in.TotalMandays,
		MandayCost:    res.MandayCost,
		Stock:         make([]StockLine, 0, len(stock)),
		ClosedAt:      closedAt,
	}
	for _, r := range stock {
		if r.OnHand.IsZero() {
			continue
		}
		s.Stock = append(s.Stock, StockLine{ItemID: r.ItemID, OnHand: r.OnHand, WAC: r.WAC, Value: r.Value()})
	}
	return s
}

// Marshal serializa el snapshot.
func (s Snapshot) Marshal() (json.RawMessage, error) {
	return json.Marshal(s)
}
