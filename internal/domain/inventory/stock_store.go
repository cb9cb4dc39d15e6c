package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// StockKey identifica una fila de stock (ubicación, ítem).
type StockKey struct {
	LocationID string
	ItemID     string
}

// SortKeys ordena las claves por (ubicación, ítem) y elimina duplicados.
// Todos los bloqueos de stock se toman en este orden.
func SortKeys(keys []StockKey) []StockKey {
	seen := make(map[StockKey]struct{}, len(keys))
	out := make([]StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// StockStore aplica deltas sobre LocationStock con guarda de no negatividad.
// Debe construirse con un repositorio atado a la transacción en curso.
type StockStore struct {
	repo repository.StockRepository
	now  func() time.Time
}

// NewStockStore construye el store sobre el repositorio de la tx.
func NewStockStore(repo repository.StockRepository) *StockStore {
	return &StockStore{repo: repo, now: time.Now}
}

// Lock bloquea (SELECT FOR UPDATE) todas las filas indicadas en orden y las devuelve por clave.
// Las filas inexistentes se devuelven con on_hand 0 y wac 0.
func (s *StockStore) Lock(ctx context.Context, keys []StockKey) (map[StockKey]*entity.LocationStock, error) {
	rows := make(map[StockKey]*entity.LocationStock, len(keys))
	for _, k := range SortKeys(keys) {
		row, err := s.repo.GetForUpdate(ctx, k.LocationID, k.ItemID)
		if err != nil {
			return nil, err
		}
		rows[k] = row
	}
	return rows, nil
}

// ApplyDelta bloquea la fila y aplica deltaQty. Con delta positivo newWAC es obligatorio;
// con delta negativo el WAC no cambia y un on_hand resultante negativo devuelve
// InsufficientStockError sin modificar la fila.
func (s *StockStore) ApplyDelta(ctx context.Context, locationID, itemID string, deltaQty decimal.Decimal, newWAC *decimal.Decimal) (*entity.LocationStock, error) {
	if deltaQty.IsZero() {
		return nil, domain.Invalid("quantity", "el delta no puede ser cero")
	}
	if deltaQty.IsPositive() && newWAC == nil {
		return nil, domain.Invalid("wac", "una entrada requiere el nuevo costo promedio")
	}
	row, err := s.repo.GetForUpdate(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	next := row.OnHand.Add(deltaQty)
	if next.IsNegative() {
		return nil, &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: locationID,
			Requested:  deltaQty.Neg(),
			Available:  row.OnHand,
		}
	}
	updated := *row
	updated.OnHand = next
	if newWAC != nil {
		if newWAC.IsNegative() {
			return nil, domain.Invalid("wac", "el costo promedio no puede ser negativo")
		}
		updated.WAC = *newWAC
	}
	updated.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Receive aplica una entrada calculando el nuevo WAC con ApplyReceipt.
func (s *StockStore) Receive(ctx context.Context, locationID, itemID string, qty, unitPrice decimal.Decimal) (*entity.LocationStock, error) {
	row, err := s.repo.GetForUpdate(ctx, locationID, itemID)
	if err != nil {
		return nil, err
	}
	wac := ApplyReceipt(row.OnHand, row.WAC, qty, unitPrice)
	return s.ApplyDelta(ctx, locationID, itemID, qty, &wac)
}

// Valuation suma on_hand × wac de todas las filas de la ubicación.
func (s *StockStore) Valuation(ctx context.Context, locationID string) (decimal.Decimal, []*entity.LocationStock, error) {
	rows, err := s.repo.ListByLocation(ctx, locationID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Value())
	}
	return total.Round(ValueScale), rows, nil
}
