package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func zeroStock(locationID, itemID string) *entity.LocationStock {
	return &entity.LocationStock{LocationID: locationID, ItemID: itemID, OnHand: decimal.Zero, WAC: decimal.Zero}
}

// Get obtiene el stock actual de un ítem en una ubicación.
func (r *StockRepo) Get(ctx context.Context, locationID, itemID string) (*entity.LocationStock, error) {
	query := `
		SELECT location_id, item_id, on_hand, wac, updated_at
		FROM location_stock WHERE location_id = $1 AND item_id = $2`
	var s entity.LocationStock
	err := r.q.QueryRow(ctx, query, locationID, itemID).Scan(
		&s.LocationID, &s.ItemID, &s.OnHand, &s.WAC, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroStock(locationID, itemID), nil
		}
		return nil, wrapErr("get stock", err)
	}
	return &s, nil
}

// GetForUpdate crea la fila en cero si falta y la bloquea (SELECT FOR UPDATE),
// así dos entradas concurrentes al mismo par nuevo se serializan.
func (r *StockRepo) GetForUpdate(ctx context.Context, locationID, itemID string) (*entity.LocationStock, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO location_stock (location_id, item_id, on_hand, wac, updated_at)
		VALUES ($1, $2, 0, 0, now())
		ON CONFLICT (location_id, item_id) DO NOTHING`, locationID, itemID); err != nil {
		return nil, wrapErr("ensure stock row", err)
	}
	query := `
		SELECT location_id, item_id, on_hand, wac, updated_at
		FROM location_stock WHERE location_id = $1 AND item_id = $2
		FOR UPDATE`
	var s entity.LocationStock
	err := r.q.QueryRow(ctx, query, locationID, itemID).Scan(
		&s.LocationID, &s.ItemID, &s.OnHand, &s.WAC, &s.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("get stock for update", err)
	}
	return &s, nil
}

// Save inserta o actualiza la fila (por ubicación e ítem).
func (r *StockRepo) Save(ctx context.Context, s *entity.LocationStock) error {
	query := `
		INSERT INTO location_stock (location_id, item_id, on_hand, wac, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (location_id, item_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, wac = EXCLUDED.wac, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.LocationID, s.ItemID, s.OnHand, s.WAC, s.UpdatedAt)
	return wrapErr("save stock", err)
}

// ListByLocation filas de la ubicación ordenadas por ítem.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.LocationStock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT location_id, item_id, on_hand, wac, updated_at
		FROM location_stock WHERE location_id = $1 ORDER BY item_id`, locationID)
	if err != nil {
		return nil, wrapErr("list stock", err)
	}
	defer rows.Close()
	var list []*entity.LocationStock
	for rows.Next() {
		var s entity.LocationStock
		if err := rows.Scan(&s.LocationID, &s.ItemID, &s.OnHand, &s.WAC, &s.UpdatedAt); err != nil {
			return nil, wrapErr("scan stock", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
