package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.MandaysRepository  = (*MandaysRepo)(nil)
)

// LocationRepo lectura de ubicaciones.
type LocationRepo struct {
	q Querier
}

const locationColumns = `id, code, name, type, active, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.Type, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return l, nil
}

// ListActive ubicaciones activas ordenadas por código.
func (r *LocationRepo) ListActive(ctx context.Context) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE active ORDER BY code`)
	if err != nil {
		return nil, wrapErr("list locations", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, wrapErr("scan location", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ItemRepo lectura de ítems.
type ItemRepo struct {
	q Querier
}

func (r *ItemRepo) get(ctx context.Context, where string, arg string) (*entity.Item, error) {
	query := `SELECT id, code, name, unit, category, created_at, updated_at FROM items WHERE ` + where
	var i entity.Item
	err := r.q.QueryRow(ctx, query, arg).Scan(&i.ID, &i.Code, &i.Name, &i.Unit, &i.Category, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get item", err)
	}
	return &i, nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, "id = $1", id)
}

// GetByCode busca sin distinguir mayúsculas.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	return r.get(ctx, "UPPER(code) = UPPER($1)", code)
}

// SupplierRepo lectura de proveedores.
type SupplierRepo struct {
	q Querier
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `SELECT id, code, name, active FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get supplier", err)
	}
	return &s, nil
}

// MandaysRepo total de POB por periodo y ubicación.
type MandaysRepo struct {
	q Querier
}

// Total devuelve cero si no hay registro.
func (r *MandaysRepo) Total(ctx context.Context, periodID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM location_mandays
		WHERE period_id = $1 AND location_id = $2`, periodID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr("mandays total", err)
	}
	return total, nil
}
