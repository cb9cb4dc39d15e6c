package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo entregas de proveedor con sus líneas.
type DeliveryRepo struct {
	q Querier
}

const deliveryColumns = `id, location_id, period_id, supplier_id, invoice_no, delivery_date, status,
	total_value, created_by, created_at, posted_at`

// Create inserta cabecera y líneas. La unicidad (proveedor, factura) la garantiza un índice parcial.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO deliveries (`+deliveryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.LocationID, d.PeriodID, d.SupplierID, d.InvoiceNo, d.DeliveryDate, d.Status,
		d.TotalValue, d.CreatedBy, d.CreatedAt, d.PostedAt)
	if err != nil {
		return wrapErr("insert delivery", err)
	}
	for _, l := range d.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.DeliveryID = d.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO delivery_lines (id, delivery_id, line_no, item_id, quantity, unit_price,
				period_price, price_variance, line_value, ncr_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID, l.DeliveryID, l.LineNo, l.ItemID, l.Quantity, l.UnitPrice,
			l.PeriodPrice, l.PriceVariance, l.LineValue, l.NCRID)
		if err != nil {
			return wrapErr("insert delivery line", err)
		}
	}
	return nil
}

func (r *DeliveryRepo) get(ctx context.Context, op, suffix, id string) (*entity.Delivery, error) {
	var d entity.Delivery
	err := r.q.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`+suffix, id).Scan(
		&d.ID, &d.LocationID, &d.PeriodID, &d.SupplierID, &d.InvoiceNo, &d.DeliveryDate, &d.Status,
		&d.TotalValue, &d.CreatedBy, &d.CreatedAt, &d.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	lines, err := r.lines(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Lines = lines
	return &d, nil
}

func (r *DeliveryRepo) lines(ctx context.Context, deliveryID string) ([]*entity.DeliveryLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, delivery_id, line_no, item_id, quantity, unit_price, period_price,
		       price_variance, line_value, ncr_id
		FROM delivery_lines WHERE delivery_id = $1 ORDER BY line_no`, deliveryID)
	if err != nil {
		return nil, wrapErr("list delivery lines", err)
	}
	defer rows.Close()
	var list []*entity.DeliveryLine
	for rows.Next() {
		var l entity.DeliveryLine
		if err := rows.Scan(&l.ID, &l.DeliveryID, &l.LineNo, &l.ItemID, &l.Quantity, &l.UnitPrice,
			&l.PeriodPrice, &l.PriceVariance, &l.LineValue, &l.NCRID); err != nil {
			return nil, wrapErr("scan delivery line", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetByID entrega con líneas; nil, nil si no existe.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, "get delivery", "", id)
}

// GetForUpdate bloquea la cabecera; las líneas solo cambian a través de ella.
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, "get delivery for update", " FOR UPDATE", id)
}

// Update reescribe la cabecera y los campos calculados al contabilizar.
func (r *DeliveryRepo) Update(ctx context.Context, d *entity.Delivery) error {
	if err := execOne(ctx, r.q, "update delivery", `
		UPDATE deliveries SET invoice_no = $2, status = $3, total_value = $4, posted_at = $5
		WHERE id = $1`, d.ID, d.InvoiceNo, d.Status, d.TotalValue, d.PostedAt); err != nil {
		return err
	}
	for _, l := range d.Lines {
		if err := execOne(ctx, r.q, "update delivery line", `
			UPDATE delivery_lines SET period_price = $2, price_variance = $3, line_value = $4, ncr_id = $5
			WHERE id = $1`, l.ID, l.PeriodPrice, l.PriceVariance, l.LineValue, l.NCRID); err != nil {
			return err
		}
	}
	return nil
}

// InvoiceExists indica si el proveedor ya tiene esa factura en otra entrega.
func (r *DeliveryRepo) InvoiceExists(ctx context.Context, supplierID, invoiceNo, excludeID string) (bool, error) {
	if invoiceNo == "" {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM deliveries
			WHERE supplier_id = $1 AND invoice_no = $2 AND id::text <> $3
		)`, supplierID, invoiceNo, excludeID).Scan(&exists)
	if err != nil {
		return false, wrapErr("check invoice", err)
	}
	return exists, nil
}

// SumPosted suma total_value de entregas POSTED.
func (r *DeliveryRepo) SumPosted(ctx context.Context, periodID, locationID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_value), 0) FROM deliveries
		WHERE period_id = $1 AND location_id = $2 AND status = 'POSTED'`, periodID, locationID).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr("sum deliveries", err)
	}
	return total, nil
}
