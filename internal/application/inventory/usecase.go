package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/ncr"
	"github.com/jhoicas/stockledger-api/internal/domain/period"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// DeliveryUseCase contabiliza entregas de proveedor: costo promedio, stock y NCR por variación de precio,
// todo en una sola transacción con bloqueo de filas (SELECT FOR UPDATE).
type DeliveryUseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	metrics  ports.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewDeliveryUseCase construye el caso de uso. store se usa para lecturas fuera de la tx.
func NewDeliveryUseCase(txRunner ports.TxRunner, store repository.Store, metrics ports.Metrics, log *logger.Logger) *DeliveryUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &DeliveryUseCase{txRunner: txRunner, store: store, metrics: metrics, log: log.Named("delivery"), now: time.Now}
}

// PostDelivery valida todas las líneas antes de abrir la transacción. DRAFT solo persiste el borrador;
// POSTED aplica cada línea (precio de periodo, NCR, costo, stock) y todas confirman o ninguna.
func (uc *DeliveryUseCase) PostDelivery(ctx context.Context, id dto.Identity, in dto.PostDeliveryRequest) (*dto.DeliveryResponse, error) {
	status := entity.DeliveryStatus(strings.ToUpper(in.Status))
	if status == "" {
		status = entity.DeliveryPosted
	}
	if status != entity.DeliveryDraft && status != entity.DeliveryPosted {
		return nil, domain.Invalid("status", "debe ser DRAFT o POSTED")
	}
	invoice := strings.TrimSpace(in.InvoiceNo)
	if status == entity.DeliveryPosted && invoice == "" {
		return nil, domain.Invalid("invoice_no", "requerido para contabilizar")
	}
	if !id.CanAccess(in.LocationID) {
		return nil, domain.ErrForbidden
	}
	deliveryDate := uc.now().UTC().Truncate(24 * time.Hour)
	if in.DeliveryDate != "" {
		t, err := time.Parse(time.DateOnly, in.DeliveryDate)
		if err != nil {
			return nil, domain.Invalid("delivery_date", "formato YYYY-MM-DD")
		}
		deliveryDate = t
	}
	if err := uc.validateHeader(ctx, in.LocationID, in.SupplierID, in.PeriodID); err != nil {
		return nil, err
	}
	if err := uc.validateLines(ctx, in.Lines); err != nil {
		return nil, err
	}

	now := uc.now()
	d := &entity.Delivery{
		ID:           uuid.New().String(),
		LocationID:   in.LocationID,
		PeriodID:     in.PeriodID,
		SupplierID:   in.SupplierID,
		InvoiceNo:    invoice,
		DeliveryDate: deliveryDate,
		Status:       entity.DeliveryDraft,
		TotalValue:   decimal.Zero,
		CreatedBy:    id.UserID,
		CreatedAt:    now,
	}
	for i, l := range in.Lines {
		d.Lines = append(d.Lines, &entity.DeliveryLine{
			ID:            uuid.New().String(),
			DeliveryID:    d.ID,
			LineNo:        i + 1,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			PriceVariance: decimal.Zero,
			LineValue:     inventory.LineValue(l.Quantity, l.UnitPrice),
		})
		d.TotalValue = d.TotalValue.Add(d.Lines[i].LineValue)
	}

	var created []*entity.NCR
	err := uc.txRunner.Run(ctx, func(tx repository.Store) error {
		created = nil
		if status == entity.DeliveryDraft {
			if invoice != "" {
				if err := uc.checkInvoice(ctx, tx, d); err != nil {
					return err
				}
			}
			return tx.Deliveries().Create(ctx, d)
		}
		ncrs, err := uc.post(ctx, tx, d, id.UserID, now)
		if err != nil {
			return err
		}
		if err := tx.Deliveries().Create(ctx, d); err != nil {
			return err
		}
		for _, n := range ncrs {
			if err := tx.NCRs().Create(ctx, n); err != nil {
				return err
			}
		}
		created = ncrs
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.observePosted(d, created)
	return dto.NewDeliveryResponse(d, created), nil
}

// PostDraftDelivery promueve un borrador a POSTED con la misma semántica de PostDelivery.
func (uc *DeliveryUseCase) PostDraftDelivery(ctx context.Context, id dto.Identity, deliveryID string, in dto.PostDraftDeliveryRequest) (*dto.DeliveryResponse, error) {
	current, err := uc.store.Deliveries().GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if !id.CanAccess(current.LocationID) {
		return nil, domain.ErrForbidden
	}

	var d *entity.Delivery
	var created []*entity.NCR
	err = uc.txRunner.Run(ctx, func(tx repository.Store) error {
		draft, err := tx.Deliveries().GetForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if draft == nil {
			return domain.ErrNotFound
		}
		if draft.Status != entity.DeliveryDraft {
			return &domain.TransitionError{Entity: "delivery", From: string(draft.Status), To: string(entity.DeliveryPosted)}
		}
		if inv := strings.TrimSpace(in.InvoiceNo); inv != "" {
			draft.InvoiceNo = inv
		}
		if draft.InvoiceNo == "" {
			return domain.Invalid("invoice_no", "requerido para contabilizar")
		}
		ncrs, err := uc.post(ctx, tx, draft, id.UserID, uc.now())
		if err != nil {
			return err
		}
		if err := tx.Deliveries().Update(ctx, draft); err != nil {
			return err
		}
		for _, n := range ncrs {
			if err := tx.NCRs().Create(ctx, n); err != nil {
				return err
			}
		}
		d, created = draft, ncrs
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.observePosted(d, created)
	return dto.NewDeliveryResponse(d, created), nil
}

// GetDelivery obtiene una entrega con sus líneas.
func (uc *DeliveryUseCase) GetDelivery(ctx context.Context, id dto.Identity, deliveryID string) (*dto.DeliveryResponse, error) {
	d, err := uc.store.Deliveries().GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if !id.CanAccess(d.LocationID) {
		return nil, domain.ErrForbidden
	}
	return dto.NewDeliveryResponse(d, nil), nil
}

// post aplica todas las líneas dentro de la tx. Devuelve las NCR a crear; la entrega queda POSTED en memoria.
func (uc *DeliveryUseCase) post(ctx context.Context, tx repository.Store, d *entity.Delivery, userID string, now time.Time) ([]*entity.NCR, error) {
	if _, err := period.RequirePostingWindow(ctx, tx, d.PeriodID, d.LocationID); err != nil {
		return nil, err
	}
	if err := uc.checkInvoice(ctx, tx, d); err != nil {
		return nil, err
	}

	stock := inventory.NewStockStore(tx.Stock())
	keys := make([]inventory.StockKey, 0, len(d.Lines))
	for _, l := range d.Lines {
		keys = append(keys, inventory.StockKey{LocationID: d.LocationID, ItemID: l.ItemID})
	}
	if _, err := stock.Lock(ctx, keys); err != nil {
		return nil, err
	}

	var created []*entity.NCR
	total := decimal.Zero
	for _, l := range d.Lines {
		price, err := tx.Prices().Get(ctx, d.PeriodID, l.ItemID)
		if err != nil {
			return nil, err
		}
		var periodPrice *decimal.Decimal
		if price != nil {
			periodPrice = &price.Price
		}
		v := ncr.Detect(l.Quantity, l.UnitPrice, periodPrice)
		l.PeriodPrice = v.PeriodPrice
		l.PriceVariance = v.Amount
		l.LineValue = inventory.LineValue(l.Quantity, l.UnitPrice)
		l.NCRID = nil
		if v.HasVariance() {
			n := priceVarianceNCR(d, l, userID, now)
			l.NCRID = &n.ID
			created = append(created, n)
		}
		if _, err := stock.Receive(ctx, d.LocationID, l.ItemID, l.Quantity, l.UnitPrice); err != nil {
			return nil, err
		}
		total = total.Add(l.LineValue)
	}
	d.TotalValue = total
	d.Status = entity.DeliveryPosted
	d.PostedAt = &now
	return created, nil
}

func (uc *DeliveryUseCase) checkInvoice(ctx context.Context, tx repository.Store, d *entity.Delivery) error {
	exists, err := tx.Deliveries().InvoiceExists(ctx, d.SupplierID, d.InvoiceNo, d.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("factura %s del proveedor %s: %w", d.InvoiceNo, d.SupplierID, domain.ErrDuplicate)
	}
	return nil
}

func priceVarianceNCR(d *entity.Delivery, l *entity.DeliveryLine, userID string, now time.Time) *entity.NCR {
	deliveryID, lineID := d.ID, l.ID
	return &entity.NCR{
		ID:             uuid.New().String(),
		LocationID:     d.LocationID,
		PeriodID:       d.PeriodID,
		Type:           entity.NCRPriceVariance,
		AutoGenerated:  true,
		DeliveryID:     &deliveryID,
		DeliveryLineID: &lineID,
		Reason: fmt.Sprintf("variación de precio ítem %s: entregado %s, precio de periodo %s",
			l.ItemID, l.UnitPrice.String(), l.PeriodPrice.String()),
		Value:     l.PriceVariance,
		Status:    entity.NCROpen,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (uc *DeliveryUseCase) validateHeader(ctx context.Context, locationID, supplierID, periodID string) error {
	loc, err := uc.store.Locations().GetByID(ctx, locationID)
	if err != nil {
		return err
	}
	if loc == nil || !loc.Active {
		return domain.Invalid("location_id", "ubicación inexistente o inactiva")
	}
	sup, err := uc.store.Suppliers().GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sup == nil || !sup.Active {
		return domain.Invalid("supplier_id", "proveedor inexistente o inactivo")
	}
	p, err := uc.store.Periods().GetByID(ctx, periodID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.Invalid("period_id", "periodo inexistente")
	}
	return nil
}

func (uc *DeliveryUseCase) validateLines(ctx context.Context, lines []dto.DeliveryLineRequest) error {
	if len(lines) == 0 {
		return domain.Invalid("lines", "al menos una línea")
	}
	for i, l := range lines {
		field := fmt.Sprintf("lines[%d]", i)
		if !l.Quantity.IsPositive() {
			return domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		if l.UnitPrice.IsNegative() {
			return domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
		if err := inventory.CheckScale(field+".quantity", l.Quantity); err != nil {
			return err
		}
		if err := inventory.CheckScale(field+".unit_price", l.UnitPrice); err != nil {
			return err
		}
		if err := requireItem(ctx, uc.store, field+".item_id", l.ItemID); err != nil {
			return err
		}
	}
	return nil
}

func (uc *DeliveryUseCase) observePosted(d *entity.Delivery, created []*entity.NCR) {
	if d.Status != entity.DeliveryPosted {
		uc.log.Info().Str("delivery_id", d.ID).Msg("borrador de entrega guardado")
		return
	}
	uc.metrics.DeliveryPosted(len(created))
	for _, n := range created {
		uc.metrics.NCRCreated(n.Type)
		uc.log.Info().
			Str("ncr_id", n.ID).
			Str("delivery_id", d.ID).
			Str("location_id", d.LocationID).
			Str("value", n.Value.String()).
			Msg("NCR por variación de precio creada")
	}
	uc.log.Info().
		Str("delivery_id", d.ID).
		Str("location_id", d.LocationID).
		Int("lines", len(d.Lines)).
		Int("ncrs", len(created)).
		Msg("entrega contabilizada")
}

// requireItem valida que el ítem exista (datos maestros).
func requireItem(ctx context.Context, store repository.Store, field, itemID string) error {
	item, err := store.Items().GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.Invalid(field, "ítem inexistente")
	}
	return nil
}
