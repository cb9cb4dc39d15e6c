// Package apptest arma los casos de uso sobre el store en memoria para las pruebas de la capa de aplicación.
package apptest

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/approval"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ncr"
	"github.com/jhoicas/stockledger-api/internal/application/period"
	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/application/reconciliation"
	"github.com/jhoicas/stockledger-api/internal/application/transfer"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/excel"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// Datos maestros sembrados por New.
const (
	LocA     = "loc-a"
	LocB     = "loc-b"
	Flour    = "item-flour"
	Oil      = "item-oil"
	Supplier = "sup-1"
)

// Identidades de prueba.
var (
	Admin      = dto.Identity{UserID: "u-admin", Role: dto.RoleAdmin}
	Controller = dto.Identity{UserID: "u-ctrl", Role: dto.RoleController, LocationIDs: []string{LocA, LocB}}
	KeeperA    = dto.Identity{UserID: "u-keeper-a", Role: dto.RoleStorekeeper, LocationIDs: []string{LocA}}
)

// D atajo para decimales en las pruebas.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Metrics registra las llamadas al puerto de métricas.
type Metrics struct {
	mu        sync.Mutex
	Posted    int
	Variances int
	ByNCRType map[entity.NCRType]int
	Issued    int
	Transfers map[string]int
	Closes    map[string]int
	Shortages int
}

var _ ports.Metrics = (*Metrics)(nil)

func newMetrics() *Metrics {
	return &Metrics{
		ByNCRType: make(map[entity.NCRType]int),
		Transfers: make(map[string]int),
		Closes:    make(map[string]int),
	}
}

func (m *Metrics) DeliveryPosted(variances int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted++
	m.Variances += variances
}

func (m *Metrics) NCRCreated(t entity.NCRType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByNCRType[t]++
}

func (m *Metrics) IssuePosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Issued++
}

func (m *Metrics) TransferFinished(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transfers[outcome]++
}

func (m *Metrics) PeriodClose(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closes[outcome]++
}

func (m *Metrics) InsufficientStock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Shortages++
}

// Fixture casos de uso cableados sobre un único store en memoria.
type Fixture struct {
	Store           *memory.Store
	Locker          *lock.LocalLocker
	Metrics         *Metrics
	Approvals       *approval.UseCase
	Deliveries      *inventory.DeliveryUseCase
	Issues          *inventory.IssueUseCase
	Transfers       *transfer.UseCase
	NCRs            *ncr.UseCase
	Periods         *period.UseCase
	Reconciliations *reconciliation.UseCase
}

// New siembra dos ubicaciones activas, dos ítems y un proveedor.
func New() *Fixture {
	log := logger.Nop()
	store := memory.NewStore()
	store.AddLocation(&entity.Location{ID: LocA, Code: "A", Name: "Cocina A", Type: entity.LocationKitchen, Active: true})
	store.AddLocation(&entity.Location{ID: LocB, Code: "B", Name: "Tienda B", Type: entity.LocationStore, Active: true})
	store.AddItem(&entity.Item{ID: Flour, Code: "FLOUR", Name: "Harina", Unit: "kg"})
	store.AddItem(&entity.Item{ID: Oil, Code: "OIL", Name: "Aceite", Unit: "lt"})
	store.AddSupplier(&entity.Supplier{ID: Supplier, Code: "S1", Name: "Proveedor 1", Active: true})

	locker := lock.NewLocalLocker()
	m := newMetrics()
	approvals := approval.NewUseCase(store, store, locker, log)
	return &Fixture{
		Store:           store,
		Locker:          locker,
		Metrics:         m,
		Approvals:       approvals,
		Deliveries:      inventory.NewDeliveryUseCase(store, store, m, log),
		Issues:          inventory.NewIssueUseCase(store, store, m, log),
		Transfers:       transfer.NewUseCase(store, store, approvals, m, log),
		NCRs:            ncr.NewUseCase(store, store, m, log),
		Periods:         period.NewUseCase(store, store, approvals, excel.NewPriceSheetReader(), m, log),
		Reconciliations: reconciliation.NewUseCase(store, store, log),
	}
}

// OpenPeriod crea el periodo, fija los precios (ítem -> precio) y lo abre.
func (f *Fixture) OpenPeriod(t *testing.T, name, start, end string, prices map[string]string) string {
	t.Helper()
	ctx := context.Background()
	p, err := f.Periods.CreatePeriod(ctx, Admin, dto.CreatePeriodRequest{Name: name, StartDate: start, EndDate: end})
	require.NoError(t, err)
	if len(prices) > 0 {
		in := dto.SetPricesRequest{}
		for item, price := range prices {
			in.Prices = append(in.Prices, dto.PriceInput{ItemID: item, Price: D(price)})
		}
		_, err = f.Periods.SetPeriodPrices(ctx, Admin, p.ID, in)
		require.NoError(t, err)
	}
	_, err = f.Periods.OpenPeriod(ctx, Admin, p.ID)
	require.NoError(t, err)
	return p.ID
}

// Deliver contabiliza una entrega de una línea.
func (f *Fixture) Deliver(t *testing.T, periodID, locationID, invoice, item, qty, price string) *dto.DeliveryResponse {
	t.Helper()
	out, err := f.Deliveries.PostDelivery(context.Background(), Admin, dto.PostDeliveryRequest{
		LocationID: locationID,
		PeriodID:   periodID,
		SupplierID: Supplier,
		InvoiceNo:  invoice,
		Lines:      []dto.DeliveryLineRequest{{ItemID: item, Quantity: D(qty), UnitPrice: D(price)}},
	})
	require.NoError(t, err)
	return out
}

// MarkAllReady guarda una reconciliación vacía y marca READY cada ubicación.
func (f *Fixture) MarkAllReady(t *testing.T, periodID string) {
	t.Helper()
	ctx := context.Background()
	for _, loc := range []string{LocA, LocB} {
		_, err := f.Reconciliations.SaveAdjustments(ctx, Admin, periodID, loc, dto.ReconciliationAdjustmentsRequest{})
		require.NoError(t, err)
		_, err = f.Periods.MarkLocationReady(ctx, Admin, periodID, loc)
		require.NoError(t, err)
	}
}

// Close marca todo READY, solicita y aprueba el cierre.
func (f *Fixture) Close(t *testing.T, periodID string) {
	t.Helper()
	ctx := context.Background()
	f.MarkAllReady(t, periodID)
	req, err := f.Periods.RequestPeriodClose(ctx, Controller, periodID)
	require.NoError(t, err)
	_, err = f.Periods.ApprovePeriodClose(ctx, Admin, req.Approval.ID, "ok")
	require.NoError(t, err)
}

// Stock lee on_hand y wac confirmados.
func (f *Fixture) Stock(t *testing.T, locationID, itemID string) *entity.LocationStock {
	t.Helper()
	s, err := f.Store.Stock().Get(context.Background(), locationID, itemID)
	require.NoError(t, err)
	return s
}
