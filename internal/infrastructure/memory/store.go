// Package memory implementa todos los repositorios y el TxRunner en memoria (tests y modo APP_STORE=memory).
// Las transacciones se serializan y trabajan sobre una copia del estado que solo se publica si fn no falla.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/application/ports"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var (
	_ repository.Store = (*Store)(nil)
	_ ports.TxRunner   = (*Store)(nil)
)

type pairKey struct {
	a, b string
}

type state struct {
	locations       map[string]*entity.Location
	items           map[string]*entity.Item
	suppliers       map[string]*entity.Supplier
	stock           map[pairKey]*entity.LocationStock // (ubicación, ítem)
	periods         map[string]*entity.Period
	prices          map[pairKey]*entity.ItemPrice // (periodo, ítem)
	periodLocations map[pairKey]*entity.PeriodLocation
	deliveries      map[string]*entity.Delivery
	issues          map[string]*entity.Issue
	transfers       map[string]*entity.Transfer
	ncrs            map[string]*entity.NCR
	approvals       map[string]*entity.Approval
	reconciliations map[pairKey]*entity.Reconciliation
	mandays         map[pairKey]decimal.Decimal
}

func newState() *state {
	return &state{
		locations:       make(map[string]*entity.Location),
		items:           make(map[string]*entity.Item),
		suppliers:       make(map[string]*entity.Supplier),
		stock:           make(map[pairKey]*entity.LocationStock),
		periods:         make(map[string]*entity.Period),
		prices:          make(map[pairKey]*entity.ItemPrice),
		periodLocations: make(map[pairKey]*entity.PeriodLocation),
		deliveries:      make(map[string]*entity.Delivery),
		issues:          make(map[string]*entity.Issue),
		transfers:       make(map[string]*entity.Transfer),
		ncrs:            make(map[string]*entity.NCR),
		approvals:       make(map[string]*entity.Approval),
		reconciliations: make(map[pairKey]*entity.Reconciliation),
		mandays:         make(map[pairKey]decimal.Decimal),
	}
}

// clone copia profunda; los valores guardados nunca se comparten con los callers.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.locations {
		c.locations[k] = cloneLocation(v)
	}
	for k, v := range s.items {
		c.items[k] = cloneItem(v)
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.stock {
		c.stock[k] = cloneStock(v)
	}
	for k, v := range s.periods {
		c.periods[k] = clonePeriod(v)
	}
	for k, v := range s.prices {
		c.prices[k] = clonePrice(v)
	}
	for k, v := range s.periodLocations {
		c.periodLocations[k] = clonePeriodLocation(v)
	}
	for k, v := range s.deliveries {
		c.deliveries[k] = cloneDelivery(v)
	}
	for k, v := range s.issues {
		c.issues[k] = cloneIssue(v)
	}
	for k, v := range s.transfers {
		c.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.ncrs {
		c.ncrs[k] = cloneNCR(v)
	}
	for k, v := range s.approvals {
		c.approvals[k] = cloneApproval(v)
	}
	for k, v := range s.reconciliations {
		c.reconciliations[k] = cloneReconciliation(v)
	}
	for k, v := range s.mandays {
		c.mandays[k] = v
	}
	return c
}

// Store estado en memoria. Implementa repository.Store (lecturas) y ports.TxRunner.
type Store struct {
	txMu sync.Mutex   // serializa transacciones
	mu   sync.RWMutex // protege st
	st   *state

	faultMu sync.Mutex
	faults  map[string]error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), faults: make(map[string]error)}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no devuelve error.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(&view{tx: work, store: s}); err != nil {
		return err
	}
	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// FailNext hace que la próxima llamada a op ("ncrs.create", "stock.save", ...) devuelva err.
func (s *Store) FailNext(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

func (s *Store) committed() *view { return &view{store: s} }

func (s *Store) Locations() repository.LocationRepository             { return locationRepo{s.committed()} }
func (s *Store) Items() repository.ItemRepository                     { return itemRepo{s.committed()} }
func (s *Store) Suppliers() repository.SupplierRepository             { return supplierRepo{s.committed()} }
func (s *Store) Stock() repository.StockRepository                    { return stockRepo{s.committed()} }
func (s *Store) Periods() repository.PeriodRepository                 { return periodRepo{s.committed()} }
func (s *Store) Prices() repository.ItemPriceRepository               { return priceRepo{s.committed()} }
func (s *Store) PeriodLocations() repository.PeriodLocationRepository { return periodLocationRepo{s.committed()} }
func (s *Store) Deliveries() repository.DeliveryRepository            { return deliveryRepo{s.committed()} }
func (s *Store) Issues() repository.IssueRepository                   { return issueRepo{s.committed()} }
func (s *Store) Transfers() repository.TransferRepository             { return transferRepo{s.committed()} }
func (s *Store) NCRs() repository.NCRRepository                       { return ncrRepo{s.committed()} }
func (s *Store) Approvals() repository.ApprovalRepository             { return approvalRepo{s.committed()} }
func (s *Store) Reconciliations() repository.ReconciliationRepository { return reconciliationRepo{s.committed()} }
func (s *Store) Mandays() repository.MandaysRepository                { return mandaysRepo{s.committed()} }

// AddLocation, AddItem, AddSupplier cargan datos maestros.
func (s *Store) AddLocation(l *entity.Location) {
	s.seed(func(st *state) { st.locations[l.ID] = cloneLocation(l) })
}

func (s *Store) AddItem(i *entity.Item) {
	s.seed(func(st *state) { st.items[i.ID] = cloneItem(i) })
}

func (s *Store) AddSupplier(sup *entity.Supplier) {
	s.seed(func(st *state) { st.suppliers[sup.ID] = cloneSupplier(sup) })
}

// SetStock fija on_hand y wac de una fila (saldo inicial).
func (s *Store) SetStock(locationID, itemID string, onHand, wac decimal.Decimal) {
	s.seed(func(st *state) {
		st.stock[pairKey{locationID, itemID}] = &entity.LocationStock{
			LocationID: locationID, ItemID: itemID, OnHand: onHand, WAC: wac,
		}
	})
}

// SetMandays fija el total de mandays (alimentación externa).
func (s *Store) SetMandays(periodID, locationID string, total decimal.Decimal) {
	s.seed(func(st *state) { st.mandays[pairKey{periodID, locationID}] = total })
}

func (s *Store) seed(fn func(st *state)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

// view enlaza los repositorios a la copia de una tx o al estado confirmado.
type view struct {
	tx    *state
	store *Store
}

func (v *view) Locations() repository.LocationRepository             { return locationRepo{v} }
func (v *view) Items() repository.ItemRepository                     { return itemRepo{v} }
func (v *view) Suppliers() repository.SupplierRepository             { return supplierRepo{v} }
func (v *view) Stock() repository.StockRepository                    { return stockRepo{v} }
func (v *view) Periods() repository.PeriodRepository                 { return periodRepo{v} }
func (v *view) Prices() repository.ItemPriceRepository               { return priceRepo{v} }
func (v *view) PeriodLocations() repository.PeriodLocationRepository { return periodLocationRepo{v} }
func (v *view) Deliveries() repository.DeliveryRepository            { return deliveryRepo{v} }
func (v *view) Issues() repository.IssueRepository                   { return issueRepo{v} }
func (v *view) Transfers() repository.TransferRepository             { return transferRepo{v} }
func (v *view) NCRs() repository.NCRRepository                       { return ncrRepo{v} }
func (v *view) Approvals() repository.ApprovalRepository             { return approvalRepo{v} }
func (v *view) Reconciliations() repository.ReconciliationRepository { return reconciliationRepo{v} }
func (v *view) Mandays() repository.MandaysRepository                { return mandaysRepo{v} }

// read devuelve el estado a leer y la función de liberación.
func (v *view) read() (*state, func()) {
	if v.tx != nil {
		return v.tx, func() {}
	}
	v.store.mu.RLock()
	return v.store.st, v.store.mu.RUnlock
}

// write fuera de una tx escribe directo sobre el estado confirmado.
func (v *view) write(op string) (*state, func(), error) {
	if err := v.store.fault(op); err != nil {
		return nil, nil, err
	}
	if v.tx != nil {
		return v.tx, func() {}, nil
	}
	v.store.mu.Lock()
	return v.store.st, v.store.mu.Unlock, nil
}
