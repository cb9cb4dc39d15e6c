package postgres

import (
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store agrupa los repositorios sobre un Querier (pool para lecturas, tx dentro de TxRunner).
type Store struct {
	q Querier
}

// NewStore construye el Store. Pasar pool o tx.
func NewStore(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Locations() repository.LocationRepository             { return &LocationRepo{q: s.q} }
func (s *Store) Items() repository.ItemRepository                     { return &ItemRepo{q: s.q} }
func (s *Store) Suppliers() repository.SupplierRepository             { return &SupplierRepo{q: s.q} }
func (s *Store) Stock() repository.StockRepository                    { return &StockRepo{q: s.q} }
func (s *Store) Periods() repository.PeriodRepository                 { return &PeriodRepo{q: s.q} }
func (s *Store) Prices() repository.ItemPriceRepository               { return &ItemPriceRepo{q: s.q} }
func (s *Store) PeriodLocations() repository.PeriodLocationRepository { return &PeriodLocationRepo{q: s.q} }
func (s *Store) Deliveries() repository.DeliveryRepository            { return &DeliveryRepo{q: s.q} }
func (s *Store) Issues() repository.IssueRepository                   { return &IssueRepo{q: s.q} }
func (s *Store) Transfers() repository.TransferRepository             { return &TransferRepo{q: s.q} }
func (s *Store) NCRs() repository.NCRRepository                       { return &NCRRepo{q: s.q} }
func (s *Store) Approvals() repository.ApprovalRepository             { return &ApprovalRepo{q: s.q} }
func (s *Store) Reconciliations() repository.ReconciliationRepository { return &ReconciliationRepo{q: s.q} }
func (s *Store) Mandays() repository.MandaysRepository                { return &MandaysRepo{q: s.q} }
