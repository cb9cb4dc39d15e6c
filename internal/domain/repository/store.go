package repository

// Store agrupa los repositorios del dominio. La implementación puede estar atada al pool
// (lecturas) o a una transacción (TxRunner).
type Store interface {
	Locations() LocationRepository
	Items() ItemRepository
	Suppliers() SupplierRepository
	Stock() StockRepository
	Periods() PeriodRepository
	Prices() ItemPriceRepository
	PeriodLocations() PeriodLocationRepository
	Deliveries() DeliveryRepository
	Issues() IssueRepository
	Transfers() TransferRepository
	NCRs() NCRRepository
	Approvals() ApprovalRepository
	Reconciliations() ReconciliationRepository
	Mandays() MandaysRepository
}
