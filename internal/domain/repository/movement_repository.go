package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// DeliveryRepository persistencia de entregas con sus líneas.
type DeliveryRepository interface {
	// Create inserta cabecera y líneas. Factura repetida por proveedor devuelve domain.ErrDuplicate.
	Create(ctx context.Context, d *entity.Delivery) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error)
	// Update reescribe cabecera y campos calculados de las líneas.
	Update(ctx context.Context, d *entity.Delivery) error
	InvoiceExists(ctx context.Context, supplierID, invoiceNo, excludeID string) (bool, error)
	// SumPosted valor total de entregas POSTED de la ubicación en el periodo.
	SumPosted(ctx context.Context, periodID, locationID string) (decimal.Decimal, error)
}

// IssueRepository persistencia de salidas.
type IssueRepository interface {
	Create(ctx context.Context, issue *entity.Issue) error
	GetByID(ctx context.Context, id string) (*entity.Issue, error)
	Sum(ctx context.Context, periodID, locationID string) (decimal.Decimal, error)
}

// TransferRepository persistencia de traslados.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, t *entity.Transfer) error
	// SumCompletedIn / SumCompletedOut valor de traslados COMPLETED en el periodo.
	SumCompletedIn(ctx context.Context, periodID, locationID string) (decimal.Decimal, error)
	SumCompletedOut(ctx context.Context, periodID, locationID string) (decimal.Decimal, error)
}
