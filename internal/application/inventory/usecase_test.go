package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/apptest"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

func deliveryRequest(periodID, invoice string, lines ...dto.DeliveryLineRequest) dto.PostDeliveryRequest {
	return dto.PostDeliveryRequest{
		LocationID: apptest.LocA,
		PeriodID:   periodID,
		SupplierID: apptest.Supplier,
		InvoiceNo:  invoice,
		Lines:      lines,
	}
}

func TestPostDelivery_VariacionCreaNCR(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})

	out, err := f.Deliveries.PostDelivery(context.Background(), apptest.KeeperA, deliveryRequest(pid, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("10"), UnitPrice: apptest.D("26")}))
	require.NoError(t, err)

	assert.Equal(t, string(entity.DeliveryPosted), out.Status)
	require.Len(t, out.NCRsCreated, 1)
	n := out.NCRsCreated[0]
	assert.Equal(t, string(entity.NCRPriceVariance), n.Type)
	assert.True(t, n.AutoGenerated)
	assert.True(t, n.Value.Equal(apptest.D("10")), "got %s", n.Value)
	assert.Equal(t, string(entity.NCROpen), n.Status)
	require.Len(t, out.Lines, 1)
	require.NotNil(t, out.Lines[0].NCRID)
	assert.Equal(t, n.ID, *out.Lines[0].NCRID)
	assert.True(t, out.TotalValue.Equal(apptest.D("260")))

	s := f.Stock(t, apptest.LocA, apptest.Flour)
	assert.True(t, s.OnHand.Equal(apptest.D("10")))
	assert.True(t, s.WAC.Equal(apptest.D("26")))
	assert.Equal(t, 1, f.Metrics.Posted)
	assert.Equal(t, 1, f.Metrics.ByNCRType[entity.NCRPriceVariance])
}

func TestPostDelivery_VariacionMinimaConCantidadFraccionaria(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})

	out, err := f.Deliveries.PostDelivery(context.Background(), apptest.KeeperA, deliveryRequest(pid, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("0.1"), UnitPrice: apptest.D("25.0001")}))
	require.NoError(t, err)

	require.Len(t, out.NCRsCreated, 1, "cualquier diferencia de precio genera NCR")
	assert.Equal(t, string(entity.NCRPriceVariance), out.NCRsCreated[0].Type)
	require.NotNil(t, out.Lines[0].NCRID)
	assert.Equal(t, 1, f.Metrics.ByNCRType[entity.NCRPriceVariance])
}

func TestPostDelivery_SinPrecioDePeriodoNoCreaNCR(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)

	out := f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Oil, "4", "7.5")

	assert.Empty(t, out.NCRsCreated)
	assert.Nil(t, out.Lines[0].PeriodPrice)
	assert.True(t, out.Lines[0].PriceVariance.IsZero())
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Oil).WAC.Equal(apptest.D("7.5")))
}

func TestPostDelivery_PromedioPonderado(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("100"), apptest.D("10"))

	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "50", "12")

	s := f.Stock(t, apptest.LocA, apptest.Flour)
	assert.True(t, s.OnHand.Equal(apptest.D("150")))
	assert.True(t, s.WAC.Equal(apptest.D("10.666667")), "got %s", s.WAC)
}

func TestPostDelivery_FalloAlCrearNCRRevierteTodo(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})
	f.Store.FailNext("ncrs.create", errors.New("disco lleno"))

	_, err := f.Deliveries.PostDelivery(context.Background(), apptest.Admin, deliveryRequest(pid, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Oil, Quantity: apptest.D("2"), UnitPrice: apptest.D("3")},
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("10"), UnitPrice: apptest.D("26")}))
	require.Error(t, err)

	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.IsZero())
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Oil).OnHand.IsZero())
	sum, err := f.Store.Deliveries().SumPosted(context.Background(), pid, apptest.LocA)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
	assert.Equal(t, 0, f.Metrics.Posted)

	// La misma factura se puede contabilizar después del rollback.
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "10", "26")
}

func TestPostDelivery_FacturaDuplicada(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "1", "1")

	_, err := f.Deliveries.PostDelivery(context.Background(), apptest.Admin, deliveryRequest(pid, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("1")}))
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.Equal(apptest.D("1")))
}

func TestPostDelivery_Validaciones(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	line := dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("1")}

	cases := []struct {
		name  string
		id    dto.Identity
		in    dto.PostDeliveryRequest
		field string
		err   error
	}{
		{"sin factura", apptest.Admin, deliveryRequest(pid, "", line), "invoice_no", nil},
		{"cantidad cero", apptest.Admin, deliveryRequest(pid, "F-1",
			dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("0"), UnitPrice: apptest.D("1")}), "lines[0].quantity", nil},
		{"precio negativo", apptest.Admin, deliveryRequest(pid, "F-1",
			dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("-1")}), "lines[0].unit_price", nil},
		{"cantidad con 5 decimales", apptest.Admin, deliveryRequest(pid, "F-1",
			dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("0.00001"), UnitPrice: apptest.D("1")}), "lines[0].quantity", nil},
		{"precio con 5 decimales", apptest.Admin, deliveryRequest(pid, "F-1",
			dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("25.00001")}), "lines[0].unit_price", nil},
		{"ítem inexistente", apptest.Admin, deliveryRequest(pid, "F-1",
			dto.DeliveryLineRequest{ItemID: "nope", Quantity: apptest.D("1"), UnitPrice: apptest.D("1")}), "lines[0].item_id", nil},
		{"periodo inexistente", apptest.Admin, deliveryRequest("nope", "F-1", line), "period_id", nil},
		{"sin acceso", dto.Identity{UserID: "u", Role: dto.RoleStorekeeper, LocationIDs: []string{apptest.LocB}},
			deliveryRequest(pid, "F-1", line), "", domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Deliveries.PostDelivery(context.Background(), tc.id, tc.in)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.IsZero())
}

func TestPostDraftDelivery(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})

	in := deliveryRequest(pid, "",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("10"), UnitPrice: apptest.D("24")})
	in.Status = "DRAFT"
	draft, err := f.Deliveries.PostDelivery(ctx, apptest.KeeperA, in)
	require.NoError(t, err)
	assert.Equal(t, string(entity.DeliveryDraft), draft.Status)
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.IsZero())

	_, err = f.Deliveries.PostDraftDelivery(ctx, apptest.KeeperA, draft.ID, dto.PostDraftDeliveryRequest{})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invoice_no", ve.Field)

	posted, err := f.Deliveries.PostDraftDelivery(ctx, apptest.KeeperA, draft.ID, dto.PostDraftDeliveryRequest{InvoiceNo: "F-9"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.DeliveryPosted), posted.Status)
	assert.Equal(t, "F-9", posted.InvoiceNo)
	require.Len(t, posted.NCRsCreated, 1)
	assert.True(t, posted.NCRsCreated[0].Value.Equal(apptest.D("-10")))
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.Equal(apptest.D("10")))

	_, err = f.Deliveries.PostDraftDelivery(ctx, apptest.KeeperA, draft.ID, dto.PostDraftDeliveryRequest{InvoiceNo: "F-9"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.Deliveries.GetDelivery(ctx, apptest.KeeperA, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.DeliveryPosted), got.Status)
	require.NotNil(t, got.PostedAt)
}

func TestPostDelivery_UbicacionReadyRechaza(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	_, err := f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	_, err = f.Periods.MarkLocationReady(ctx, apptest.Admin, pid, apptest.LocA)
	require.NoError(t, err)

	_, err = f.Deliveries.PostDelivery(ctx, apptest.Admin, deliveryRequest(pid, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("1")}))
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	// LocB sigue abierta.
	f.Deliver(t, pid, apptest.LocB, "F-1", apptest.Flour, "1", "1")
}

func TestPostDelivery_PeriodoEnBorrador(t *testing.T) {
	f := apptest.New()
	p, err := f.Periods.CreatePeriod(context.Background(), apptest.Admin,
		dto.CreatePeriodRequest{Name: "2026-01", StartDate: "2026-01-01", EndDate: "2026-01-31"})
	require.NoError(t, err)

	_, err = f.Deliveries.PostDelivery(context.Background(), apptest.Admin, deliveryRequest(p.ID, "F-1",
		dto.DeliveryLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("1")}))
	require.ErrorIs(t, err, domain.ErrPeriodClosed)
}

func TestGetDelivery_NoEncontrada(t *testing.T) {
	f := apptest.New()
	_, err := f.Deliveries.GetDelivery(context.Background(), apptest.Admin, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
