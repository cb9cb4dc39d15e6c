package period_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stockledger-api/internal/application/apptest"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	domrec "github.com/jhoicas/stockledger-api/internal/domain/reconciliation"
)

func locationByID(t *testing.T, p *dto.PeriodResponse, id string) dto.PeriodLocationResponse {
	t.Helper()
	for _, l := range p.Locations {
		if l.LocationID == id {
			return l
		}
	}
	t.Fatalf("ubicación %s no está en el periodo %s", id, p.ID)
	return dto.PeriodLocationResponse{}
}

func TestCreatePeriod_Solapamiento(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	_, err := f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "2026-01", StartDate: "2026-01-01", EndDate: "2026-01-31"})
	require.NoError(t, err)

	_, err = f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "x", StartDate: "2026-01-15", EndDate: "2026-02-10"})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "x", StartDate: "2026-03-10", EndDate: "2026-03-01"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "2026-02", StartDate: "2026-02-01", EndDate: "2026-02-28"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodDraft), p.Status)
}

func TestOpenPeriod_UnoALaVez(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	jan := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)

	cur, err := f.Periods.CurrentPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, jan, cur.ID)
	assert.Len(t, cur.Locations, 2)
	for _, l := range cur.Locations {
		assert.Equal(t, string(entity.PeriodLocationOpen), l.Status)
		assert.True(t, l.OpeningValue.IsZero())
	}

	feb, err := f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "2026-02", StartDate: "2026-02-01", EndDate: "2026-02-28"})
	require.NoError(t, err)
	_, err = f.Periods.OpenPeriod(ctx, apptest.Admin, feb.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.Periods.OpenPeriod(ctx, apptest.Admin, jan)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCurrentPeriod_SinAbierto(t *testing.T) {
	f := apptest.New()
	_, err := f.Periods.CurrentPeriod(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetPeriodPrices_SoloEnBorrador(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	p, err := f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "2026-01", StartDate: "2026-01-01", EndDate: "2026-01-31"})
	require.NoError(t, err)

	_, err = f.Periods.SetPeriodPrices(ctx, apptest.KeeperA, p.ID, dto.SetPricesRequest{Prices: []dto.PriceInput{{ItemID: apptest.Flour, Price: apptest.D("-1")}}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.Periods.SetPeriodPrices(ctx, apptest.KeeperA, p.ID, dto.SetPricesRequest{Prices: []dto.PriceInput{{ItemID: apptest.Flour, Price: apptest.D("25.00001")}}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.Periods.SetPeriodPrices(ctx, apptest.KeeperA, p.ID, dto.SetPricesRequest{Prices: []dto.PriceInput{
		{ItemID: apptest.Flour, Price: apptest.D("25")},
		{ItemID: apptest.Oil, Price: apptest.D("9.9")},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)

	_, err = f.Periods.OpenPeriod(ctx, apptest.Admin, p.ID)
	require.NoError(t, err)
	_, err = f.Periods.SetPeriodPrices(ctx, apptest.Admin, p.ID, dto.SetPricesRequest{Prices: []dto.PriceInput{{ItemID: apptest.Flour, Price: apptest.D("30")}}})
	require.ErrorIs(t, err, domain.ErrPricesLocked)

	price, err := f.Store.Prices().Get(ctx, p.ID, apptest.Flour)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Price.Equal(apptest.D("25")))
}

func priceSheet(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, x.SetSheetRow(sheet, cell, &row))
	}
	buf, err := x.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportPeriodPrices(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	p, err := f.Periods.CreatePeriod(ctx, apptest.Admin, dto.CreatePeriodRequest{Name: "2026-01", StartDate: "2026-01-01", EndDate: "2026-01-31"})
	require.NoError(t, err)

	out, err := f.Periods.ImportPeriodPrices(ctx, apptest.Admin, p.ID, priceSheet(t, [][]any{
		{"Código", "Precio"},
		{"FLOUR", "25,50"},
		{"OIL", "12"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	price, err := f.Store.Prices().Get(ctx, p.ID, apptest.Flour)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Price.Equal(apptest.D("25.5")))

	_, err = f.Periods.ImportPeriodPrices(ctx, apptest.Admin, p.ID, priceSheet(t, [][]any{
		{"Código", "Precio"},
		{"FLOUR", "26"},
		{"SUGAR", "3"},
	}))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "row 3", ve.Field)
	price, err = f.Store.Prices().Get(ctx, p.ID, apptest.Flour)
	require.NoError(t, err)
	assert.True(t, price.Price.Equal(apptest.D("25.5")))
}

func TestMarkLocationReady_RequiereReconciliacion(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)

	_, err := f.Periods.MarkLocationReady(ctx, apptest.KeeperA, pid, apptest.LocA)
	require.ErrorIs(t, err, domain.ErrReconciliationNotCompleted)

	_, err = f.Reconciliations.SaveAdjustments(ctx, apptest.KeeperA, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	out, err := f.Periods.MarkLocationReady(ctx, apptest.KeeperA, pid, apptest.LocA)
	require.NoError(t, err)
	a := locationByID(t, out, apptest.LocA)
	assert.Equal(t, string(entity.PeriodLocationReady), a.Status)
	assert.NotNil(t, a.ReadyAt)

	_, err = f.Periods.MarkLocationReady(ctx, apptest.KeeperA, pid, apptest.LocB)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestPeriodClose_UbicacionesPendientesNoMuta(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	_, err := f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	_, err = f.Periods.MarkLocationReady(ctx, apptest.Admin, pid, apptest.LocA)
	require.NoError(t, err)

	_, err = f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	var nre *domain.LocationsNotReadyError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, []string{apptest.LocB}, nre.Pending)

	p, err := f.Periods.GetPeriod(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodOpen), p.Status)
	pending, err := f.Approvals.ListPending(ctx, string(entity.ApprovalPeriodClose))
	require.NoError(t, err)
	assert.Empty(t, pending.Items)

	_, err = f.Periods.RequestPeriodClose(ctx, apptest.KeeperA, pid)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestPeriodClose_NCRAbiertasSonAdvertencias(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "10", "26")
	f.MarkAllReady(t, pid)

	out, err := f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodPendingClose), out.Period.Status)
	assert.Equal(t, string(entity.ApprovalPeriodClose), out.Approval.EntityType)
	assert.Equal(t, string(entity.ApprovalPending), out.Approval.Status)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, apptest.LocA, out.Warnings[0].LocationID)
	assert.True(t, out.Warnings[0].Value.Equal(apptest.D("10")))

	_, err = f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestClosePeriod_SnapshotInmutable(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "10", "25")
	f.Close(t, pid)

	repo := f.Store.PeriodLocations()
	before, err := repo.Get(ctx, pid, apptest.LocA)
	require.NoError(t, err)
	require.NotNil(t, before.Snapshot)
	require.NotNil(t, before.ClosingValue)
	original := append([]byte(nil), before.Snapshot...)
	originalValue := *before.ClosingValue

	tampered := *before
	other := apptest.D("999")
	tampered.ClosingValue = &other
	tampered.Snapshot = json.RawMessage(`{"closing":"999"}`)
	require.NoError(t, repo.Update(ctx, &tampered))

	after, err := repo.Get(ctx, pid, apptest.LocA)
	require.NoError(t, err)
	assert.Equal(t, original, []byte(after.Snapshot))
	require.NotNil(t, after.ClosingValue)
	assert.True(t, after.ClosingValue.Equal(originalValue), "got %s", after.ClosingValue)
	assert.Equal(t, entity.PeriodLocationClosed, after.Status)
}

func TestClosePeriod_SnapshotsYRollForward(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "100", "25")
	_, err := f.Issues.PostIssue(ctx, apptest.KeeperA, dto.PostIssueRequest{
		LocationID: apptest.LocA,
		CostCentre: "cocina",
		Lines:      []dto.IssueLineRequest{{ItemID: apptest.Flour, Quantity: apptest.D("40")}},
	})
	require.NoError(t, err)
	f.Store.SetMandays(pid, apptest.LocA, apptest.D("10"))

	f.Close(t, pid)

	closed, err := f.Periods.GetPeriod(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodClosed), closed.Status)
	require.NotNil(t, closed.ClosedAt)

	a := locationByID(t, closed, apptest.LocA)
	assert.Equal(t, string(entity.PeriodLocationClosed), a.Status)
	require.NotNil(t, a.ClosingValue)
	assert.True(t, a.ClosingValue.Equal(apptest.D("1500")), "got %s", a.ClosingValue)
	var snap domrec.Snapshot
	require.NoError(t, json.Unmarshal(a.Snapshot, &snap))
	assert.True(t, snap.Receipts.Equal(apptest.D("2500")))
	assert.True(t, snap.Issues.Equal(apptest.D("1000")))
	assert.True(t, snap.Closing.Equal(apptest.D("1500")))
	assert.True(t, snap.Consumption.Equal(apptest.D("1000")))
	assert.True(t, snap.Variance.IsZero())
	require.NotNil(t, snap.MandayCost)
	assert.True(t, snap.MandayCost.Equal(apptest.D("100")))
	require.Len(t, snap.Stock, 1)
	assert.True(t, snap.Stock[0].OnHand.Equal(apptest.D("60")))

	b := locationByID(t, closed, apptest.LocB)
	require.NotNil(t, b.ClosingValue)
	assert.True(t, b.ClosingValue.IsZero())
	assert.Equal(t, 1, f.Metrics.Closes["closed"])

	// Un periodo cerrado no admite movimientos ni ajustes.
	_, err = f.Deliveries.PostDelivery(ctx, apptest.Admin, dto.PostDeliveryRequest{
		LocationID: apptest.LocA, PeriodID: pid, SupplierID: apptest.Supplier, InvoiceNo: "F-2",
		Lines: []dto.DeliveryLineRequest{{ItemID: apptest.Flour, Quantity: apptest.D("1"), UnitPrice: apptest.D("25")}},
	})
	require.ErrorIs(t, err, domain.ErrPeriodClosed)
	_, err = f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	_, err = f.Periods.RollForwardPeriod(ctx, apptest.KeeperA, pid, dto.RollForwardRequest{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	next, err := f.Periods.RollForwardPeriod(ctx, apptest.Controller, pid, dto.RollForwardRequest{CopyPrices: true})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodDraft), next.Status)
	assert.Equal(t, "2026-02", next.Name)
	assert.Equal(t, "2026-02-01", next.StartDate)
	assert.Equal(t, "2026-02-28", next.EndDate)
	assert.True(t, locationByID(t, next, apptest.LocA).OpeningValue.Equal(apptest.D("1500")))

	price, err := f.Store.Prices().Get(ctx, next.ID, apptest.Flour)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Price.Equal(apptest.D("25")))

	opened, err := f.Periods.OpenPeriod(ctx, apptest.Admin, next.ID)
	require.NoError(t, err)
	assert.Len(t, opened.Locations, 2)
	assert.True(t, locationByID(t, opened, apptest.LocA).OpeningValue.Equal(apptest.D("1500")))

	_, err = f.Periods.RollForwardPeriod(ctx, apptest.Controller, pid, dto.RollForwardRequest{})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRollForward_SinCopiarPrecios(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})

	_, err := f.Periods.RollForwardPeriod(ctx, apptest.Controller, pid, dto.RollForwardRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.Close(t, pid)
	next, err := f.Periods.RollForwardPeriod(ctx, apptest.Controller, pid, dto.RollForwardRequest{Name: "Febrero"})
	require.NoError(t, err)
	assert.Equal(t, "Febrero", next.Name)
	price, err := f.Store.Prices().Get(ctx, next.ID, apptest.Flour)
	require.NoError(t, err)
	assert.Nil(t, price)
}

func TestApprovePeriodClose_FalloRevierteTodo(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.MarkAllReady(t, pid)
	req, err := f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	require.NoError(t, err)

	f.Store.FailNext("period_locations.update", errors.New("conexión perdida"))
	_, err = f.Periods.ApprovePeriodClose(ctx, apptest.Admin, req.Approval.ID, "")
	require.Error(t, err)

	p, err := f.Periods.GetPeriod(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodPendingClose), p.Status)
	for _, l := range p.Locations {
		assert.Equal(t, string(entity.PeriodLocationReady), l.Status)
		assert.Nil(t, l.ClosingValue)
	}
	a, err := f.Approvals.Get(ctx, req.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ApprovalPending), a.Status)
	assert.Equal(t, 1, f.Metrics.Closes["failed"])

	_, err = f.Periods.ApprovePeriodClose(ctx, apptest.Admin, req.Approval.ID, "")
	require.NoError(t, err)
}

func TestRejectPeriodClose_VuelveAOpen(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.MarkAllReady(t, pid)
	req, err := f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	require.NoError(t, err)

	_, err = f.Approvals.Reject(ctx, apptest.Admin, req.Approval.ID, "faltan conteos")
	require.NoError(t, err)

	p, err := f.Periods.GetPeriod(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PeriodOpen), p.Status)
	assert.Equal(t, string(entity.PeriodLocationReady), locationByID(t, p, apptest.LocA).Status)
	assert.Equal(t, 1, f.Metrics.Closes["rejected"])

	again, err := f.Periods.RequestPeriodClose(ctx, apptest.Controller, pid)
	require.NoError(t, err)
	assert.NotEqual(t, req.Approval.ID, again.Approval.ID)
}

func TestApprovePeriodClose_AprobacionDeOtroTipo(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("5"), apptest.D("1"))
	tr, err := f.Transfers.CreateTransfer(ctx, apptest.KeeperA, dto.CreateTransferRequest{
		FromLocationID: apptest.LocA,
		ToLocationID:   apptest.LocB,
		Lines:          []dto.TransferLineRequest{{ItemID: apptest.Flour, Quantity: apptest.D("1")}},
	})
	require.NoError(t, err)

	_, err = f.Periods.ApprovePeriodClose(ctx, apptest.Admin, tr.ApprovalID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
