package reconciliation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/apptest"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

func TestSaveAdjustments_RecalculaDelLibro(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "10"})
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "50", "10")
	_, err := f.Issues.PostIssue(ctx, apptest.KeeperA, dto.PostIssueRequest{
		LocationID: apptest.LocA,
		CostCentre: "cocina",
		Lines:      []dto.IssueLineRequest{{ItemID: apptest.Flour, Quantity: apptest.D("20")}},
	})
	require.NoError(t, err)
	_, err = f.Transfers.CreateTransfer(ctx, apptest.KeeperA, dto.CreateTransferRequest{
		FromLocationID: apptest.LocA,
		ToLocationID:   apptest.LocB,
		Lines:          []dto.TransferLineRequest{{ItemID: apptest.Flour, Quantity: apptest.D("5")}},
	})
	require.NoError(t, err)
	pending, err := f.Approvals.ListPending(ctx, "TRANSFER")
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	_, err = f.Approvals.Approve(ctx, apptest.Controller, pending.Items[0].ID, "")
	require.NoError(t, err)
	f.Store.SetMandays(pid, apptest.LocA, apptest.D("8"))

	out, err := f.Reconciliations.SaveAdjustments(ctx, apptest.KeeperA, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{
		BackCharges: apptest.D("15"),
		Credits:     apptest.D("5"),
		Adjustments: apptest.D("-2"),
	})
	require.NoError(t, err)
	assert.True(t, out.Opening.IsZero())
	assert.True(t, out.Receipts.Equal(apptest.D("500")))
	assert.True(t, out.Issues.Equal(apptest.D("200")))
	assert.True(t, out.TransfersOut.Equal(apptest.D("50")))
	assert.True(t, out.TransfersIn.IsZero())
	assert.True(t, out.Closing.Equal(apptest.D("250")), "got %s", out.Closing)
	// 0 + 500 - 50 - 250 + 15 - 5 - 2 = 208
	assert.True(t, out.Consumption.Equal(apptest.D("208")), "got %s", out.Consumption)
	require.NotNil(t, out.MandayCost)
	assert.True(t, out.MandayCost.Equal(apptest.D("26")))
	assert.Equal(t, apptest.KeeperA.UserID, out.UpdatedBy)

	b, err := f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, pid, apptest.LocB, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	assert.True(t, b.TransfersIn.Equal(apptest.D("50")))
	assert.True(t, b.Consumption.IsZero())
	assert.Nil(t, b.MandayCost)

	got, err := f.Reconciliations.Get(ctx, apptest.KeeperA, pid, apptest.LocA)
	require.NoError(t, err)
	assert.True(t, got.Consumption.Equal(apptest.D("208")))
	assert.True(t, got.BackCharges.Equal(apptest.D("15")))
}

func TestSaveAdjustments_NCRResueltasEntranAlCalculo(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", map[string]string{apptest.Flour: "25"})
	d := f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "10", "26")
	ncrID := d.NCRsCreated[0].ID

	before, err := f.Reconciliations.SaveAdjustments(ctx, apptest.KeeperA, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	assert.True(t, before.NCRCredits.IsZero())

	_, err = f.NCRs.UpdateNCRStatus(ctx, apptest.KeeperA, ncrID, dto.UpdateNCRStatusRequest{Status: "SENT"})
	require.NoError(t, err)
	_, err = f.NCRs.UpdateNCRStatus(ctx, apptest.KeeperA, ncrID, dto.UpdateNCRStatusRequest{Status: "CREDITED"})
	require.NoError(t, err)

	after, err := f.Reconciliations.SaveAdjustments(ctx, apptest.KeeperA, pid, apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.NoError(t, err)
	assert.True(t, after.NCRCredits.Equal(apptest.D("10")))
	assert.True(t, after.Consumption.Equal(before.Consumption.Sub(apptest.D("10"))))
}

func TestSaveAdjustments_Validaciones(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)

	for _, in := range []dto.ReconciliationAdjustmentsRequest{
		{BackCharges: apptest.D("-1")},
		{Credits: apptest.D("-1")},
		{Condemnations: apptest.D("-0.01")},
		{Adjustments: apptest.D("1.00001")},
	} {
		_, err := f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, pid, apptest.LocA, in)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	_, err := f.Reconciliations.SaveAdjustments(ctx, apptest.KeeperA, pid, apptest.LocB, dto.ReconciliationAdjustmentsRequest{})
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.Reconciliations.SaveAdjustments(ctx, apptest.Admin, "nope", apptest.LocA, dto.ReconciliationAdjustmentsRequest{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_SinReconciliacion(t *testing.T) {
	f := apptest.New()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	_, err := f.Reconciliations.Get(context.Background(), apptest.Admin, pid, apptest.LocA)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
