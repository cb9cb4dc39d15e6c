package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/apptest"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

func issueRequest(lines ...dto.IssueLineRequest) dto.PostIssueRequest {
	return dto.PostIssueRequest{LocationID: apptest.LocA, CostCentre: "banquetes", Lines: lines}
}

func TestPostIssue_CongelaWAC(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()
	pid := f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("10"), apptest.D("4.5"))

	out, err := f.Issues.PostIssue(ctx, apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("4")}))
	require.NoError(t, err)
	assert.Equal(t, pid, out.PeriodID)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].WACAtIssue.Equal(apptest.D("4.5")))
	assert.True(t, out.TotalValue.Equal(apptest.D("18")))

	// Una entrega posterior cambia el WAC pero no la salida ya registrada.
	f.Deliver(t, pid, apptest.LocA, "F-1", apptest.Flour, "6", "10")
	got, err := f.Issues.GetIssue(ctx, apptest.KeeperA, out.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].WACAtIssue.Equal(apptest.D("4.5")))

	s := f.Stock(t, apptest.LocA, apptest.Flour)
	assert.True(t, s.OnHand.Equal(apptest.D("12")))
	assert.Equal(t, 1, f.Metrics.Issued)
}

func TestPostIssue_StockInsuficienteNoMuta(t *testing.T) {
	f := apptest.New()
	f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("5"), apptest.D("2"))
	f.Store.SetStock(apptest.LocA, apptest.Oil, apptest.D("10"), apptest.D("3"))

	_, err := f.Issues.PostIssue(context.Background(), apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Oil, Quantity: apptest.D("1")},
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("8")}))

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, apptest.Flour, ise.ItemID)
	assert.True(t, ise.Requested.Equal(apptest.D("8")))
	assert.True(t, ise.Available.Equal(apptest.D("5")))
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Oil).OnHand.Equal(apptest.D("10")))
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.Equal(apptest.D("5")))
	assert.Equal(t, 1, f.Metrics.Shortages)
	assert.Equal(t, 0, f.Metrics.Issued)
}

func TestPostIssue_AcumulaItemsRepetidos(t *testing.T) {
	f := apptest.New()
	f.OpenPeriod(t, "2026-01", "2026-01-01", "2026-01-31", nil)
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("5"), apptest.D("2"))

	_, err := f.Issues.PostIssue(context.Background(), apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("3")},
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("3")}))

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.True(t, ise.Requested.Equal(apptest.D("6")))
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.Equal(apptest.D("5")))

	out, err := f.Issues.PostIssue(context.Background(), apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("2")},
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("3")}))
	require.NoError(t, err)
	assert.Len(t, out.Lines, 2)
	assert.True(t, f.Stock(t, apptest.LocA, apptest.Flour).OnHand.IsZero())
}

func TestPostIssue_SinPeriodoAbierto(t *testing.T) {
	f := apptest.New()
	f.Store.SetStock(apptest.LocA, apptest.Flour, apptest.D("5"), apptest.D("2"))

	_, err := f.Issues.PostIssue(context.Background(), apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1")}))
	require.ErrorIs(t, err, domain.ErrPeriodClosed)
}

func TestPostIssue_Validaciones(t *testing.T) {
	f := apptest.New()
	ctx := context.Background()

	in := issueRequest(dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1")})
	in.CostCentre = "  "
	_, err := f.Issues.PostIssue(ctx, apptest.KeeperA, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.Issues.PostIssue(ctx, apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("-1")}))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.Issues.PostIssue(ctx, apptest.KeeperA, issueRequest(
		dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("0.00001")}))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "lines[0].quantity", ve.Field)

	in = issueRequest(dto.IssueLineRequest{ItemID: apptest.Flour, Quantity: apptest.D("1")})
	in.LocationID = apptest.LocB
	_, err = f.Issues.PostIssue(ctx, apptest.KeeperA, in)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
