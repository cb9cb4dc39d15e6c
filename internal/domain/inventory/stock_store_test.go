package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
)

func TestSortKeys_OrdenaYDeduplica(t *testing.T) {
	keys := inventory.SortKeys([]inventory.StockKey{
		{LocationID: "b", ItemID: "2"},
		{LocationID: "a", ItemID: "9"},
		{LocationID: "b", ItemID: "1"},
		{LocationID: "a", ItemID: "9"},
	})
	assert.Equal(t, []inventory.StockKey{
		{LocationID: "a", ItemID: "9"},
		{LocationID: "b", ItemID: "1"},
		{LocationID: "b", ItemID: "2"},
	}, keys)
}

func TestStockStore_EntradaYSalida(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SetStock("loc", "item", d("100"), d("10"))

	err := store.Run(ctx, func(tx repository.Store) error {
		s := inventory.NewStockStore(tx.Stock())
		row, err := s.Receive(ctx, "loc", "item", d("50"), d("12"))
		require.NoError(t, err)
		assert.True(t, row.OnHand.Equal(d("150")))
		assert.True(t, row.WAC.Equal(d("10.666667")))

		row, err = s.ApplyDelta(ctx, "loc", "item", d("-30"), nil)
		require.NoError(t, err)
		assert.True(t, row.OnHand.Equal(d("120")))
		assert.True(t, row.WAC.Equal(d("10.666667")), "una salida no cambia el WAC")
		return nil
	})
	require.NoError(t, err)

	row, err := store.Stock().Get(ctx, "loc", "item")
	require.NoError(t, err)
	assert.True(t, row.OnHand.Equal(d("120")))
}

func TestStockStore_SalidaMayorAlDisponible(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SetStock("loc", "item", d("5"), d("10"))

	err := store.Run(ctx, func(tx repository.Store) error {
		_, err := inventory.NewStockStore(tx.Stock()).ApplyDelta(ctx, "loc", "item", d("-8"), nil)
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Requested.Equal(d("8")))
	assert.True(t, ise.Available.Equal(d("5")))

	row, err := store.Stock().Get(ctx, "loc", "item")
	require.NoError(t, err)
	assert.True(t, row.OnHand.Equal(d("5")))
}

func TestStockStore_EntradaSinWAC(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	err := store.Run(ctx, func(tx repository.Store) error {
		_, err := inventory.NewStockStore(tx.Stock()).ApplyDelta(ctx, "loc", "item", d("1"), nil)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockStore_Valuacion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SetStock("loc", "a", d("10"), d("2.5"))
	store.SetStock("loc", "b", d("4"), d("3"))
	store.SetStock("otra", "a", d("100"), d("1"))

	total, rows, err := inventory.NewStockStore(store.Stock()).Valuation(ctx, "loc")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.True(t, total.Equal(d("37")), "got %s", total)
}
