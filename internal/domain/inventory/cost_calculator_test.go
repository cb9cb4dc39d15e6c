package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyReceipt_PromedioPonderado(t *testing.T) {
	wac := inventory.ApplyReceipt(d("100"), d("10"), d("50"), d("12"))
	assert.True(t, wac.Equal(d("10.666667")), "got %s", wac)
}

func TestApplyReceipt_SinStockPrevioTomaElPrecio(t *testing.T) {
	wac := inventory.ApplyReceipt(decimal.Zero, decimal.Zero, d("20"), d("8.5"))
	assert.True(t, wac.Equal(d("8.5")), "got %s", wac)
}

func TestApplyReceipt_CantidadResultanteCero(t *testing.T) {
	wac := inventory.ApplyReceipt(decimal.Zero, d("10"), decimal.Zero, d("12"))
	assert.True(t, wac.IsZero())
}

func TestLineValue_Redondea(t *testing.T) {
	v := inventory.LineValue(d("3"), d("0.33331"))
	assert.Equal(t, "0.9999", v.String())
}

func TestCheckScale(t *testing.T) {
	for _, ok := range []string{"1", "0.0001", "25.5", "1.00000", "-2.1234"} {
		assert.NoError(t, inventory.CheckScale("quantity", d(ok)), ok)
	}
	for _, bad := range []string{"0.00001", "25.00001", "-0.12345"} {
		err := inventory.CheckScale("quantity", d(bad))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, "quantity", ve.Field)
	}
}
