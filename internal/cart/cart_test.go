package cart

import (
	"errors"
	"math"
	"testing"

	"bazarpos/internal/apierror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var iva = decimal.RequireFromString("0.19")

func product(id uint, precio int64, stock int) Product {
	return Product{ID: id, Nombre: "Producto", Precio: decimal.NewFromInt(precio), Stock: stock}
}

func TestAddLine_MergesRepeatedAdds(t *testing.T) {
	c := New(iva)
	p := product(1, 1500, 10)

	require.NoError(t, c.AddLine(p, 2))
	require.NoError(t, c.AddLine(p, 3))
	require.NoError(t, c.AddLine(p, 5))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 10, lines[0].Cantidad)
	assert.True(t, lines[0].Subtotal.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, 10, c.Reserved(p.ID))
}

func TestAddLine_InsufficientStockLeavesCartUnchanged(t *testing.T) {
	c := New(iva)
	p := product(1, 1000, 5)

	require.NoError(t, c.AddLine(p, 3))
	err := c.AddLine(p, 3)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 3, c.Lines()[0].Cantidad)
}

func TestAddLine_ExactStockAllowed(t *testing.T) {
	c := New(iva)
	p := product(1, 1000, 5)

	require.NoError(t, c.AddLine(p, 5))
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(c.AddLine(p, 1)))
}

func TestAddLine_HugeQuantityRejected(t *testing.T) {
	c := New(iva)
	p := product(1, 1200, 5)
	require.NoError(t, c.AddLine(p, 1))

	q, err := ParseQuantity("9223372036854775807")
	require.NoError(t, err)
	assert.ErrorIs(t, c.AddLine(p, q), ErrInsufficientStock)
	assert.ErrorIs(t, c.AddLine(p, math.MaxInt-1), ErrInsufficientStock)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.Lines()[0].Cantidad)
	assert.True(t, c.Totals().Total.IsPositive())
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	c := New(iva)
	for _, q := range []int{0, -1} {
		err := c.AddLine(product(1, 1000, 5), q)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.True(t, c.IsEmpty())
}

func TestAddLine_KeepsInsertionOrder(t *testing.T) {
	c := New(iva)
	require.NoError(t, c.AddLine(product(7, 100, 9), 1))
	require.NoError(t, c.AddLine(product(3, 100, 9), 1))
	require.NoError(t, c.AddLine(product(7, 100, 9), 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, uint(7), lines[0].ProductoID)
	assert.Equal(t, uint(3), lines[1].ProductoID)
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(" 4 ")
	require.NoError(t, err)
	assert.Equal(t, 4, q)

	for _, raw := range []string{"", "abc", "2.5", "0", "-3"} {
		_, err := ParseQuantity(raw)
		assert.True(t, errors.Is(err, ErrInvalidQuantity), "raw %q", raw)
	}
}

func TestTotals_WithTax(t *testing.T) {
	c := New(iva)
	require.NoError(t, c.AddLine(product(1, 1000, 5), 1))
	require.NoError(t, c.AddLine(product(2, 2000, 5), 1))

	tot := c.Totals()
	assert.True(t, tot.Neto.Equal(decimal.NewFromInt(3000)), tot.Neto.String())
	assert.True(t, tot.IVA.Equal(decimal.NewFromInt(570)), tot.IVA.String())
	assert.True(t, tot.Total.Equal(decimal.NewFromInt(3570)), tot.Total.String())
}

func TestTotals_TaxFree(t *testing.T) {
	c := New(decimal.Zero)
	require.NoError(t, c.AddLine(product(1, 990, 5), 3))

	tot := c.Totals()
	assert.True(t, tot.IVA.IsZero())
	assert.True(t, tot.Total.Equal(decimal.NewFromInt(2970)))
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New(iva)
	require.NoError(t, c.AddLine(product(1, 1000, 5), 1))

	lines := c.Lines()
	lines[0].Cantidad = 99
	assert.Equal(t, 1, c.Lines()[0].Cantidad)
}

func TestClear(t *testing.T) {
	c := New(iva)
	require.NoError(t, c.AddLine(product(1, 1000, 5), 5))
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Reserved(1))
	require.NoError(t, c.AddLine(product(1, 1000, 5), 5))
}
