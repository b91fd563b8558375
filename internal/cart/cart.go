// Package cart holds the in-memory sale being built on the sale screen.
// A Cart is not safe for concurrent use; the terminal serializes access.
package cart

import (
	"fmt"
	"strconv"
	"strings"

	"bazarpos/internal/apierror"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity   = apierror.E(apierror.KindInvalidQuantity, "La cantidad debe ser un número entero mayor que cero")
	ErrInsufficientStock = apierror.E(apierror.KindInsufficientStock, "No hay suficiente stock.")
	ErrEmptyCart         = apierror.E(apierror.KindEmptyCart, "El carrito está vacío")
)

// Product is the snapshot of a catalog row taken when the sale screen opened.
type Product struct {
	ID     uint
	Nombre string
	Precio decimal.Decimal
	Stock  int
}

type Line struct {
	ProductoID     uint
	Nombre         string
	PrecioUnitario decimal.Decimal
	Cantidad       int
	Subtotal       decimal.Decimal
}

type Totals struct {
	Neto  decimal.Decimal
	IVA   decimal.Decimal
	Total decimal.Decimal
}

type Cart struct {
	taxRate decimal.Decimal
	lines   []Line
	index   map[uint]int
}

// New returns an empty cart that applies taxRate (e.g. 0.19) on Totals.
func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate, index: make(map[uint]int)}
}

// ParseQuantity converts the raw quantity field into a positive integer.
func ParseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q <= 0 {
		return 0, ErrInvalidQuantity
	}
	return q, nil
}

// AddLine adds quantity units of p, merging with an existing line for the
// same product. The cart is unchanged when an error is returned.
func (c *Cart) AddLine(p Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	// Compared against the free quantity so huge inputs cannot overflow.
	if free := p.Stock - c.Reserved(p.ID); quantity > free {
		return apierror.E(apierror.KindInsufficientStock,
			fmt.Sprintf("No hay suficiente stock de %s (disponible: %d).", p.Nombre, max(free, 0)))
	}

	if i, ok := c.index[p.ID]; ok {
		l := &c.lines[i]
		l.Cantidad += quantity
		l.Subtotal = l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
		return nil
	}

	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, Line{
		ProductoID:     p.ID,
		Nombre:         p.Nombre,
		PrecioUnitario: p.Precio,
		Cantidad:       quantity,
		Subtotal:       p.Precio.Mul(decimal.NewFromInt(int64(quantity))),
	})
	return nil
}

// Reserved is the quantity of productID already in the cart.
func (c *Cart) Reserved(productID uint) int {
	if i, ok := c.index[productID]; ok {
		return c.lines[i].Cantidad
	}
	return 0
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }

// Totals computes neto as the sum of subtotals, iva = neto × rate rounded to
// cents, and total = neto + iva.
func (c *Cart) Totals() Totals {
	neto := decimal.Zero
	for _, l := range c.lines {
		neto = neto.Add(l.Subtotal)
	}
	iva := neto.Mul(c.taxRate).Round(2)
	return Totals{Neto: neto, IVA: iva, Total: neto.Add(iva)}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[uint]int)
}
