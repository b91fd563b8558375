// Package money formats amounts for display in Chilean pesos.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-CL"))

// FormatCLP rounds v to whole pesos and groups thousands the Chilean way,
// e.g. "CLP$ 1.234.567". Pesos have no minor unit for display purposes.
func FormatCLP(v decimal.Decimal) string {
	return printer.Sprintf("CLP$ %d", v.Round(0).IntPart())
}
