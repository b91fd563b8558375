package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatCLP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "CLP$ 0"},
		{"570", "CLP$ 570"},
		{"1234567", "CLP$ 1.234.567"},
		{"35700.49", "CLP$ 35.700"},
		{"35700.50", "CLP$ 35.701"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCLP(decimal.RequireFromString(tc.in)))
		})
	}
}
