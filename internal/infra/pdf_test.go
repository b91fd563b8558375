package infra_test

import (
	"os"
	"testing"
	"time"

	"bazarpos/internal/infra"
	"bazarpos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBoleta(tipo string) *model.Boleta {
	rut, nombre := "76.123.456-7", "Librería Ñuñoa SpA"
	b := &model.Boleta{
		ID:              42,
		Neto:            decimal.NewFromInt(3000),
		IVA:             decimal.NewFromInt(570),
		Total:           decimal.NewFromInt(3570),
		Fecha:           time.Date(2024, 5, 10, 12, 30, 0, 0, time.Local),
		VendedorUsuario: "ana",
		TipoDocumento:   tipo,
		Detalles: []model.DetalleVenta{
			{ProductoID: 1, Cantidad: 1, PrecioUnitario: decimal.NewFromInt(1000), Subtotal: decimal.NewFromInt(1000),
				Producto: &model.Producto{Nombre: "Café de grano tostado medio"}},
			{ProductoID: 2, Cantidad: 2, PrecioUnitario: decimal.NewFromInt(1000), Subtotal: decimal.NewFromInt(2000)},
		},
	}
	if tipo == model.DocumentoFactura {
		b.ClienteRUT, b.ClienteNombre = &rut, &nombre
	}
	return b
}

func TestGenerateComprobantePDF(t *testing.T) {
	for _, tipo := range []string{model.DocumentoBoleta, model.DocumentoFactura} {
		t.Run(tipo, func(t *testing.T) {
			dir := t.TempDir()
			path, err := infra.GenerateComprobantePDF(sampleBoleta(tipo), "Sistema Bazar", dir)
			require.NoError(t, err)
			assert.Equal(t, infra.ComprobantePath(dir, 42), path)

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, len(raw) > 4 && string(raw[:4]) == "%PDF")
		})
	}
}
