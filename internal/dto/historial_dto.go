package dto

import "github.com/shopspring/decimal"

// TodosLosVendedores disables the seller filter.
const TodosLosVendedores = "Todos"

// HistorialFilter is bound from POST /v1/terminal/historial/buscar.
// Dates are whole days (YYYY-MM-DD), both ends inclusive.
type HistorialFilter struct {
	FechaInicio string `json:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `json:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
	Vendedor    string `json:"vendedor"     validate:"max=50"`
	Producto    string `json:"producto"     validate:"max=100"`
}

// HistorialItem is one committed sale in the history list.
type HistorialItem struct {
	BoletaID      uint            `json:"boleta_id"`
	Fecha         string          `json:"fecha"` // YYYY-MM-DD HH:MM
	Vendedor      string          `json:"vendedor"`
	Productos     string          `json:"productos"`
	Cantidad      int             `json:"cantidad"`
	TipoDocumento string          `json:"tipo_documento"`
	Neto          decimal.Decimal `json:"neto"`
	IVA           decimal.Decimal `json:"iva"`
	Total         decimal.Decimal `json:"total"`
	TotalFmt      string          `json:"total_fmt"`
}

type HistorialResumen struct {
	NumVentas int             `json:"num_ventas"`
	Neto      decimal.Decimal `json:"neto"`
	IVA       decimal.Decimal `json:"iva"`
	Total     decimal.Decimal `json:"total"`
	TotalFmt  string          `json:"total_fmt"`
}

type HistorialResponse struct {
	Data    []HistorialItem  `json:"data"`
	Resumen HistorialResumen `json:"resumen"`
}
