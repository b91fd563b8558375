package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AgregarLineaRequest adds a product to the cart. Cantidad is the raw text of
// the quantity field.
type AgregarLineaRequest struct {
	ProductoID uint   `json:"producto_id" validate:"required"`
	Cantidad   string `json:"cantidad"`
}

type ConfirmarVentaRequest struct {
	TipoDocumento string `json:"tipo_documento" validate:"omitempty,oneof=boleta factura"`
	ClienteRUT    string `json:"cliente_rut"    validate:"max=20"`
	ClienteNombre string `json:"cliente_nombre" validate:"max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaCarritoResponse struct {
	ProductoID     uint            `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	PrecioFmt      string          `json:"precio_fmt"`
	SubtotalFmt    string          `json:"subtotal_fmt"`
}

type TotalesResponse struct {
	Neto     decimal.Decimal `json:"neto"`
	IVA      decimal.Decimal `json:"iva"`
	Total    decimal.Decimal `json:"total"`
	NetoFmt  string          `json:"neto_fmt"`
	IVAFmt   string          `json:"iva_fmt"`
	TotalFmt string          `json:"total_fmt"`
}

type DetalleResponse struct {
	ProductoID     uint            `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type BoletaResponse struct {
	ID            uint              `json:"id"`
	Fecha         string            `json:"fecha"`
	Vendedor      string            `json:"vendedor"`
	TipoDocumento string            `json:"tipo_documento"`
	ClienteRUT    *string           `json:"cliente_rut,omitempty"`
	ClienteNombre *string           `json:"cliente_nombre,omitempty"`
	Neto          decimal.Decimal   `json:"neto"`
	IVA           decimal.Decimal   `json:"iva"`
	Total         decimal.Decimal   `json:"total"`
	TotalFmt      string            `json:"total_fmt"`
	Detalles      []DetalleResponse `json:"detalles"`
}
