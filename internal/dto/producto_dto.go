package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// GuardarProductoRequest carries the raw form fields of the product form.
// Precio and Stock are typed text and must parse as integers.
type GuardarProductoRequest struct {
	Nombre string `json:"nombre" validate:"max=100"`
	Precio string `json:"precio"`
	Stock  string `json:"stock"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID        uint            `json:"id"`
	Codigo    string          `json:"codigo"`
	Nombre    string          `json:"nombre"`
	Precio    decimal.Decimal `json:"precio"`
	PrecioFmt string          `json:"precio_fmt"`
	Stock     int             `json:"stock"`
	Estado    string          `json:"estado"`
}

// ProductoVendible is an entry of the sale screen's selector. Disponible is
// the snapshot stock minus what the cart already reserves.
type ProductoVendible struct {
	ID         uint            `json:"id"`
	Etiqueta   string          `json:"etiqueta"` // "Nombre (Stock: N)"
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	PrecioFmt  string          `json:"precio_fmt"`
	Stock      int             `json:"stock"`
	Disponible int             `json:"disponible"`
}
