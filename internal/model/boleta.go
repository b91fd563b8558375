package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TipoDocumento values. A factura requires the customer's RUT and name.
const (
	DocumentoBoleta  = "boleta"
	DocumentoFactura = "factura"
)

// Boleta is a committed sale. It is created in the same transaction as its
// detalles and the stock decrements, and is never modified afterwards.
type Boleta struct {
	ID              uint            `gorm:"primaryKey"`
	Neto            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IVA             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;column:iva"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Fecha           time.Time       `gorm:"not null;index"`
	VendedorUsuario string          `gorm:"type:varchar(50);not null;index"`
	TipoDocumento   string          `gorm:"type:varchar(10);not null;default:'boleta'"`
	ClienteRUT      *string         `gorm:"type:varchar(20);column:cliente_rut"`
	ClienteNombre   *string         `gorm:"type:varchar(100)"`

	Detalles []DetalleVenta `gorm:"foreignKey:BoletaID"`
}

func (Boleta) TableName() string { return "boletas" }

// DetalleVenta is one line of a Boleta. PrecioUnitario is the net price at the
// moment of sale, independent of later catalog edits.
type DetalleVenta struct {
	ID             uint            `gorm:"primaryKey"`
	BoletaID       uint            `gorm:"not null;index"`
	ProductoID     uint            `gorm:"not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }

// VentaLegacy is the one-product-per-row sales table of early installs.
// Only the startup migration reads it; BoletaID marks rows already imported.
type VentaLegacy struct {
	ID              uint            `gorm:"primaryKey"`
	ProductoID      uint            `gorm:"column:producto_id"`
	Cantidad        int             `gorm:"column:cantidad"`
	Total           decimal.Decimal `gorm:"column:total"`
	Fecha           *time.Time      `gorm:"column:fecha"`
	VendedorUsuario *string         `gorm:"column:vendedor_usuario"`
	BoletaID        *uint           `gorm:"column:boleta_id"`
}

func (VentaLegacy) TableName() string { return "ventas" }
