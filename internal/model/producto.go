package model

import (
	"github.com/shopspring/decimal"
)

// Estado values for Producto. Archived products stay referenced by history.
const (
	EstadoActivo   = "activo"
	EstadoInactivo = "inactivo"
)

// Producto is a catalog entry. Precio is the net unit price; Codigo is nil only
// for rows created before product codes existed, until the startup backfill.
type Producto struct {
	ID     uint            `gorm:"primaryKey"`
	Codigo *string         `gorm:"type:varchar(12);uniqueIndex"`
	Nombre string          `gorm:"type:varchar(100);uniqueIndex;not null"`
	Precio decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock  int             `gorm:"not null;default:0"`
	Estado string          `gorm:"type:varchar(10);not null;default:'activo'"`
}

func (Producto) TableName() string { return "productos" }

func (p *Producto) Activo() bool { return p.Estado == EstadoActivo }

// CodigoOrEmpty returns the product code, or "" for legacy rows.
func (p *Producto) CodigoOrEmpty() string {
	if p.Codigo == nil {
		return ""
	}
	return *p.Codigo
}
