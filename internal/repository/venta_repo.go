package repository

import (
	"context"
	"time"

	"bazarpos/internal/model"

	"gorm.io/gorm"
)

// HistorialQuery narrows the sales history. Zero values disable a filter;
// Hasta is exclusive.
type HistorialQuery struct {
	Desde    *time.Time
	Hasta    *time.Time
	Vendedor string
	Producto string
}

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, b *model.Boleta) error
	FindByID(ctx context.Context, id uint) (*model.Boleta, error)
	List(ctx context.Context, q HistorialQuery) ([]model.Boleta, error)
	// Vendedores lists the distinct sellers that have committed sales.
	Vendedores(ctx context.Context) ([]string, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

// CreateTx inserts the boleta and its detalles in tx.
func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, b *model.Boleta) error {
	return tx.WithContext(ctx).Create(b).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uint) (*model.Boleta, error) {
	var b model.Boleta
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").First(&b, id).Error
	return &b, err
}

func (r *ventaRepo) List(ctx context.Context, hq HistorialQuery) ([]model.Boleta, error) {
	q := r.db.WithContext(ctx).Model(&model.Boleta{})

	if hq.Desde != nil {
		q = q.Where("boletas.fecha >= ?", *hq.Desde)
	}
	if hq.Hasta != nil {
		q = q.Where("boletas.fecha < ?", *hq.Hasta)
	}
	if hq.Vendedor != "" {
		q = q.Where("boletas.vendedor_usuario = ?", hq.Vendedor)
	}
	if hq.Producto != "" {
		// A sale matches when any of its lines names a matching product
		q = q.Where(`EXISTS (SELECT 1 FROM detalle_ventas d JOIN productos p ON p.id = d.producto_id
			WHERE d.boleta_id = boletas.id AND LOWER(p.nombre) LIKE LOWER(?))`, "%"+hq.Producto+"%")
	}

	var boletas []model.Boleta
	err := q.Preload("Detalles.Producto").
		Order("boletas.fecha DESC, boletas.id DESC").
		Find(&boletas).Error
	return boletas, err
}

func (r *ventaRepo) Vendedores(ctx context.Context) ([]string, error) {
	var vendedores []string
	err := r.db.WithContext(ctx).Model(&model.Boleta{}).
		Distinct("vendedor_usuario").
		Where("vendedor_usuario <> ''").
		Order("vendedor_usuario ASC").
		Pluck("vendedor_usuario", &vendedores).Error
	return vendedores, err
}
