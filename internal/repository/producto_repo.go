package repository

import (
	"context"
	"errors"

	"bazarpos/internal/model"

	"gorm.io/gorm"
)

// ErrCantidadNoPositiva is returned by DecrementStockTx for qty <= 0, which
// the stock guard would otherwise turn into an increment.
var ErrCantidadNoPositiva = errors.New("la cantidad a descontar debe ser positiva")

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Producto, error)
	// ListActivos returns active products ordered by name.
	ListActivos(ctx context.Context) ([]model.Producto, error)
	// ListVendibles returns active products with stock left, for the sale screen.
	ListVendibles(ctx context.Context) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	Archivar(ctx context.Context, id uint) error

	// Product codes
	CodigoExists(ctx context.Context, codigo string) (bool, error)
	ListSinCodigo(ctx context.Context) ([]model.Producto, error)
	SetCodigo(ctx context.Context, id uint, codigo string) error

	// DecrementStockTx subtracts qty only while enough stock remains. ok is
	// false when the guard rejected the update. qty must be positive.
	// Callers must pass the tx.
	DecrementStockTx(ctx context.Context, tx *gorm.DB, id uint, qty int) (ok bool, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByNombre(ctx context.Context, nombre string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&p).Error
	return &p, err
}

func (r *productoRepo) ListActivos(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("estado = ?", model.EstadoActivo).
		Order("nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) ListVendibles(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("estado = ? AND stock > 0", model.EstadoActivo).
		Order("nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) Archivar(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", id).
		Update("estado", model.EstadoInactivo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) CodigoExists(ctx context.Context, codigo string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Where("codigo = ?", codigo).Count(&n).Error
	return n > 0, err
}

func (r *productoRepo) ListSinCodigo(ctx context.Context) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).Where("codigo IS NULL OR codigo = ''").Order("id ASC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) SetCodigo(ctx context.Context, id uint, codigo string) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("codigo", codigo).Error
}

func (r *productoRepo) DecrementStockTx(ctx context.Context, tx *gorm.DB, id uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, ErrCantidadNoPositiva
	}
	res := tx.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
