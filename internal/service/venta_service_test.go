package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"bazarpos/internal/apierror"
	"bazarpos/internal/cart"
	"bazarpos/internal/dto"
	"bazarpos/internal/infra/infratest"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"
	"bazarpos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Fixtures ──────────────────────────────────────────────────────────────────

type ventaFixture struct {
	db        *gorm.DB
	productos repository.ProductoRepository
	ventas    repository.VentaRepository
	te, pan   model.Producto
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	db := infratest.NewTestDB(t)
	f := &ventaFixture{
		db:        db,
		productos: repository.NewProductoRepository(db),
		ventas:    repository.NewVentaRepository(db),
		te:        model.Producto{Nombre: "Té", Precio: decimal.NewFromInt(500), Stock: 5, Estado: model.EstadoActivo},
		pan:       model.Producto{Nombre: "Pan", Precio: decimal.NewFromInt(1000), Stock: 10, Estado: model.EstadoActivo},
	}
	ctx := context.Background()
	require.NoError(t, f.productos.Create(ctx, &f.te))
	require.NoError(t, f.productos.Create(ctx, &f.pan))
	return f
}

func snapshot(p model.Producto) cart.Product {
	return cart.Product{ID: p.ID, Nombre: p.Nombre, Precio: p.Precio, Stock: p.Stock}
}

func (f *ventaFixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.productos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *ventaFixture) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *ventaFixture) filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(decimal.RequireFromString("0.19"))
	require.NoError(t, c.AddLine(snapshot(f.te), 2))
	require.NoError(t, c.AddLine(snapshot(f.pan), 3))
	return c
}

type recordingDispatcher struct{ ids []uint }

func (d *recordingDispatcher) EnqueueComprobante(_ context.Context, id uint) error {
	d.ids = append(d.ids, id)
	return nil
}

// failingProductoRepo makes the Nth stock decrement fail.
type failingProductoRepo struct {
	repository.ProductoRepository
	failOn int
	calls  int
	err    error
}

func (r *failingProductoRepo) DecrementStockTx(ctx context.Context, tx *gorm.DB, id uint, qty int) (bool, error) {
	r.calls++
	if r.calls == r.failOn {
		if r.err != nil {
			return false, r.err
		}
		return false, errors.New("disk I/O error")
	}
	return r.ProductoRepository.DecrementStockTx(ctx, tx, id, qty)
}

var _ repository.ProductoRepository = (*failingProductoRepo)(nil)

// ── Tests: Confirmar ─────────────────────────────────────────────────────────

func TestConfirmar_CommitsBoletaDetallesAndStock(t *testing.T) {
	f := newVentaFixture(t)
	disp := &recordingDispatcher{}
	svc := service.NewVentaService(f.ventas, f.productos, disp)
	c := f.filledCart(t)

	b, err := svc.Confirmar(context.Background(), "ana", c, dto.ConfirmarVentaRequest{})
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, model.DocumentoBoleta, b.TipoDocumento)
	assert.Equal(t, "ana", b.Vendedor)
	assert.True(t, decimal.NewFromInt(4000).Equal(b.Neto))
	assert.True(t, decimal.NewFromInt(760).Equal(b.IVA))
	assert.True(t, decimal.NewFromInt(4760).Equal(b.Total))
	require.Len(t, b.Detalles, 2)
	assert.Equal(t, "Té", b.Detalles[0].Producto)

	assert.EqualValues(t, 1, f.count(t, &model.Boleta{}))
	assert.EqualValues(t, 2, f.count(t, &model.DetalleVenta{}))
	assert.Equal(t, 3, f.stock(t, f.te.ID))
	assert.Equal(t, 7, f.stock(t, f.pan.ID))

	assert.True(t, c.IsEmpty(), "cart is cleared after commit")
	assert.Equal(t, []uint{b.ID}, disp.ids)

	stored, err := svc.ObtenerBoleta(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, stored.Detalles, 2)
	assert.Equal(t, "Pan", stored.Detalles[1].Producto.Nombre)
}

func TestConfirmar_EmptyCartWritesNothing(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(f.ventas, f.productos, nil)

	_, err := svc.Confirmar(context.Background(), "ana", cart.New(decimal.Zero), dto.ConfirmarVentaRequest{})
	assert.Equal(t, apierror.KindEmptyCart, apierror.KindOf(err))
	_, err = svc.Confirmar(context.Background(), "ana", nil, dto.ConfirmarVentaRequest{})
	assert.Equal(t, apierror.KindEmptyCart, apierror.KindOf(err))

	assert.Zero(t, f.count(t, &model.Boleta{}))
}

func TestConfirmar_FacturaNeedsCustomer(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(f.ventas, f.productos, nil)
	ctx := context.Background()
	c := f.filledCart(t)

	_, err := svc.Confirmar(ctx, "ana", c, dto.ConfirmarVentaRequest{TipoDocumento: model.DocumentoFactura, ClienteRUT: "11.111.111-1"})
	assert.Equal(t, apierror.KindMissingCustomerInfo, apierror.KindOf(err))
	assert.False(t, c.IsEmpty(), "cart survives a rejected commit")

	_, err = svc.Confirmar(ctx, "ana", c, dto.ConfirmarVentaRequest{TipoDocumento: "ticket"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Zero(t, f.count(t, &model.Boleta{}))

	b, err := svc.Confirmar(ctx, "ana", c, dto.ConfirmarVentaRequest{
		TipoDocumento: model.DocumentoFactura,
		ClienteRUT:    "11.111.111-1",
		ClienteNombre: "Comercial Sur",
	})
	require.NoError(t, err)
	require.NotNil(t, b.ClienteNombre)
	assert.Equal(t, "Comercial Sur", *b.ClienteNombre)
}

func TestConfirmar_FailureRollsBackEverything(t *testing.T) {
	f := newVentaFixture(t)
	failing := &failingProductoRepo{ProductoRepository: f.productos, failOn: 2}
	svc := service.NewVentaService(f.ventas, failing, nil)
	c := f.filledCart(t)

	_, err := svc.Confirmar(context.Background(), "ana", c, dto.ConfirmarVentaRequest{})
	require.Error(t, err)
	assert.Equal(t, apierror.KindPersistence, apierror.KindOf(err))

	assert.Zero(t, f.count(t, &model.Boleta{}))
	assert.Zero(t, f.count(t, &model.DetalleVenta{}))
	assert.Equal(t, 5, f.stock(t, f.te.ID), "first decrement rolled back")
	assert.Equal(t, 10, f.stock(t, f.pan.ID))
	assert.Equal(t, 2, c.Len(), "cart kept for retry")
}

func TestDecrementStockTx_RejectsNonPositiveQuantity(t *testing.T) {
	f := newVentaFixture(t)
	ctx := context.Background()

	for _, qty := range []int{0, -3, math.MinInt} {
		ok, err := f.productos.DecrementStockTx(ctx, f.db, f.te.ID, qty)
		assert.ErrorIs(t, err, repository.ErrCantidadNoPositiva, "qty %d", qty)
		assert.False(t, ok)
	}

	ok, err := f.productos.DecrementStockTx(ctx, f.db, f.te.ID, math.MaxInt)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 5, f.stock(t, f.te.ID))
}

func TestConfirmar_DriverErrorsAreReportedAsPersistence(t *testing.T) {
	for _, cause := range []error{gorm.ErrDuplicatedKey, gorm.ErrRecordNotFound, repository.ErrCantidadNoPositiva} {
		t.Run(cause.Error(), func(t *testing.T) {
			f := newVentaFixture(t)
			failing := &failingProductoRepo{ProductoRepository: f.productos, failOn: 1, err: cause}
			svc := service.NewVentaService(f.ventas, failing, nil)

			_, err := svc.Confirmar(context.Background(), "ana", f.filledCart(t), dto.ConfirmarVentaRequest{})
			assert.Equal(t, apierror.KindPersistence, apierror.KindOf(err))
			assert.ErrorIs(t, err, cause)
			assert.Zero(t, f.count(t, &model.Boleta{}))
		})
	}
}

func TestConfirmar_StockGuardAtCommit(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(f.ventas, f.productos, nil)
	c := f.filledCart(t)

	// Another terminal sold Pan after this cart took its snapshot
	require.NoError(t, f.db.Model(&model.Producto{}).Where("id = ?", f.pan.ID).Update("stock", 1).Error)

	_, err := svc.Confirmar(context.Background(), "ana", c, dto.ConfirmarVentaRequest{})
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))

	assert.Zero(t, f.count(t, &model.Boleta{}))
	assert.Equal(t, 5, f.stock(t, f.te.ID))
	assert.Equal(t, 1, f.stock(t, f.pan.ID))
}

// ── Tests: Historial ─────────────────────────────────────────────────────────

func seedBoleta(t *testing.T, f *ventaFixture, vendedor string, fecha time.Time, p model.Producto, qty int) {
	t.Helper()
	sub := p.Precio.Mul(decimal.NewFromInt(int64(qty)))
	b := model.Boleta{
		Neto: sub, IVA: decimal.Zero, Total: sub,
		Fecha: fecha, VendedorUsuario: vendedor, TipoDocumento: model.DocumentoBoleta,
		Detalles: []model.DetalleVenta{{ProductoID: p.ID, Cantidad: qty, PrecioUnitario: p.Precio, Subtotal: sub}},
	}
	require.NoError(t, f.db.Create(&b).Error)
}

func TestHistorial_Filters(t *testing.T) {
	f := newVentaFixture(t)
	svc := service.NewVentaService(f.ventas, f.productos, nil)
	ctx := context.Background()

	day := func(d, h int) time.Time { return time.Date(2024, time.March, d, h, 0, 0, 0, time.Local) }
	seedBoleta(t, f, "ana", day(1, 10), f.te, 1)
	seedBoleta(t, f, "beto", day(2, 23), f.pan, 2)
	seedBoleta(t, f, "ana", day(3, 9), f.pan, 1)

	all, err := svc.Historial(ctx, dto.HistorialFilter{Vendedor: dto.TodosLosVendedores})
	require.NoError(t, err)
	require.Len(t, all.Data, 3)
	assert.Equal(t, "2024-03-03 09:00", all.Data[0].Fecha, "newest first")
	assert.Equal(t, 3, all.Resumen.NumVentas)
	assert.True(t, decimal.NewFromInt(3500).Equal(all.Resumen.Total))

	// End date is inclusive of the whole day
	rango, err := svc.Historial(ctx, dto.HistorialFilter{FechaInicio: "2024-03-02", FechaFin: "2024-03-02"})
	require.NoError(t, err)
	require.Len(t, rango.Data, 1)
	assert.Equal(t, "beto", rango.Data[0].Vendedor)
	assert.Equal(t, 2, rango.Data[0].Cantidad)

	ana, err := svc.Historial(ctx, dto.HistorialFilter{Vendedor: "ana"})
	require.NoError(t, err)
	assert.Len(t, ana.Data, 2)

	pan, err := svc.Historial(ctx, dto.HistorialFilter{Producto: "PA"})
	require.NoError(t, err)
	require.Len(t, pan.Data, 2)
	assert.Equal(t, "Pan", pan.Data[0].Productos)

	_, err = svc.Historial(ctx, dto.HistorialFilter{FechaInicio: "03/01/2024"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	_, err = svc.Historial(ctx, dto.HistorialFilter{FechaInicio: "2024-03-05", FechaFin: "2024-03-01"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	vendedores, err := svc.Vendedores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "beto"}, vendedores)
}
