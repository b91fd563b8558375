package service_test

import (
	"context"
	"regexp"
	"testing"

	"bazarpos/internal/apierror"
	"bazarpos/internal/codegen"
	"bazarpos/internal/dto"
	"bazarpos/internal/infra/infratest"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"
	"bazarpos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codigoRe = regexp.MustCompile(`^[A-Z0-9]{1,3}-\d{4}$`)

func newProductoService(t *testing.T) (service.ProductoService, repository.ProductoRepository) {
	t.Helper()
	repo := repository.NewProductoRepository(infratest.NewTestDB(t))
	return service.NewProductoService(repo, codegen.New()), repo
}

func form(nombre, precio, stock string) dto.GuardarProductoRequest {
	return dto.GuardarProductoRequest{Nombre: nombre, Precio: precio, Stock: stock}
}

func TestCrearProducto_AssignsCode(t *testing.T) {
	svc, _ := newProductoService(t)

	p, err := svc.Crear(context.Background(), form("Café", "30000", "10"))
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Regexp(t, codigoRe, p.Codigo)
	assert.Equal(t, "CAF", p.Codigo[:3])
	assert.Equal(t, "CLP$ 30.000", p.PrecioFmt)
	assert.Equal(t, model.EstadoActivo, p.Estado)
}

func TestCrearProducto_Validation(t *testing.T) {
	svc, _ := newProductoService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		req    dto.GuardarProductoRequest
		detail string
	}{
		{"missing field", form("Té", "", "1"), "Todos los campos son obligatorios."},
		{"blank name", form("   ", "100", "1"), "Todos los campos son obligatorios."},
		{"decimal price", form("Té", "10.5", "1"), "Precio y Stock deben ser números enteros."},
		{"text stock", form("Té", "100", "muchos"), "Precio y Stock deben ser números enteros."},
		{"negative", form("Té", "-1", "1"), "Precio y Stock no pueden ser negativos."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Crear(ctx, tc.req)
			e, ok := apierror.As(err)
			require.True(t, ok)
			assert.Equal(t, apierror.KindValidation, e.Kind)
			assert.Equal(t, tc.detail, e.Detail)
		})
	}

	list, err := svc.Listar(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCrearProducto_DuplicateName(t *testing.T) {
	svc, _ := newProductoService(t)
	ctx := context.Background()

	_, err := svc.Crear(ctx, form("Té", "500", "3"))
	require.NoError(t, err)
	_, err = svc.Crear(ctx, form("Té", "700", "1"))
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestActualizarProducto(t *testing.T) {
	svc, _ := newProductoService(t)
	ctx := context.Background()
	te, err := svc.Crear(ctx, form("Té", "500", "3"))
	require.NoError(t, err)
	_, err = svc.Crear(ctx, form("Pan", "900", "8"))
	require.NoError(t, err)

	updated, err := svc.Actualizar(ctx, te.ID, form("Té verde", "550", "4"))
	require.NoError(t, err)
	assert.Equal(t, "Té verde", updated.Nombre)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, te.Codigo, updated.Codigo, "code survives edits")

	// Same name as itself is fine, another product's name is not
	_, err = svc.Actualizar(ctx, te.ID, form("Té verde", "600", "4"))
	assert.NoError(t, err)
	_, err = svc.Actualizar(ctx, te.ID, form("Pan", "600", "4"))
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))

	_, err = svc.Actualizar(ctx, 999, form("Otro", "1", "1"))
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestArchivarProducto_HidesFromCatalog(t *testing.T) {
	svc, _ := newProductoService(t)
	ctx := context.Background()
	te, _ := svc.Crear(ctx, form("Té", "500", "3"))
	_, _ = svc.Crear(ctx, form("Pan", "900", "8"))
	_, _ = svc.Crear(ctx, form("Sal", "300", "0"))

	vendibles, err := svc.Vendibles(ctx)
	require.NoError(t, err)
	require.Len(t, vendibles, 2, "out-of-stock products are not sellable")

	require.NoError(t, svc.Archivar(ctx, te.ID))

	list, err := svc.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pan", list[0].Nombre)
	assert.Equal(t, "Sal", list[1].Nombre)

	vendibles, err = svc.Vendibles(ctx)
	require.NoError(t, err)
	require.Len(t, vendibles, 1)
	assert.Equal(t, "Pan", vendibles[0].Nombre)

	archived, err := svc.ObtenerPorID(ctx, te.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoInactivo, archived.Estado)

	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(svc.Archivar(ctx, 999)))
}

func TestBackfillCodigos(t *testing.T) {
	svc, repo := newProductoService(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &model.Producto{Nombre: "Azúcar", Stock: 1, Estado: model.EstadoActivo}))
	require.NoError(t, repo.Create(ctx, &model.Producto{Nombre: "Harina", Stock: 1, Estado: model.EstadoActivo}))

	n, err := svc.BackfillCodigos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := svc.Listar(ctx)
	require.NoError(t, err)
	for _, p := range list {
		assert.Regexp(t, codigoRe, p.Codigo)
	}
	assert.Equal(t, "AZU", list[0].Codigo[:3])

	n, err = svc.BackfillCodigos(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
