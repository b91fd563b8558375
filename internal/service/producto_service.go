package service

import (
	"context"
	"strconv"
	"strings"

	"bazarpos/internal/apierror"
	"bazarpos/internal/cart"
	"bazarpos/internal/codegen"
	"bazarpos/internal/dto"
	"bazarpos/internal/model"
	"bazarpos/internal/money"
	"bazarpos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Listar(ctx context.Context) ([]dto.ProductoResponse, error)
	// Vendibles snapshots the products the sale screen can offer.
	Vendibles(ctx context.Context) ([]cart.Product, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	Crear(ctx context.Context, req dto.GuardarProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.GuardarProductoRequest) (*dto.ProductoResponse, error)
	Archivar(ctx context.Context, id uint) error
	// BackfillCodigos assigns a code to every product created before codes existed.
	BackfillCodigos(ctx context.Context) (int, error)
}

type productoService struct {
	repo  repository.ProductoRepository
	codes *codegen.Generator
}

func NewProductoService(repo repository.ProductoRepository, codes *codegen.Generator) ProductoService {
	return &productoService{repo: repo, codes: codes}
}

func toProductoResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:        p.ID,
		Codigo:    p.CodigoOrEmpty(),
		Nombre:    p.Nombre,
		Precio:    p.Precio,
		PrecioFmt: money.FormatCLP(p.Precio),
		Stock:     p.Stock,
		Estado:    p.Estado,
	}
}

// productoForm is a validated product form.
type productoForm struct {
	nombre string
	precio decimal.Decimal
	stock  int
}

func parseProductoForm(req dto.GuardarProductoRequest) (productoForm, error) {
	nombre := strings.TrimSpace(req.Nombre)
	precioStr, stockStr := strings.TrimSpace(req.Precio), strings.TrimSpace(req.Stock)
	if nombre == "" || precioStr == "" || stockStr == "" {
		return productoForm{}, apierror.E(apierror.KindValidation, "Todos los campos son obligatorios.")
	}
	precio, errP := strconv.Atoi(precioStr)
	stock, errS := strconv.Atoi(stockStr)
	if errP != nil || errS != nil {
		return productoForm{}, apierror.E(apierror.KindValidation, "Precio y Stock deben ser números enteros.")
	}
	if precio < 0 || stock < 0 {
		return productoForm{}, apierror.E(apierror.KindValidation, "Precio y Stock no pueden ser negativos.")
	}
	return productoForm{nombre: nombre, precio: decimal.NewFromInt(int64(precio)), stock: stock}, nil
}

func (s *productoService) Listar(ctx context.Context) ([]dto.ProductoResponse, error) {
	list, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, dbError("No se pudo listar productos", err)
	}
	result := make([]dto.ProductoResponse, 0, len(list))
	for i := range list {
		result = append(result, toProductoResponse(&list[i]))
	}
	return result, nil
}

func (s *productoService) Vendibles(ctx context.Context) ([]cart.Product, error) {
	list, err := s.repo.ListVendibles(ctx)
	if err != nil {
		return nil, dbError("No se pudo cargar los productos disponibles", err)
	}
	result := make([]cart.Product, 0, len(list))
	for _, p := range list {
		result = append(result, cart.Product{ID: p.ID, Nombre: p.Nombre, Precio: p.Precio, Stock: p.Stock})
	}
	return result, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError("Producto no encontrado", err)
	}
	resp := toProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Crear(ctx context.Context, req dto.GuardarProductoRequest) (*dto.ProductoResponse, error) {
	form, err := parseProductoForm(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkNombreLibre(ctx, form.nombre, 0); err != nil {
		return nil, err
	}

	codigo, err := s.codes.Unique(ctx, form.nombre, s.repo)
	if err != nil {
		return nil, dbError("No se pudo generar el código del producto", err)
	}

	p := &model.Producto{
		Codigo: &codigo,
		Nombre: form.nombre,
		Precio: form.precio,
		Stock:  form.stock,
		Estado: model.EstadoActivo,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, dbError("No se pudo guardar el producto", err)
	}
	log.Info().Uint("producto_id", p.ID).Str("codigo", codigo).Msg("producto agregado")
	resp := toProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uint, req dto.GuardarProductoRequest) (*dto.ProductoResponse, error) {
	form, err := parseProductoForm(req)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError("Producto no encontrado", err)
	}
	if form.nombre != p.Nombre {
		if err := s.checkNombreLibre(ctx, form.nombre, id); err != nil {
			return nil, err
		}
	}

	p.Nombre, p.Precio, p.Stock = form.nombre, form.precio, form.stock
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, dbError("No se pudo guardar el producto", err)
	}
	log.Info().Uint("producto_id", p.ID).Msg("producto actualizado")
	resp := toProductoResponse(p)
	return &resp, nil
}

// checkNombreLibre fails with Conflict when another product already uses nombre.
func (s *productoService) checkNombreLibre(ctx context.Context, nombre string, selfID uint) error {
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err != nil {
		if notFound(err) {
			return nil
		}
		return dbError("No se pudo guardar el producto", err)
	}
	if existing.ID != selfID {
		return apierror.E(apierror.KindConflict, "Ya existe un producto con ese nombre.")
	}
	return nil
}

func (s *productoService) Archivar(ctx context.Context, id uint) error {
	if err := s.repo.Archivar(ctx, id); err != nil {
		return dbError("Producto no encontrado", err)
	}
	log.Info().Uint("producto_id", id).Msg("producto archivado")
	return nil
}

func (s *productoService) BackfillCodigos(ctx context.Context) (int, error) {
	pendientes, err := s.repo.ListSinCodigo(ctx)
	if err != nil {
		return 0, dbError("No se pudo listar productos sin código", err)
	}
	for _, p := range pendientes {
		codigo, err := s.codes.Unique(ctx, p.Nombre, s.repo)
		if err != nil {
			return 0, dbError("No se pudo generar el código del producto", err)
		}
		if err := s.repo.SetCodigo(ctx, p.ID, codigo); err != nil {
			return 0, dbError("No se pudo asignar el código del producto", err)
		}
	}
	if len(pendientes) > 0 {
		log.Info().Int("productos", len(pendientes)).Msg("códigos de producto asignados")
	}
	return len(pendientes), nil
}
