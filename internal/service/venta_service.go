package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bazarpos/internal/apierror"
	"bazarpos/internal/cart"
	"bazarpos/internal/dto"
	"bazarpos/internal/model"
	"bazarpos/internal/money"
	"bazarpos/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComprobanteDispatcher queues receipt rendering after a commit.
type ComprobanteDispatcher interface {
	EnqueueComprobante(ctx context.Context, boletaID uint) error
}

type VentaService interface {
	// Confirmar commits the cart as one boleta and clears it on success.
	Confirmar(ctx context.Context, vendedor string, c *cart.Cart, req dto.ConfirmarVentaRequest) (*dto.BoletaResponse, error)
	ObtenerBoleta(ctx context.Context, id uint) (*model.Boleta, error)
	Historial(ctx context.Context, f dto.HistorialFilter) (*dto.HistorialResponse, error)
	Vendedores(ctx context.Context) ([]string, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	dispatcher   ComprobanteDispatcher
	now          func() time.Time
}

// NewVentaService wires the sale commit. dispatcher may be nil when the
// receipt queue is disabled.
func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	dispatcher ComprobanteDispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

// ── Confirmar ────────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. Reject an empty cart and a factura without customer data (no DB writes)
//   2. BEGIN TX: insert boleta + one detalle per line
//   3. Per line: conditional stock decrement, abort if stock ran out meanwhile
//   4. COMMIT, clear the cart
//   5. (async) enqueue the receipt job if the queue is enabled

func (s *ventaService) Confirmar(ctx context.Context, vendedor string, c *cart.Cart, req dto.ConfirmarVentaRequest) (*dto.BoletaResponse, error) {
	if c == nil || c.IsEmpty() {
		return nil, cart.ErrEmptyCart
	}

	tipo := req.TipoDocumento
	if tipo == "" {
		tipo = model.DocumentoBoleta
	}
	var rut, nombre *string
	switch tipo {
	case model.DocumentoBoleta:
	case model.DocumentoFactura:
		r, n := strings.TrimSpace(req.ClienteRUT), strings.TrimSpace(req.ClienteNombre)
		if r == "" || n == "" {
			return nil, apierror.E(apierror.KindMissingCustomerInfo, "Para emitir factura debe ingresar RUT y nombre del cliente.")
		}
		rut, nombre = &r, &n
	default:
		return nil, apierror.E(apierror.KindValidation, "Tipo de documento inválido (boleta | factura).")
	}

	lines := c.Lines()
	totals := c.Totals()
	boleta := model.Boleta{
		Neto:            totals.Neto,
		IVA:             totals.IVA,
		Total:           totals.Total,
		Fecha:           s.now(),
		VendedorUsuario: vendedor,
		TipoDocumento:   tipo,
		ClienteRUT:      rut,
		ClienteNombre:   nombre,
	}
	for _, l := range lines {
		boleta.Detalles = append(boleta.Detalles, model.DetalleVenta{
			ProductoID:     l.ProductoID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.Subtotal,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(ctx, tx, &boleta); err != nil {
			return err
		}
		for _, l := range lines {
			ok, err := s.productoRepo.DecrementStockTx(ctx, tx, l.ProductoID, l.Cantidad)
			if err != nil {
				return fmt.Errorf("descontando stock de %s: %w", l.Nombre, err)
			}
			if !ok {
				return apierror.E(apierror.KindInsufficientStock,
					fmt.Sprintf("No hay suficiente stock de %s para completar la venta.", l.Nombre))
			}
		}
		return nil
	})
	if txErr != nil {
		log.Warn().Err(txErr).Str("vendedor", vendedor).Int("lineas", len(lines)).Msg("venta revertida")
		return nil, commitError("No se pudo completar la venta", txErr)
	}

	c.Clear()
	log.Info().
		Uint("boleta_id", boleta.ID).
		Str("vendedor", vendedor).
		Str("total", boleta.Total.StringFixed(2)).
		Msg("venta registrada")

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueComprobante(ctx, boleta.ID); err != nil {
			log.Warn().Err(err).Uint("boleta_id", boleta.ID).Msg("no se pudo encolar el comprobante")
		}
	}

	nombres := make(map[uint]string, len(lines))
	for _, l := range lines {
		nombres[l.ProductoID] = l.Nombre
	}
	resp := toBoletaResponse(&boleta, nombres)
	return &resp, nil
}

func (s *ventaService) ObtenerBoleta(ctx context.Context, id uint) (*model.Boleta, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError("Boleta no encontrada", err)
	}
	return b, nil
}

func (s *ventaService) Vendedores(ctx context.Context) ([]string, error) {
	v, err := s.repo.Vendedores(ctx)
	if err != nil {
		return nil, dbError("No se pudo cargar los vendedores", err)
	}
	return v, nil
}

const fechaLayout = "2006-01-02"

// historialQuery turns the filter form into a repository query. Dates are
// local whole days, both ends inclusive.
func historialQuery(f dto.HistorialFilter) (repository.HistorialQuery, error) {
	var q repository.HistorialQuery
	invalid := apierror.E(apierror.KindValidation, "Formato de fecha inválido (use AAAA-MM-DD).")

	if s := strings.TrimSpace(f.FechaInicio); s != "" {
		d, err := time.ParseInLocation(fechaLayout, s, time.Local)
		if err != nil {
			return q, invalid
		}
		q.Desde = &d
	}
	if s := strings.TrimSpace(f.FechaFin); s != "" {
		d, err := time.ParseInLocation(fechaLayout, s, time.Local)
		if err != nil {
			return q, invalid
		}
		next := d.AddDate(0, 0, 1)
		q.Hasta = &next
	}
	if q.Desde != nil && q.Hasta != nil && !q.Desde.Before(*q.Hasta) {
		return q, apierror.E(apierror.KindValidation, "La fecha de inicio no puede ser posterior a la fecha de fin.")
	}

	if v := strings.TrimSpace(f.Vendedor); v != dto.TodosLosVendedores {
		q.Vendedor = v
	}
	q.Producto = strings.TrimSpace(f.Producto)
	return q, nil
}

func (s *ventaService) Historial(ctx context.Context, f dto.HistorialFilter) (*dto.HistorialResponse, error) {
	q, err := historialQuery(f)
	if err != nil {
		return nil, err
	}
	boletas, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, dbError("No se pudo cargar el historial", err)
	}

	resp := &dto.HistorialResponse{Data: make([]dto.HistorialItem, 0, len(boletas))}
	neto, iva, total := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range boletas {
		b := &boletas[i]
		resp.Data = append(resp.Data, toHistorialItem(b))
		neto, iva, total = neto.Add(b.Neto), iva.Add(b.IVA), total.Add(b.Total)
	}
	resp.Resumen = dto.HistorialResumen{
		NumVentas: len(boletas),
		Neto:      neto,
		IVA:       iva,
		Total:     total,
		TotalFmt:  money.FormatCLP(total),
	}
	return resp, nil
}

func toHistorialItem(b *model.Boleta) dto.HistorialItem {
	nombres := make([]string, 0, len(b.Detalles))
	cantidad := 0
	for _, d := range b.Detalles {
		cantidad += d.Cantidad
		if d.Producto != nil {
			nombres = append(nombres, d.Producto.Nombre)
		}
	}
	vendedor := b.VendedorUsuario
	if vendedor == "" {
		vendedor = "N/A"
	}
	return dto.HistorialItem{
		BoletaID:      b.ID,
		Fecha:         b.Fecha.Format("2006-01-02 15:04"),
		Vendedor:      vendedor,
		Productos:     strings.Join(nombres, ", "),
		Cantidad:      cantidad,
		TipoDocumento: b.TipoDocumento,
		Neto:          b.Neto,
		IVA:           b.IVA,
		Total:         b.Total,
		TotalFmt:      money.FormatCLP(b.Total),
	}
}

// toBoletaResponse maps a boleta; nombres fills product names when the
// detalles were not loaded with their Producto.
func toBoletaResponse(b *model.Boleta, nombres map[uint]string) dto.BoletaResponse {
	resp := dto.BoletaResponse{
		ID:            b.ID,
		Fecha:         b.Fecha.Format(time.RFC3339),
		Vendedor:      b.VendedorUsuario,
		TipoDocumento: b.TipoDocumento,
		ClienteRUT:    b.ClienteRUT,
		ClienteNombre: b.ClienteNombre,
		Neto:          b.Neto,
		IVA:           b.IVA,
		Total:         b.Total,
		TotalFmt:      money.FormatCLP(b.Total),
		Detalles:      make([]dto.DetalleResponse, 0, len(b.Detalles)),
	}
	for _, d := range b.Detalles {
		nombre := nombres[d.ProductoID]
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		resp.Detalles = append(resp.Detalles, dto.DetalleResponse{
			ProductoID:     d.ProductoID,
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	return resp
}
