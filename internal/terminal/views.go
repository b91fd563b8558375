package terminal

import (
	"context"
	"fmt"
	"strconv"

	"bazarpos/internal/apierror"
	"bazarpos/internal/cart"
	"bazarpos/internal/dto"
	"bazarpos/internal/money"
	"bazarpos/internal/session"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// view is a live screen of the terminal. datos returns its view model.
type view interface {
	session.View
	datos() any
}

var titleCase = cases.Title(language.Spanish)

// ── Login ────────────────────────────────────────────────────────────────────

type loginView struct{ tienda string }

func (v *loginView) ID() session.ViewID { return session.ViewLogin }
func (v *loginView) Close()             {}
func (v *loginView) datos() any         { return dto.LoginVista{Tienda: v.tienda} }

// ── Dashboard ────────────────────────────────────────────────────────────────

type dashboardView struct {
	tienda   string
	identity session.Identity
}

func (v *dashboardView) ID() session.ViewID { return session.ViewDashboard }
func (v *dashboardView) Close()             {}

func (v *dashboardView) datos() any {
	acciones := []dto.AccionResponse{
		{Vista: string(session.ViewVenta), Etiqueta: "Realizar venta"},
	}
	if v.identity.EsAdmin() {
		acciones = append(acciones,
			dto.AccionResponse{Vista: string(session.ViewProductos), Etiqueta: "Gestionar productos"},
			dto.AccionResponse{Vista: string(session.ViewUsuarios), Etiqueta: "Gestionar usuarios"},
			dto.AccionResponse{Vista: string(session.ViewHistorial), Etiqueta: "Historial de ventas"},
		)
	} else {
		acciones = append(acciones,
			dto.AccionResponse{Vista: string(session.ViewProductos), Etiqueta: "Ver productos"})
	}
	return dto.DashboardVista{
		Bienvenida: "Bienvenido, " + titleCase.String(v.identity.Rol),
		Tienda:     v.tienda,
		Acciones:   acciones,
	}
}

// ── Productos ────────────────────────────────────────────────────────────────

type productosView struct {
	productos   []dto.ProductoResponse
	puedeEditar bool
}

func (v *productosView) ID() session.ViewID { return session.ViewProductos }
func (v *productosView) Close()             { v.productos = nil }

func (v *productosView) datos() any {
	return dto.ProductosVista{Productos: v.productos, PuedeEditar: v.puedeEditar}
}

// ── Formulario de producto ───────────────────────────────────────────────────

const (
	modoAgregar = "agregar"
	modoEditar  = "editar"
)

type formularioView struct {
	modo       string
	producto   *dto.ProductoResponse
	existentes []dto.ProductoResponse
}

func (v *formularioView) ID() session.ViewID { return session.ViewFormularioProducto }
func (v *formularioView) Close()             { v.producto, v.existentes = nil, nil }

func (v *formularioView) datos() any {
	return dto.FormularioProductoVista{Modo: v.modo, Producto: v.producto, Existentes: v.existentes}
}

// formularioParams reads modo (default agregar) and, for editar, the product id.
func formularioParams(p session.Params) (string, uint, error) {
	modo := p["modo"]
	switch modo {
	case "", modoAgregar:
		return modoAgregar, 0, nil
	case modoEditar:
		id, err := strconv.ParseUint(p["id"], 10, 64)
		if err != nil || id == 0 {
			return "", 0, apierror.E(apierror.KindValidation, "Debe indicar el producto a editar.")
		}
		return modoEditar, uint(id), nil
	default:
		return "", 0, apierror.E(apierror.KindValidation, "Modo inválido (agregar | editar).")
	}
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type usuariosView struct{ usuarios []dto.UsuarioResponse }

func (v *usuariosView) ID() session.ViewID { return session.ViewUsuarios }
func (v *usuariosView) Close()             { v.usuarios = nil }
func (v *usuariosView) datos() any         { return dto.UsuariosVista{Usuarios: v.usuarios} }

// ── Venta ────────────────────────────────────────────────────────────────────

// ventaView owns the cart. Stock checks run against the snapshot taken when
// the view was built; Close discards the cart.
type ventaView struct {
	snapshot []cart.Product
	byID     map[uint]cart.Product
	cart     *cart.Cart
}

func newVentaView(snapshot []cart.Product, c *cart.Cart) *ventaView {
	byID := make(map[uint]cart.Product, len(snapshot))
	for _, p := range snapshot {
		byID[p.ID] = p
	}
	return &ventaView{snapshot: snapshot, byID: byID, cart: c}
}

func (v *ventaView) ID() session.ViewID { return session.ViewVenta }

func (v *ventaView) Close() {
	if v.cart != nil {
		v.cart.Clear()
	}
	v.snapshot, v.byID = nil, nil
}

func (v *ventaView) agregar(productoID uint, rawCantidad string) error {
	p, ok := v.byID[productoID]
	if !ok {
		return apierror.E(apierror.KindNotFound, "Producto no disponible para la venta.")
	}
	q, err := cart.ParseQuantity(rawCantidad)
	if err != nil {
		return err
	}
	return v.cart.AddLine(p, q)
}

func (v *ventaView) datos() any {
	disponibles := make([]dto.ProductoVendible, 0, len(v.snapshot))
	for _, p := range v.snapshot {
		libre := p.Stock - v.cart.Reserved(p.ID)
		disponibles = append(disponibles, dto.ProductoVendible{
			ID:         p.ID,
			Etiqueta:   fmt.Sprintf("%s (Stock: %d)", p.Nombre, libre),
			Nombre:     p.Nombre,
			Precio:     p.Precio,
			PrecioFmt:  money.FormatCLP(p.Precio),
			Stock:      p.Stock,
			Disponible: libre,
		})
	}

	lines := v.cart.Lines()
	lineas := make([]dto.LineaCarritoResponse, 0, len(lines))
	for _, l := range lines {
		lineas = append(lineas, dto.LineaCarritoResponse{
			ProductoID:     l.ProductoID,
			Nombre:         l.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.Subtotal,
			PrecioFmt:      money.FormatCLP(l.PrecioUnitario),
			SubtotalFmt:    money.FormatCLP(l.Subtotal),
		})
	}

	t := v.cart.Totals()
	return dto.VentaVista{
		Disponibles: disponibles,
		Lineas:      lineas,
		Totales: dto.TotalesResponse{
			Neto: t.Neto, IVA: t.IVA, Total: t.Total,
			NetoFmt:  money.FormatCLP(t.Neto),
			IVAFmt:   money.FormatCLP(t.IVA),
			TotalFmt: money.FormatCLP(t.Total),
		},
		TasaIVA: v.cart.TaxRate().String(),
	}
}

// ── Historial ────────────────────────────────────────────────────────────────

type historialView struct {
	filtro     dto.HistorialFilter
	vendedores []string
	resultados dto.HistorialResponse
}

func (v *historialView) ID() session.ViewID { return session.ViewHistorial }
func (v *historialView) Close()             { v.vendedores, v.resultados = nil, dto.HistorialResponse{} }

func (v *historialView) datos() any {
	return dto.HistorialVista{Filtro: v.filtro, Vendedores: v.vendedores, Resultados: v.resultados}
}

// ── Builders ─────────────────────────────────────────────────────────────────

func (t *Terminal) registerViews() {
	t.nav.Register(session.ViewLogin, session.Public, func(context.Context, session.Params) (view, error) {
		return &loginView{tienda: t.opts.StoreName}, nil
	})

	t.nav.Register(session.ViewDashboard, session.Authenticated, func(context.Context, session.Params) (view, error) {
		ident, _ := t.session.Current()
		return &dashboardView{tienda: t.opts.StoreName, identity: ident}, nil
	})

	t.nav.Register(session.ViewProductos, session.Authenticated, func(ctx context.Context, _ session.Params) (view, error) {
		list, err := t.svc.Productos.Listar(ctx)
		if err != nil {
			return nil, err
		}
		ident, _ := t.session.Current()
		return &productosView{productos: list, puedeEditar: ident.EsAdmin()}, nil
	})

	t.nav.Register(session.ViewFormularioProducto, session.AdminOnly, func(ctx context.Context, p session.Params) (view, error) {
		modo, id, err := formularioParams(p)
		if err != nil {
			return nil, err
		}
		v := &formularioView{modo: modo}
		if modo == modoEditar {
			if v.producto, err = t.svc.Productos.ObtenerPorID(ctx, id); err != nil {
				return nil, err
			}
		}
		if v.existentes, err = t.svc.Productos.Listar(ctx); err != nil {
			return nil, err
		}
		return v, nil
	})

	t.nav.Register(session.ViewUsuarios, session.AdminOnly, func(ctx context.Context, _ session.Params) (view, error) {
		users, err := t.svc.Auth.ListarUsuarios(ctx)
		if err != nil {
			return nil, err
		}
		return &usuariosView{usuarios: users}, nil
	})

	t.nav.Register(session.ViewVenta, session.Authenticated, func(ctx context.Context, _ session.Params) (view, error) {
		snapshot, err := t.svc.Productos.Vendibles(ctx)
		if err != nil {
			return nil, err
		}
		return newVentaView(snapshot, cart.New(t.opts.TaxRate)), nil
	})

	t.nav.Register(session.ViewHistorial, session.AdminOnly, func(ctx context.Context, _ session.Params) (view, error) {
		v := &historialView{filtro: dto.HistorialFilter{Vendedor: dto.TodosLosVendedores}}
		if err := t.buscar(ctx, v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// buscar reloads the seller list and runs the view's current filter.
func (t *Terminal) buscar(ctx context.Context, v *historialView) error {
	vendedores, err := t.svc.Ventas.Vendedores(ctx)
	if err != nil {
		return err
	}
	res, err := t.svc.Ventas.Historial(ctx, v.filtro)
	if err != nil {
		return err
	}
	v.vendedores = append([]string{dto.TodosLosVendedores}, vendedores...)
	v.resultados = *res
	return nil
}
