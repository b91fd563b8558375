// Package terminal is the single POS terminal: one session, one current view
// and the inactivity watchdog, driven by input events and view actions.
// Every entry point runs under one mutex, so views, the cart and the session
// are touched by one goroutine at a time.
package terminal

import (
	"context"
	"sync"
	"time"

	"bazarpos/internal/apierror"
	"bazarpos/internal/dto"
	"bazarpos/internal/service"
	"bazarpos/internal/session"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AvisoExpirada is shown on the login screen after an inactivity logout.
const AvisoExpirada = "Tu sesión ha expirado por inactividad."

var errVistaIncorrecta = apierror.E(apierror.KindConflict, "La acción no está disponible en la vista actual.")

// Services are the collaborators the views call into.
type Services struct {
	Auth      service.AuthService
	Productos service.ProductoService
	Ventas    service.VentaService
}

type Options struct {
	StoreName string
	TaxRate   decimal.Decimal
	Timeout   time.Duration
	Clock     clock.Clock
}

type Terminal struct {
	mu       sync.Mutex
	opts     Options
	svc      Services
	session  *session.Session
	watchdog *session.Watchdog
	nav      *session.Navigator[view]
	aviso    string // shown once on the next rendered view
}

// New builds the terminal on its login screen.
func New(sess *session.Session, svc Services, opts Options) *Terminal {
	t := &Terminal{opts: opts, svc: svc, session: sess}
	t.watchdog = session.NewWatchdog(opts.Clock, opts.Timeout, t.expireLocked, session.WithLocker(&t.mu))
	t.nav = session.NewNavigator[view](sess, t.watchdog)
	t.registerViews()

	if err := t.nav.NavigateTo(context.Background(), session.ViewLogin, nil); err != nil {
		// The login view has no dependencies; this cannot fail.
		panic(err)
	}
	return t
}

// expireLocked runs on the watchdog's goroutine with t.mu held.
func (t *Terminal) expireLocked() {
	ident, ok := t.session.Current()
	if !ok {
		return
	}
	log.Info().Str("usuario", ident.Usuario).Dur("timeout", t.watchdog.Timeout()).Msg("sesión expirada por inactividad")
	t.session.Clear()
	t.aviso = AvisoExpirada
	if err := t.nav.NavigateTo(context.Background(), session.ViewLogin, nil); err != nil {
		log.Error().Err(err).Msg("no se pudo volver al login tras la expiración")
	}
}

// ── Session ──────────────────────────────────────────────────────────────────

// SessionActive reports whether sessionID is the live login. Tokens from a
// previous login, logout or expiry are no longer active.
func (t *Terminal) SessionActive(sessionID string) bool {
	return t.session.IsCurrent(sessionID)
}

// Login checks the credentials, replaces any live session and opens the
// dashboard. On failure the terminal stays where it was.
func (t *Terminal) Login(ctx context.Context, req dto.LoginRequest) (session.Identity, dto.UsuarioResponse, dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	user, err := t.svc.Auth.Authenticate(ctx, req)
	if err != nil {
		log.Debug().Str("usuario", req.Usuario).Err(err).Msg("login rechazado")
		return session.Identity{}, dto.UsuarioResponse{}, dto.VistaResponse{}, err
	}

	if prev, ok := t.session.Current(); ok {
		log.Info().Str("usuario", prev.Usuario).Msg("sesión reemplazada por un nuevo login")
	}
	ident := t.session.Set(user.Usuario, user.Rol)
	t.watchdog.Arm()
	if err := t.nav.NavigateTo(ctx, session.ViewDashboard, nil); err != nil {
		t.session.Clear()
		t.watchdog.Disarm()
		return session.Identity{}, dto.UsuarioResponse{}, dto.VistaResponse{}, err
	}
	log.Info().Str("usuario", ident.Usuario).Str("rol", ident.Rol).Msg("login exitoso")
	return ident, *user, t.renderLocked(), nil
}

// Logout ends the session and returns to login.
func (t *Terminal) Logout(ctx context.Context) dto.VistaResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ident, ok := t.session.Current(); ok {
		log.Info().Str("usuario", ident.Usuario).Msg("logout")
	}
	t.watchdog.Disarm()
	t.session.Clear()
	if err := t.nav.NavigateTo(ctx, session.ViewLogin, nil); err != nil {
		log.Error().Err(err).Msg("no se pudo volver al login")
	}
	return t.renderLocked()
}

// Activity records an input event and restarts the inactivity window.
func (t *Terminal) Activity() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchdog.Activity()
}

// ── Navigation ───────────────────────────────────────────────────────────────

// Navegar switches to the named view. Unknown names leave the terminal as is.
func (t *Terminal) Navegar(ctx context.Context, req dto.NavegarRequest) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.nav.Navigate(ctx, req.Vista, session.Params(req.Params)); err != nil {
		return dto.VistaResponse{}, err
	}
	return t.renderLocked(), nil
}

// Vista renders the current view.
func (t *Terminal) Vista() dto.VistaResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderLocked()
}

func (t *Terminal) renderLocked() dto.VistaResponse {
	resp := dto.VistaResponse{Aviso: t.aviso}
	t.aviso = ""
	if ident, ok := t.session.Current(); ok {
		resp.Usuario, resp.Rol = ident.Usuario, ident.Rol
	}
	if v, ok := t.nav.Current(); ok {
		resp.Vista = string(v.ID())
		resp.Datos = v.datos()
	}
	return resp
}

// current returns the active view as V, or errVistaIncorrecta.
func current[V view](t *Terminal) (V, error) {
	v, _ := t.nav.Current()
	typed, ok := v.(V)
	if !ok {
		var zero V
		return zero, errVistaIncorrecta
	}
	return typed, nil
}

// ── Venta ────────────────────────────────────────────────────────────────────

// AgregarLinea adds a product from the sale screen's snapshot to the cart.
func (t *Terminal) AgregarLinea(ctx context.Context, req dto.AgregarLineaRequest) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := current[*ventaView](t)
	if err != nil {
		return dto.VistaResponse{}, err
	}
	if err := v.agregar(req.ProductoID, req.Cantidad); err != nil {
		return dto.VistaResponse{}, err
	}
	return t.renderLocked(), nil
}

// ConfirmarVenta commits the cart and returns to the dashboard.
func (t *Terminal) ConfirmarVenta(ctx context.Context, req dto.ConfirmarVentaRequest) (*dto.ConfirmarVentaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := current[*ventaView](t)
	if err != nil {
		return nil, err
	}
	ident, _ := t.session.Current()
	boleta, err := t.svc.Ventas.Confirmar(ctx, ident.Usuario, v.cart, req)
	if err != nil {
		return nil, err
	}
	if err := t.nav.NavigateTo(ctx, session.ViewDashboard, nil); err != nil {
		return nil, err
	}
	return &dto.ConfirmarVentaResponse{Boleta: *boleta, Vista: t.renderLocked()}, nil
}

// ── Productos ────────────────────────────────────────────────────────────────

// GuardarProducto submits the product form and returns to the listing.
func (t *Terminal) GuardarProducto(ctx context.Context, req dto.GuardarProductoRequest) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := current[*formularioView](t)
	if err != nil {
		return dto.VistaResponse{}, err
	}
	if v.modo == modoEditar {
		_, err = t.svc.Productos.Actualizar(ctx, v.producto.ID, req)
	} else {
		_, err = t.svc.Productos.Crear(ctx, req)
	}
	if err != nil {
		return dto.VistaResponse{}, err
	}
	if err := t.nav.NavigateTo(ctx, session.ViewProductos, nil); err != nil {
		return dto.VistaResponse{}, err
	}
	return t.renderLocked(), nil
}

// ArchivarProducto archives a product from the listing and refreshes it.
func (t *Terminal) ArchivarProducto(ctx context.Context, id uint) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := current[*productosView](t)
	if err != nil {
		return dto.VistaResponse{}, err
	}
	if !v.puedeEditar {
		return dto.VistaResponse{}, apierror.E(apierror.KindForbidden, "Acceso denegado: se requiere rol admin")
	}
	if err := t.svc.Productos.Archivar(ctx, id); err != nil {
		return dto.VistaResponse{}, err
	}
	if err := t.nav.NavigateTo(ctx, session.ViewProductos, nil); err != nil {
		return dto.VistaResponse{}, err
	}
	return t.renderLocked(), nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

func (t *Terminal) CrearUsuario(ctx context.Context, req dto.GuardarUsuarioRequest) (dto.VistaResponse, error) {
	return t.usuarioAction(ctx, func() error {
		_, err := t.svc.Auth.CrearUsuario(ctx, req)
		return err
	})
}

func (t *Terminal) ActualizarUsuario(ctx context.Context, id uint, req dto.GuardarUsuarioRequest) (dto.VistaResponse, error) {
	return t.usuarioAction(ctx, func() error {
		_, err := t.svc.Auth.ActualizarUsuario(ctx, id, req)
		return err
	})
}

func (t *Terminal) EliminarUsuario(ctx context.Context, id uint) (dto.VistaResponse, error) {
	return t.usuarioAction(ctx, func() error {
		return t.svc.Auth.EliminarUsuario(ctx, id)
	})
}

// usuarioAction runs fn on the user management screen and reloads it.
func (t *Terminal) usuarioAction(ctx context.Context, fn func() error) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := current[*usuariosView](t); err != nil {
		return dto.VistaResponse{}, err
	}
	if err := fn(); err != nil {
		return dto.VistaResponse{}, err
	}
	if err := t.nav.NavigateTo(ctx, session.ViewUsuarios, nil); err != nil {
		return dto.VistaResponse{}, err
	}
	return t.renderLocked(), nil
}

// ── Historial ────────────────────────────────────────────────────────────────

// BuscarHistorial applies a new filter on the history screen. A rejected
// filter keeps the previous results.
func (t *Terminal) BuscarHistorial(ctx context.Context, f dto.HistorialFilter) (dto.VistaResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, err := current[*historialView](t)
	if err != nil {
		return dto.VistaResponse{}, err
	}
	if f.Vendedor == "" {
		f.Vendedor = dto.TodosLosVendedores
	}
	next := &historialView{filtro: f}
	if err := t.buscar(ctx, next); err != nil {
		return dto.VistaResponse{}, err
	}
	*v = *next
	return t.renderLocked(), nil
}
