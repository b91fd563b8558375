package session

import (
	"context"
	"fmt"
	"sort"

	"bazarpos/internal/apierror"

	"github.com/rs/zerolog/log"
)

// ViewID names one screen of the terminal. The set is closed.
type ViewID string

const (
	ViewLogin              ViewID = "login"
	ViewDashboard          ViewID = "dashboard"
	ViewProductos          ViewID = "productos"
	ViewFormularioProducto ViewID = "formulario_producto"
	ViewUsuarios           ViewID = "usuarios"
	ViewVenta              ViewID = "venta"
	ViewHistorial          ViewID = "historial"
)

var knownViews = map[ViewID]struct{}{
	ViewLogin: {}, ViewDashboard: {}, ViewProductos: {}, ViewFormularioProducto: {},
	ViewUsuarios: {}, ViewVenta: {}, ViewHistorial: {},
}

// ParseViewID maps an external view name onto a ViewID.
func ParseViewID(name string) (ViewID, bool) {
	id := ViewID(name)
	_, ok := knownViews[id]
	return id, ok
}

// Access is the minimum session a view requires.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

func (a Access) allows(id Identity, loggedIn bool) error {
	switch a {
	case Public:
		return nil
	case Authenticated:
		if !loggedIn {
			return apierror.E(apierror.KindUnauthorized, "Debe iniciar sesión")
		}
		return nil
	default:
		if !loggedIn {
			return apierror.E(apierror.KindUnauthorized, "Debe iniciar sesión")
		}
		if !id.EsAdmin() {
			return apierror.E(apierror.KindForbidden, "Acceso denegado: se requiere rol admin")
		}
		return nil
	}
}

// Params are the navigation arguments of a view, e.g. modo=editar, id=4.
type Params map[string]string

// View is a live screen. Close drops its state; a closed view is never reused.
type View interface {
	ID() ViewID
	Close()
}

// Builder constructs a fresh view for the given params.
type Builder[V View] func(ctx context.Context, p Params) (V, error)

type route[V View] struct {
	access Access
	build  Builder[V]
}

// Navigator owns the current view. It is not safe for concurrent use; the
// terminal serializes every call.
type Navigator[V View] struct {
	session  *Session
	watchdog *Watchdog
	routes   map[ViewID]route[V]
	current  V
	hasView  bool
}

// NewNavigator wires the navigator to the session it checks access against and
// the watchdog it disarms when returning to login. watchdog may be nil.
func NewNavigator[V View](s *Session, w *Watchdog) *Navigator[V] {
	return &Navigator[V]{session: s, watchdog: w, routes: make(map[ViewID]route[V])}
}

// Register binds a view builder and its access level.
func (n *Navigator[V]) Register(id ViewID, access Access, build Builder[V]) {
	n.routes[id] = route[V]{access: access, build: build}
}

// Registered lists the registered view ids in name order.
func (n *Navigator[V]) Registered() []ViewID {
	ids := make([]ViewID, 0, len(n.routes))
	for id := range n.routes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Navigate resolves an external view name. Unknown names are ignored.
func (n *Navigator[V]) Navigate(ctx context.Context, name string, p Params) error {
	id, ok := ParseViewID(name)
	if !ok {
		log.Debug().Str("vista", name).Msg("navegación ignorada: vista desconocida")
		return nil
	}
	return n.NavigateTo(ctx, id, p)
}

// NavigateTo replaces the current view with a freshly built id. When access is
// denied or the build fails the current view stays in place.
func (n *Navigator[V]) NavigateTo(ctx context.Context, id ViewID, p Params) error {
	r, ok := n.routes[id]
	if !ok {
		return apierror.E(apierror.KindInternal, fmt.Sprintf("vista %s no registrada", id))
	}

	ident, loggedIn := n.session.Current()
	if err := r.access.allows(ident, loggedIn); err != nil {
		log.Warn().Str("vista", string(id)).Str("usuario", ident.Usuario).Err(err).Msg("navegación rechazada")
		return err
	}

	if p == nil {
		p = Params{}
	}
	v, err := r.build(ctx, p)
	if err != nil {
		return err
	}

	if n.hasView {
		n.current.Close()
	}
	n.current, n.hasView = v, true

	if id == ViewLogin && n.watchdog != nil {
		n.watchdog.Disarm()
	}
	log.Debug().Str("vista", string(id)).Msg("vista activa")
	return nil
}

// Current returns the active view, if any has been built yet.
func (n *Navigator[V]) Current() (V, bool) {
	return n.current, n.hasView
}

// CurrentID is the id of the active view, or "" before the first navigation.
func (n *Navigator[V]) CurrentID() ViewID {
	if !n.hasView {
		return ""
	}
	return n.current.ID()
}
