package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ActividadRequest is a raw input event forwarded by the front-end.
type ActividadRequest struct {
	Evento string `json:"evento" validate:"required,oneof=tecla click seleccion"`
}

type NavegarRequest struct {
	Vista  string            `json:"vista"  validate:"required"`
	Params map[string]string `json:"params"`
}

// ─── View models ─────────────────────────────────────────────────────────────

// VistaResponse is the current screen. Datos holds one of the *Vista types
// below, chosen by Vista.
type VistaResponse struct {
	Vista   string `json:"vista"`
	Usuario string `json:"usuario,omitempty"`
	Rol     string `json:"rol,omitempty"`
	Aviso   string `json:"aviso,omitempty"`
	Datos   any    `json:"datos"`
}

type LoginVista struct {
	Tienda string `json:"tienda"`
}

type AccionResponse struct {
	Vista    string `json:"vista"`
	Etiqueta string `json:"etiqueta"`
}

type DashboardVista struct {
	Bienvenida string           `json:"bienvenida"`
	Tienda     string           `json:"tienda"`
	Acciones   []AccionResponse `json:"acciones"`
}

type ProductosVista struct {
	Productos   []ProductoResponse `json:"productos"`
	PuedeEditar bool               `json:"puede_editar"`
}

type FormularioProductoVista struct {
	Modo       string             `json:"modo"` // agregar | editar
	Producto   *ProductoResponse  `json:"producto,omitempty"`
	Existentes []ProductoResponse `json:"existentes"`
}

type UsuariosVista struct {
	Usuarios []UsuarioResponse `json:"usuarios"`
}

type VentaVista struct {
	Disponibles []ProductoVendible     `json:"disponibles"`
	Lineas      []LineaCarritoResponse `json:"lineas"`
	Totales     TotalesResponse        `json:"totales"`
	TasaIVA     string                 `json:"tasa_iva"`
}

type HistorialVista struct {
	Filtro     HistorialFilter   `json:"filtro"`
	Vendedores []string          `json:"vendedores"`
	Resultados HistorialResponse `json:"resultados"`
}

// ConfirmarVentaResponse reports the committed sale together with the screen
// the terminal moved to.
type ConfirmarVentaResponse struct {
	Boleta BoletaResponse `json:"boleta"`
	Vista  VistaResponse  `json:"vista"`
}
