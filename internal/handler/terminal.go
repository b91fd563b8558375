package handler

import (
	"net/http"

	"bazarpos/internal/dto"
	"bazarpos/internal/terminal"

	"github.com/gin-gonic/gin"
)

// TerminalHandler forwards shell input to the terminal and returns the
// resulting view model.
type TerminalHandler struct{ term *terminal.Terminal }

func NewTerminalHandler(term *terminal.Terminal) *TerminalHandler {
	return &TerminalHandler{term: term}
}

// Actividad godoc
// @Summary Evento de entrada
// @Description Una tecla o clic del usuario; reinicia la ventana de inactividad.
// @Tags terminal
// @Accept json
// @Security BearerAuth
// @Param body body dto.ActividadRequest true "Evento"
// @Success 204
// @Router /v1/terminal/actividad [post]
func (h *TerminalHandler) Actividad(c *gin.Context) {
	var req dto.ActividadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// Already recorded by middleware.Activity
	c.Status(http.StatusNoContent)
}

// Vista godoc
// @Summary Vista actual
// @Tags terminal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.VistaResponse
// @Router /v1/terminal/vista [get]
func (h *TerminalHandler) Vista(c *gin.Context) {
	c.JSON(http.StatusOK, h.term.Vista())
}

// Navegar godoc
// @Summary Cambiar de vista
// @Description Nombres de vista desconocidos se ignoran y devuelven la vista actual.
// @Tags terminal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.NavegarRequest true "Vista y parámetros"
// @Success 200 {object} dto.VistaResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/terminal/navegar [post]
func (h *TerminalHandler) Navegar(c *gin.Context) {
	var req dto.NavegarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.Navegar(c.Request.Context(), req))
}

// AgregarLinea godoc
// @Summary Agregar producto al carrito
// @Tags venta
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AgregarLineaRequest true "Producto y cantidad"
// @Success 200 {object} dto.VistaResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/terminal/venta/lineas [post]
func (h *TerminalHandler) AgregarLinea(c *gin.Context) {
	var req dto.AgregarLineaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.AgregarLinea(c.Request.Context(), req))
}

// ConfirmarVenta godoc
// @Summary Confirmar la venta
// @Description Registra boleta, detalles y descuento de stock en una sola transacción.
// @Tags venta
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ConfirmarVentaRequest true "Documento"
// @Success 201 {object} dto.ConfirmarVentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/terminal/venta/confirmar [post]
func (h *TerminalHandler) ConfirmarVenta(c *gin.Context) {
	var req dto.ConfirmarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.term.ConfirmarVenta(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GuardarProducto godoc
// @Summary Guardar el formulario de producto
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.GuardarProductoRequest true "Campos del formulario"
// @Success 200 {object} dto.VistaResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/terminal/formulario-producto/guardar [post]
func (h *TerminalHandler) GuardarProducto(c *gin.Context) {
	var req dto.GuardarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.GuardarProducto(c.Request.Context(), req))
}

// ArchivarProducto godoc
// @Summary Archivar producto
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del producto"
// @Success 200 {object} dto.VistaResponse
// @Router /v1/terminal/productos/{id}/archivar [post]
func (h *TerminalHandler) ArchivarProducto(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	h.respond(c)(h.term.ArchivarProducto(c.Request.Context(), id))
}

// CrearUsuario godoc
// @Summary Crear usuario
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.GuardarUsuarioRequest true "Usuario"
// @Success 200 {object} dto.VistaResponse
// @Router /v1/terminal/usuarios [post]
func (h *TerminalHandler) CrearUsuario(c *gin.Context) {
	var req dto.GuardarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.CrearUsuario(c.Request.Context(), req))
}

// ActualizarUsuario godoc
// @Summary Editar usuario
// @Description Una clave vacía conserva la clave actual.
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del usuario"
// @Param body body dto.GuardarUsuarioRequest true "Usuario"
// @Success 200 {object} dto.VistaResponse
// @Router /v1/terminal/usuarios/{id} [put]
func (h *TerminalHandler) ActualizarUsuario(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.GuardarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.ActualizarUsuario(c.Request.Context(), id, req))
}

// EliminarUsuario godoc
// @Summary Eliminar usuario
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del usuario"
// @Success 200 {object} dto.VistaResponse
// @Failure 403 {object} apierror.APIError
// @Router /v1/terminal/usuarios/{id} [delete]
func (h *TerminalHandler) EliminarUsuario(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	h.respond(c)(h.term.EliminarUsuario(c.Request.Context(), id))
}

// BuscarHistorial godoc
// @Summary Filtrar historial de ventas
// @Tags historial
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.HistorialFilter true "Filtros"
// @Success 200 {object} dto.VistaResponse
// @Router /v1/terminal/historial/buscar [post]
func (h *TerminalHandler) BuscarHistorial(c *gin.Context) {
	var req dto.HistorialFilter
	if !bindAndValidate(c, &req) {
		return
	}
	h.respond(c)(h.term.BuscarHistorial(c.Request.Context(), req))
}

// respond writes the view model or hands the error to the error middleware.
func (h *TerminalHandler) respond(c *gin.Context) func(dto.VistaResponse, error) {
	return func(v dto.VistaResponse, err error) {
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	}
}
