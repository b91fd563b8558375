package handler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"bazarpos/internal/apierror"
	"bazarpos/internal/infra"
	"bazarpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type BoletasHandler struct {
	ventas      service.VentaService
	storeName   string
	storagePath string
}

func NewBoletasHandler(ventas service.VentaService, storeName, storagePath string) *BoletasHandler {
	return &BoletasHandler{ventas: ventas, storeName: storeName, storagePath: storagePath}
}

// DescargarPDF godoc
// @Summary Descargar comprobante
// @Description Entrega el PDF de la boleta o factura; lo genera si el worker aún no lo hizo.
// @Tags boletas
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "ID de la boleta"
// @Success 200 {file} file
// @Failure 404 {object} apierror.APIError
// @Router /v1/boletas/{id}/pdf [get]
func (h *BoletasHandler) DescargarPDF(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	path := infra.ComprobantePath(h.storagePath, id)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		b, err := h.ventas.ObtenerBoleta(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		if path, err = infra.GenerateComprobantePDF(b, h.storeName, h.storagePath); err != nil {
			fail(c, apierror.Wrap(apierror.KindInternal, "No se pudo generar el comprobante", err))
			return
		}
		log.Info().Uint("boleta_id", id).Msg("comprobante generado bajo demanda")
	}

	c.FileAttachment(path, fmt.Sprintf("boleta_%d.pdf", id))
}
