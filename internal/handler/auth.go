package handler

import (
	"net/http"

	"bazarpos/internal/dto"
	"bazarpos/internal/service"
	"bazarpos/internal/terminal"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	term *terminal.Terminal
	svc  service.AuthService
}

func NewAuthHandler(term *terminal.Terminal, svc service.AuthService) *AuthHandler {
	return &AuthHandler{term: term, svc: svc}
}

// Login godoc
// @Summary Login de usuario
// @Description Valida credenciales, abre la sesión del terminal y devuelve el dashboard.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ident, user, vista, err := h.term.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.svc.GenerateToken(ident.Usuario, ident.Rol, ident.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.svc.ExpiresIn(),
		User:        user,
		Vista:       vista,
	})
}

// Logout godoc
// @Summary Cerrar sesión
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.VistaResponse
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, h.term.Logout(c.Request.Context()))
}
