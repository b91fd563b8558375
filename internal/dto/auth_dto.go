package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Usuario string `json:"usuario" validate:"required,max=50"`
	Clave   string `json:"clave"   validate:"required"`
}

// GuardarUsuarioRequest serves both create and edit. On edit a blank Clave
// keeps the stored hash.
type GuardarUsuarioRequest struct {
	Usuario string `json:"usuario" validate:"required,max=50"`
	Clave   string `json:"clave"   validate:"omitempty,max=72"`
	Rol     string `json:"rol"     validate:"required,oneof=vendedor admin"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID      uint   `json:"id"`
	Usuario string `json:"usuario"`
	Rol     string `json:"rol"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"` // seconds
	User        UsuarioResponse `json:"user"`
	Vista       VistaResponse   `json:"vista"`
}
