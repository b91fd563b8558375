package service

import (
	"context"
	"strings"
	"time"

	"bazarpos/internal/apierror"
	"bazarpos/internal/config"
	"bazarpos/internal/dto"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var errCredenciales = apierror.E(apierror.KindUnauthorized, "Usuario o contraseña incorrectos.")

type AuthService interface {
	// Authenticate checks credentials against the stored bcrypt hash.
	Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.UsuarioResponse, error)
	// GenerateToken signs a shell token bound to one login of the terminal.
	GenerateToken(usuario, rol, sessionID string) (string, error)
	ExpiresIn() int

	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	CrearUsuario(ctx context.Context, req dto.GuardarUsuarioRequest) (*dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uint, req dto.GuardarUsuarioRequest) (*dto.UsuarioResponse, error)
	EliminarUsuario(ctx context.Context, id uint) error
	// EnsureAdmin creates the default admin account when it is missing.
	EnsureAdmin(ctx context.Context, password string) (bool, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{ID: u.ID, Usuario: u.Usuario, Rol: u.Rol}
}

func (s *authService) Authenticate(ctx context.Context, req dto.LoginRequest) (*dto.UsuarioResponse, error) {
	if strings.TrimSpace(req.Usuario) == "" || req.Clave == "" {
		return nil, apierror.E(apierror.KindValidation, "Por favor, ingrese usuario y contraseña.")
	}

	user, err := s.repo.FindByUsuario(ctx, req.Usuario)
	if err != nil {
		if notFound(err) {
			return nil, errCredenciales
		}
		return nil, dbError("No se pudo validar el usuario", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Clave), []byte(req.Clave)); err != nil {
		return nil, errCredenciales
	}

	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ExpiresIn() int { return s.cfg.JWTExpirationHours * 3600 }

func (s *authService) GenerateToken(usuario, rol, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"usuario":    usuario,
		"rol":        rol,
		"session_id": sessionID,
		"exp":        now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":        now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) hash(clave string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(clave), s.cfg.BcryptCost)
	if err != nil {
		return "", apierror.Wrap(apierror.KindValidation, "La clave no es válida", err)
	}
	return string(hash), nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, dbError("No se pudo listar usuarios", err)
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i])
	}
	return resp, nil
}

func validarUsuario(req dto.GuardarUsuarioRequest) error {
	if strings.TrimSpace(req.Usuario) == "" || req.Rol == "" {
		return apierror.E(apierror.KindValidation, "Usuario y Rol son obligatorios.")
	}
	if req.Rol != model.RolVendedor && req.Rol != model.RolAdmin {
		return apierror.E(apierror.KindValidation, "Rol inválido (vendedor | admin).")
	}
	return nil
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.GuardarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if err := validarUsuario(req); err != nil {
		return nil, err
	}
	if req.Clave == "" {
		return nil, apierror.E(apierror.KindValidation, "La clave es obligatoria para nuevos usuarios.")
	}

	// Check for duplicate name
	if _, err := s.repo.FindByUsuario(ctx, req.Usuario); err == nil {
		return nil, apierror.E(apierror.KindConflict, "Ya existe un usuario con ese nombre.")
	} else if !notFound(err) {
		return nil, dbError("No se pudo guardar el usuario", err)
	}

	hash, err := s.hash(req.Clave)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{Usuario: strings.TrimSpace(req.Usuario), Clave: hash, Rol: req.Rol}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, dbError("No se pudo guardar el usuario", err)
	}
	log.Info().Str("usuario", user.Usuario).Str("rol", user.Rol).Msg("usuario creado")
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uint, req dto.GuardarUsuarioRequest) (*dto.UsuarioResponse, error) {
	if err := validarUsuario(req); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, dbError("Usuario no encontrado", err)
	}

	nombre := strings.TrimSpace(req.Usuario)
	if nombre != user.Usuario {
		if user.Usuario == model.AdminUsuario {
			return nil, apierror.E(apierror.KindForbidden, "No se puede renombrar al usuario 'admin'.")
		}
		if existing, err := s.repo.FindByUsuario(ctx, nombre); err == nil && existing.ID != id {
			return nil, apierror.E(apierror.KindConflict, "Ya existe un usuario con ese nombre.")
		} else if err != nil && !notFound(err) {
			return nil, dbError("No se pudo guardar el usuario", err)
		}
	}

	user.Usuario = nombre
	user.Rol = req.Rol
	// A blank password keeps the stored hash
	if req.Clave != "" {
		hash, err := s.hash(req.Clave)
		if err != nil {
			return nil, err
		}
		user.Clave = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, dbError("No se pudo guardar el usuario", err)
	}
	resp := toUsuarioResponse(user)
	return &resp, nil
}

func (s *authService) EliminarUsuario(ctx context.Context, id uint) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dbError("Usuario no encontrado", err)
	}
	if user.Usuario == model.AdminUsuario {
		return apierror.E(apierror.KindForbidden, "No se puede eliminar al usuario 'admin'.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return dbError("No se pudo eliminar el usuario", err)
	}
	log.Info().Str("usuario", user.Usuario).Msg("usuario eliminado")
	return nil
}

func (s *authService) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	if _, err := s.repo.FindByUsuario(ctx, model.AdminUsuario); err == nil {
		return false, nil
	} else if !notFound(err) {
		return false, dbError("No se pudo verificar el usuario admin", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	if err := s.repo.Create(ctx, &model.Usuario{Usuario: model.AdminUsuario, Clave: hash, Rol: model.RolAdmin}); err != nil {
		return false, dbError("No se pudo crear el usuario admin", err)
	}
	log.Warn().Msg("usuario 'admin' no encontrado: creado con la clave por defecto, cámbiela")
	return true, nil
}
