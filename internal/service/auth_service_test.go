package service_test

import (
	"context"
	"testing"

	"bazarpos/internal/apierror"
	"bazarpos/internal/config"
	"bazarpos/internal/dto"
	"bazarpos/internal/model"
	"bazarpos/internal/repository"
	"bazarpos/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users  map[uint]*model.Usuario
	nextID uint
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uint]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByUsuario(_ context.Context, usuario string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Usuario == usuario {
			cp := *u
			return &cp, nil
		}
	}
	return &model.Usuario{}, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return &model.Usuario{}, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	users := make([]model.Usuario, 0, len(r.users))
	for id := uint(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		BcryptCost:         bcrypt.MinCost,
	}
}

func newAuth(t *testing.T) (service.AuthService, *stubUsuarioRepo) {
	t.Helper()
	repo := newStubUsuarioRepo()
	return service.NewAuthService(repo, newTestCfg()), repo
}

func seedUser(t *testing.T, svc service.AuthService, usuario, clave, rol string) *dto.UsuarioResponse {
	t.Helper()
	u, err := svc.CrearUsuario(context.Background(), dto.GuardarUsuarioRequest{Usuario: usuario, Clave: clave, Rol: rol})
	require.NoError(t, err)
	return u
}

// ── Tests: Authenticate ──────────────────────────────────────────────────────

func TestAuthenticate_Success(t *testing.T) {
	svc, repo := newAuth(t)
	seedUser(t, svc, "ana", "secreta", model.RolVendedor)

	u, err := svc.Authenticate(context.Background(), dto.LoginRequest{Usuario: "ana", Clave: "secreta"})
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Usuario)
	assert.Equal(t, model.RolVendedor, u.Rol)

	stored, _ := repo.FindByUsuario(context.Background(), "ana")
	assert.NotEqual(t, "secreta", stored.Clave, "password must be stored hashed")
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc, _ := newAuth(t)
	seedUser(t, svc, "ana", "secreta", model.RolVendedor)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, dto.LoginRequest{Usuario: "ana", Clave: "otra"})
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	_, err = svc.Authenticate(ctx, dto.LoginRequest{Usuario: "nadie", Clave: "secreta"})
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))

	_, err = svc.Authenticate(ctx, dto.LoginRequest{Usuario: "", Clave: ""})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestGenerateToken_CarriesSession(t *testing.T) {
	svc, _ := newAuth(t)
	tok, err := svc.GenerateToken("ana", model.RolVendedor, "sess-1")
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "sess-1", claims["session_id"])
	assert.Equal(t, "ana", claims["usuario"])
	assert.Equal(t, 8*3600, svc.ExpiresIn())
}

// ── Tests: user management ───────────────────────────────────────────────────

func TestCrearUsuario_Validation(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.CrearUsuario(ctx, dto.GuardarUsuarioRequest{Usuario: "ana", Rol: model.RolVendedor})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err), "password required on create")

	_, err = svc.CrearUsuario(ctx, dto.GuardarUsuarioRequest{Usuario: "ana", Clave: "x", Rol: "supervisor"})
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	seedUser(t, svc, "ana", "x", model.RolVendedor)
	_, err = svc.CrearUsuario(ctx, dto.GuardarUsuarioRequest{Usuario: "ana", Clave: "y", Rol: model.RolAdmin})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestActualizarUsuario_BlankPasswordKeepsHash(t *testing.T) {
	svc, repo := newAuth(t)
	ctx := context.Background()
	u := seedUser(t, svc, "ana", "original", model.RolVendedor)
	before, _ := repo.FindByID(ctx, u.ID)

	updated, err := svc.ActualizarUsuario(ctx, u.ID, dto.GuardarUsuarioRequest{Usuario: "ana", Rol: model.RolAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.RolAdmin, updated.Rol)

	after, _ := repo.FindByID(ctx, u.ID)
	assert.Equal(t, before.Clave, after.Clave)
	_, err = svc.Authenticate(ctx, dto.LoginRequest{Usuario: "ana", Clave: "original"})
	assert.NoError(t, err)

	_, err = svc.ActualizarUsuario(ctx, u.ID, dto.GuardarUsuarioRequest{Usuario: "ana", Clave: "nueva", Rol: model.RolAdmin})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, dto.LoginRequest{Usuario: "ana", Clave: "nueva"})
	assert.NoError(t, err)
}

func TestActualizarUsuario_RenameConflict(t *testing.T) {
	svc, _ := newAuth(t)
	seedUser(t, svc, "ana", "x", model.RolVendedor)
	beto := seedUser(t, svc, "beto", "x", model.RolVendedor)

	_, err := svc.ActualizarUsuario(context.Background(), beto.ID, dto.GuardarUsuarioRequest{Usuario: "ana", Rol: model.RolVendedor})
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
}

func TestEliminarUsuario_ProtectsAdmin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	created, err := svc.EnsureAdmin(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, created)
	ana := seedUser(t, svc, "ana", "x", model.RolVendedor)

	users, _ := svc.ListarUsuarios(ctx)
	require.Len(t, users, 2)
	admin := users[0]
	assert.Equal(t, model.AdminUsuario, admin.Usuario)

	err = svc.EliminarUsuario(ctx, admin.ID)
	assert.Equal(t, apierror.KindForbidden, apierror.KindOf(err))

	require.NoError(t, svc.EliminarUsuario(ctx, ana.ID))
	err = svc.EliminarUsuario(ctx, ana.ID)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc, repo := newAuth(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "otra")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.users, 1)

	u, err := svc.Authenticate(ctx, dto.LoginRequest{Usuario: "admin", Clave: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RolAdmin, u.Rol)
}
