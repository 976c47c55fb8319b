package auth_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-patrimonio/internal/application/auth"
	"github.com/jhoicas/inventario-patrimonio/internal/application/dto"
	"github.com/jhoicas/inventario-patrimonio/internal/domain"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/access"
	"github.com/jhoicas/inventario-patrimonio/internal/domain/entity"
	"github.com/jhoicas/inventario-patrimonio/internal/infrastructure/sqlite"
	pkgjwt "github.com/jhoicas/inventario-patrimonio/pkg/jwt"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

// ─── Helpers de test ──────────────────────────────────────────────────────────

func newAuth(t *testing.T) (*auth.AuthUseCase, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	uc := auth.NewAuthUseCase(store.Users(), store.Staff(), store.TxRunner(),
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: "test"}, nil)
	return uc, store
}

func register(t *testing.T, uc *auth.AuthUseCase, username string) *dto.UserResponse {
	t.Helper()
	u, err := uc.Register(context.Background(), dto.RegisterRequest{
		Username: username, FirstName: "Ana", LastName: "Lima",
		Password1: "secret-123", Password2: "secret-123",
	})
	require.NoError(t, err)
	return u
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, store := newAuth(t)
	u := register(t, uc, "ana")

	// Caso 1: credenciales válidas → token con el id de la identidad
	resp, err := uc.Login(ctx, dto.LoginRequest{Username: " ana ", Password: "secret-123"})
	require.NoError(t, err)
	sess, err := pkgjwt.Parse(testJWTSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	require.NotNil(t, resp.User.LastLogin)

	id, err := uc.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	// Caso 2: password incorrecto y usuario inexistente son indistinguibles
	_, errBad := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "wrong-pass"})
	_, errUnknown := uc.Login(ctx, dto.LoginRequest{Username: "ghost", Password: "secret-123"})
	assert.ErrorIs(t, errBad, domain.ErrUnauthorized)
	assert.Equal(t, errBad, errUnknown)

	// Caso 3: usuario inactivo
	user, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	user.IsActive = false
	require.NoError(t, store.Users().Update(ctx, user))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "secret-123"})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestParseToken_Invalid(t *testing.T) {
	uc, _ := newAuth(t)
	other, err := pkgjwt.Generate("otra-clave", 1, "x", false, "test", 5)
	require.NoError(t, err)

	_, err = uc.ParseToken(other)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.ParseToken("basura")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_CreatesStaffMember(t *testing.T) {
	ctx := context.Background()
	uc, store := newAuth(t)
	u := register(t, uc, "ana")

	m, err := store.Staff().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, entity.SignupRegistrationCode(u.ID), m.RegistrationCode)
	assert.Equal(t, entity.DefaultRoleTitle, m.RoleTitle)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "ana", Password1: "secret-123", Password2: "secret-123"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	_, err = uc.Register(ctx, dto.RegisterRequest{Username: "bia", Password1: "secret-123", Password2: "x"})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	uc, store := newAuth(t)

	// Caso 1: registro normal → Regular con inventariante
	u := register(t, uc, "ana")
	s, err := uc.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleRegular, s.Role)
	require.NotNil(t, s.Staff)

	// Caso 2: presidente → Admin; el cambio se ve en la siguiente resolución
	s.Staff.IsPresident = true
	require.NoError(t, store.Staff().Update(ctx, s.Staff))
	s, err = uc.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	// Caso 3: superusuario → Admin
	su, err := uc.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "root", Password: "root-pass-1"})
	require.NoError(t, err)
	s, err = uc.Resolve(ctx, su.UserID)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())

	// Caso 4: inexistente
	_, err = uc.Resolve(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth(t)

	su, err := uc.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "root", Password: "root-pass-1"})
	require.NoError(t, err)
	assert.True(t, su.IsSuperuser)
	assert.Equal(t, entity.DefaultSuperuserCode, su.RegistrationCode)
	assert.Equal(t, entity.SuperuserRoleTitle, su.RoleTitle)

	// la matrícula por defecto ya está tomada
	_, err = uc.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "root2", Password: "root-pass-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistrationCode)

	su2, err := uc.CreateSuperuser(ctx, dto.SuperuserRequest{Username: "root2", Password: "root-pass-1", RegistrationCode: "0001"})
	require.NoError(t, err)
	assert.Equal(t, "0001", su2.RegistrationCode)
}
