package auth

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/domain"
	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
	"github.com/jhoicas/bodega-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/bodega-ledger/pkg/jwt"
)

const secret = "test-secret"

func newAuth(store *memory.Store) *AuthUseCase {
	return NewAuthUseCase(store.Users(), store.Outbox(), JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}, zerolog.Nop())
}

func TestLogin_TokenLlevaNombreYRol(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newAuth(store)

	created, err := uc.CreateUser(ctx, dto.CreateUserRequest{Name: "Marta", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, created.Role)

	resp, err := uc.Login(ctx, dto.LoginRequest{Name: "marta", Password: "s3cret"})
	require.NoError(t, err)
	claims, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "Marta", claims.Name)
	assert.Equal(t, entity.RoleOperator, claims.Role)
	assert.Equal(t, created.ID, claims.UserID)

	_, err = uc.Login(ctx, dto.LoginRequest{Name: "Marta", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Name: "Nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	counts, _ := store.Outbox().Counts(ctx)
	assert.Equal(t, 1, counts.Pending)
}

func TestCreateUser_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(memory.NewStore())

	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Name: "x", Password: "p", Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Name: "", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Name: "Ana", Password: "p"})
	require.NoError(t, err)
	_, err = uc.CreateUser(ctx, dto.CreateUserRequest{Name: "ANA", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestEnsureAdmin_CreaYCompletaHash(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newAuth(store)

	created, err := uc.EnsureAdmin(ctx, "admin", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = uc.EnsureAdmin(ctx, "admin", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	// usuario replicado sin contraseña
	require.NoError(t, store.Users().Create(ctx, &entity.User{ID: "r1", Name: "jefe", Role: entity.RoleAdmin}))
	_, err = uc.Login(ctx, dto.LoginRequest{Name: "jefe", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	created, err = uc.EnsureAdmin(ctx, "jefe", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	_, err = uc.Login(ctx, dto.LoginRequest{Name: "jefe", Password: "pw"})
	assert.NoError(t, err)
}

func TestDeleteUser_NoASiMismo(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(memory.NewStore())
	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Name: "Ana", Password: "p"})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.DeleteUser(ctx, u.ID, u.ID), domain.ErrInvalidInput)
	require.NoError(t, uc.DeleteUser(ctx, u.ID, "otro"))
	assert.ErrorIs(t, uc.DeleteUser(ctx, u.ID, "otro"), domain.ErrUserNotFound)
}
