package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/aromas-stock/internal/application/auth"
	"github.com/jhoicas/aromas-stock/internal/application/dto"
	"github.com/jhoicas/aromas-stock/internal/domain"
	"github.com/jhoicas/aromas-stock/internal/domain/entity"
	"github.com/jhoicas/aromas-stock/internal/infrastructure/memory"
	"github.com/jhoicas/aromas-stock/pkg/jwt"
)

const secret = "test-secret-de-al-menos-32-caracteres!!"

func newAuth(t *testing.T, status string) *auth.AuthUseCase {
	t.Helper()
	store := memory.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("velas-2024"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: "u1", Email: "ana@aromas.com.ar", PasswordHash: string(hash), Name: "Ana", Role: entity.RoleAdmin, Status: status,
	}))
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 10, Issuer: "test"})
}

func TestLogin_Exitoso(t *testing.T) {
	uc := newAuth(t, "active")

	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: " ANA@aromas.com.ar ", Password: "velas-2024"})
	require.NoError(t, err)
	assert.Equal(t, "u1", out.User.ID)

	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := newAuth(t, "active")

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@aromas.com.ar", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@aromas.com.ar", Password: "velas-2024"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc := newAuth(t, "inactive")
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@aromas.com.ar", Password: "velas-2024"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
