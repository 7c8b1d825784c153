package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sketchtalk/sketchtalk/internal/dto"
	"github.com/sketchtalk/sketchtalk/pkg/apperror"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	repo := newFakeUserRepo()
	return NewAuthService(repo), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Username: "sketcher",
		Email:    "sketcher@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.True(t, registered.Auth)
	assert.NotEmpty(t, registered.Token)
	require.NotNil(t, registered.User)
	assert.Equal(t, "member", registered.User.Role)

	logged, err := svc.Login(ctx, dto.LoginRequest{Username: "sketcher", Password: "hunter22"})
	require.NoError(t, err)
	assert.True(t, logged.Auth)

	claims := jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(logged.Token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "sketcher", Email: "a@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "sketcher", Email: "b@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "one", Email: "same@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "two", Email: "same@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrUnprocessable)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "sketcher", Email: "s@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "sketcher", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{Username: "sketcher", Email: "s@example.com", Password: "hunter22"})
	require.NoError(t, err)

	user, err := repo.FindByID(ctx, registered.User.ID)
	require.NoError(t, err)
	user.Disable()

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "sketcher", Password: "hunter22"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
