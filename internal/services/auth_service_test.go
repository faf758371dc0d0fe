// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 24},
	}
}

func TestRegister(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	users := newMemUserStore()
	svc := NewAuthService(users, authTestConfig())

	resp, err := svc.Register(&RegisterRequest{Email: "new@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 24*3600, resp.ExpiresIn)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.False(t, claims.Admin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newMemUserStore(&models.User{Email: "taken@example.com"})
	svc := NewAuthService(users, authTestConfig())

	_, err := svc.Register(&RegisterRequest{Email: "taken@example.com", Password: "Str0ngPass"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc := NewAuthService(newMemUserStore(), authTestConfig())

	_, err := svc.Register(&RegisterRequest{Email: "new@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	user := &models.User{Email: "u@example.com"}
	require.NoError(t, user.SetPassword("Str0ngPass"))
	users := newMemUserStore(user)
	svc := NewAuthService(users, authTestConfig())

	resp, err := svc.Login(&LoginRequest{Email: "u@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{Email: "u@example.com"}
	require.NoError(t, user.SetPassword("Str0ngPass"))
	svc := NewAuthService(newMemUserStore(user), authTestConfig())

	_, err := svc.Login(&LoginRequest{Email: "u@example.com", Password: "WrongPass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(newMemUserStore(), authTestConfig())

	_, err := svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Str0ngPass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminClaimInToken(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	user := &models.User{Email: "admin@example.com", IsAdmin: true}
	require.NoError(t, user.SetPassword("Str0ngPass"))
	svc := NewAuthService(newMemUserStore(user), authTestConfig())

	resp, err := svc.Login(&LoginRequest{Email: "admin@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}
