package services

import (
	"testing"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/pkg/crypto"
	jwtpkg "github.com/bajrangpainters/backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authConfig(password string) *config.Config {
	return &config.Config{
		AdminUsername:          "owner",
		AdminPassword:          password,
		JWTSecret:              "test-secret",
		JWTAccessTokenDuration: time.Hour,
		BcryptCost:             bcrypt.MinCost,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	svc, err := NewAuthService(authConfig("brush-strokes"))
	require.NoError(t, err)

	token, expiresAt, err := svc.Login("owner", "brush-strokes")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Username)
}

func TestAuthServiceRejectsBadCredentials(t *testing.T) {
	svc, err := NewAuthService(authConfig("brush-strokes"))
	require.NoError(t, err)

	_, _, err = svc.Login("owner", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("someone", "brush-strokes")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceAcceptsPreHashedPassword(t *testing.T) {
	hash, err := crypto.HashPassword("roller", bcrypt.MinCost)
	require.NoError(t, err)
	svc, err := NewAuthService(authConfig(hash))
	require.NoError(t, err)

	_, _, err = svc.Login("owner", "roller")
	assert.NoError(t, err)
}

func TestAuthServiceRejectsNonAdminToken(t *testing.T) {
	svc, err := NewAuthService(authConfig("brush-strokes"))
	require.NoError(t, err)

	token, err := jwtpkg.GenerateToken("owner", "viewer", jwtpkg.AccessToken, "test-secret", time.Hour)
	require.NoError(t, err)
	_, err = svc.Authenticate(token)
	assert.Error(t, err)

	_, err = svc.Authenticate("garbage")
	assert.Error(t, err)
}
