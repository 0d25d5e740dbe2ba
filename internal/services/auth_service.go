package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/pkg/crypto"
	jwtpkg "github.com/bajrangpainters/backend/pkg/jwt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const adminRole = "admin"

// AuthService signs in the single configured site administrator.
type AuthService struct {
	username     string
	passwordHash string
	secret       string
	ttl          time.Duration
}

// NewAuthService hashes ADMIN_PASSWORD unless it is already a bcrypt hash.
func NewAuthService(cfg *config.Config) (*AuthService, error) {
	hash := cfg.AdminPassword
	if !crypto.IsHash(hash) {
		var err error
		hash, err = crypto.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}
	return &AuthService{
		username:     cfg.AdminUsername,
		passwordHash: hash,
		secret:       cfg.JWTSecret,
		ttl:          cfg.JWTAccessTokenDuration,
	}, nil
}

// Login returns a signed access token and its expiry.
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := crypto.CheckPassword(password, s.passwordHash)
	if !userOK || !passOK {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	token, err := jwtpkg.GenerateToken(s.username, adminRole, jwtpkg.AccessToken, s.secret, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Authenticate validates an access token and returns its claims.
func (s *AuthService) Authenticate(token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwtpkg.AccessToken || claims.Role != adminRole {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}
