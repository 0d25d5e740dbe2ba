package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("paint-it-blue", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, IsHash(hash))
	assert.True(t, CheckPassword("paint-it-blue", hash))
	assert.False(t, CheckPassword("paint-it-red", hash))
}

func TestHashFallsBackToDefaultCost(t *testing.T) {
	hash, err := HashPassword("x", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestIsHash(t *testing.T) {
	assert.False(t, IsHash("admin123"))
	assert.True(t, IsHash("$2y$10$abcdefghijklmnopqrstuv"))
}
