package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, h.Compare(hash, "secret"))
	assert.False(t, h.Compare(hash, "wrong"))
	assert.False(t, h.Compare("not-a-hash", "secret"))
}

func TestNewHasher_InvalidCost(t *testing.T) {
	h := NewHasher(-1)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, h.Compare(hash, "secret"))
}
