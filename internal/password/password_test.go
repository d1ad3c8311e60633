package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_IsSaltedAndVerifiable(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ")
	assert.NotContains(t, first, "secret")
	assert.True(t, h.Verify("secret", first))
	assert.True(t, h.Verify("secret", second))
}

func TestVerify_Mismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	assert.False(t, h.Verify("Secret", hash))
	assert.False(t, h.Verify("", hash))
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("secret", ""))
	assert.False(t, h.Verify("secret", "not-a-bcrypt-hash"))
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"zero falls back", 0, bcrypt.DefaultCost},
		{"too high falls back", bcrypt.MaxCost + 1, bcrypt.DefaultCost},
		{"min kept", bcrypt.MinCost, bcrypt.MinCost},
		{"custom kept", 11, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBcryptHasher(tt.cost).cost)
		})
	}
}

func TestHash_UsesConfiguredCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
}

func TestHash_LongPasswords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	require.NoError(t, err)
	assert.True(t, h.Verify(long, hash))

	// Passwords sharing their first 72 bytes must still be told apart.
	assert.False(t, h.Verify(strings.Repeat("p", 79)+"q", hash))
	assert.False(t, h.Verify(long[:72], hash))

	huge := strings.Repeat("ü", 1000)
	hash, err = h.Hash(huge)
	require.NoError(t, err)
	assert.True(t, h.Verify(huge, hash))
}
