package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name    string
		alg     string
		cost    int
		wantAlg string
		wantErr bool
	}{
		{name: "defaults", alg: "", cost: 0, wantAlg: AlgBcrypt},
		{name: "argon2id", alg: AlgArgon2id, cost: bcrypt.MinCost, wantAlg: AlgArgon2id},
		{name: "unknown alg", alg: "md5", wantErr: true},
		{name: "cost too high", alg: AlgBcrypt, cost: bcrypt.MaxCost + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewPasswordHasher(tt.alg, tt.cost)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAlg, h.Algorithm)
		})
	}
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	for _, alg := range []string{AlgBcrypt, AlgArgon2id} {
		t.Run(alg, func(t *testing.T) {
			h, err := NewPasswordHasher(alg, bcrypt.MinCost)
			require.NoError(t, err)

			hash, err := h.Hash("hunter22")
			require.NoError(t, err)
			assert.NotContains(t, hash, "hunter22")

			ok, err := h.Verify(hash, "hunter22")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify(hash, "hunter23")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	for _, alg := range []string{AlgBcrypt, AlgArgon2id} {
		h, err := NewPasswordHasher(alg, bcrypt.MinCost)
		require.NoError(t, err)

		a, err := h.Hash("same")
		require.NoError(t, err)
		b, err := h.Hash("same")
		require.NoError(t, err)
		assert.NotEqual(t, a, b, alg)
	}
}

func TestPasswordHasher_VerifiesOtherAlgorithm(t *testing.T) {
	bc, _ := NewPasswordHasher(AlgBcrypt, bcrypt.MinCost)
	ar, _ := NewPasswordHasher(AlgArgon2id, bcrypt.MinCost)

	old, err := bc.Hash("pw")
	require.NoError(t, err)
	ok, err := ar.Verify(old, "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	newer, err := ar.Hash("pw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(newer, "$argon2id$"))
	ok, err = bc.Verify(newer, "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h, _ := NewPasswordHasher(AlgBcrypt, bcrypt.MinCost)

	for _, bad := range []string{"", "plain-text", "$argon2id$nosep", "$argon2id$!!$!!"} {
		ok, err := h.Verify(bad, "pw")
		assert.False(t, ok, bad)
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}
