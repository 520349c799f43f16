package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "summit/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "correct horse")

	assert.NoError(t, Verify("correct horse battery staple", hash))

	err = Verify("wrong password", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Hash(string(long))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestGeneratePIN(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		require.Len(t, pin, 6)
		for _, r := range pin {
			assert.True(t, r >= '0' && r <= '9', "pin %q contains non-digit", pin)
		}
		seen[pin] = true
	}
	// 20 draws from a million values collide with negligible probability.
	assert.Greater(t, len(seen), 15)
}
