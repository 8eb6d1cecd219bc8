package apikey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "labfhir/pkg/domain-errors"
)

func Test_GenerateAndVerify(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	hash, err := Hash(key)
	require.NoError(t, err)

	verifier := NewVerifier([]string{hash})
	assert.True(t, verifier.Verify(key))
	assert.False(t, verifier.Verify("some-other-key"))
	assert.False(t, verifier.Verify(""))
}

func Test_VerifyAgainstRotatedHashes(t *testing.T) {
	oldKey, err := Generate()
	require.NoError(t, err)
	newKey, err := Generate()
	require.NoError(t, err)

	oldHash, err := Hash(oldKey)
	require.NoError(t, err)
	newHash, err := Hash(newKey)
	require.NoError(t, err)

	verifier := NewVerifier([]string{oldHash, newHash})
	assert.True(t, verifier.Verify(oldKey))
	assert.True(t, verifier.Verify(newKey))
}

func Test_HashEmptyKey(t *testing.T) {
	_, err := Hash("")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeInvalidInput, "api key cannot be empty"))
}

func Test_VerifierWithoutHashes(t *testing.T) {
	verifier := NewVerifier(nil)
	assert.False(t, verifier.Verify("anything"))
}
