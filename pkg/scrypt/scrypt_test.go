package scrypt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accesskit/pkg/scrypt"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	digest, err := scrypt.Hash("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(digest, "$")
	require.Len(t, parts, 5)
	assert.Empty(t, parts[0])
	assert.Equal(t, "s0", parts[1])
	assert.Equal(t, "0e82", parts[2])

	ok, err := scrypt.Verify("correct horse battery staple", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = scrypt.Verify("wrong password", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUniqueSalt(t *testing.T) {
	t.Parallel()

	first, err := scrypt.Hash("secret")
	require.NoError(t, err)
	second, err := scrypt.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "missing prefix", digest: "s0$0e82$abc$def"},
		{name: "too few parts", digest: "$s0$0e82$onlysalt"},
		{name: "bad params hex", digest: "$s0$zz$YWJjZA$YWJjZA"},
		{name: "bad salt encoding", digest: "$s0$0e82$!!!$YWJjZA"},
		{name: "bad key encoding", digest: "$s0$0e82$YWJjZA$!!!"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := scrypt.Verify("whatever", tt.digest)
			assert.ErrorIs(t, err, scrypt.ErrInvalidDigest)
		})
	}
}

func TestVerifyAny(t *testing.T) {
	t.Parallel()

	// Empty digest still burns a derivation but always fails.
	ok, err := scrypt.VerifyAny("anything", "")
	require.NoError(t, err)
	assert.False(t, ok)

	digest, err := scrypt.Hash("secret")
	require.NoError(t, err)

	ok, err = scrypt.VerifyAny("secret", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}
