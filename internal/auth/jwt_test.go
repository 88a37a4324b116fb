package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, err := signer.Generate(7, "admin", 2)
	require.NoError(t, err)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, uint64(2), claims.TokenVersion)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	token, err := NewSigner("one", time.Hour).Generate(1, "user", 0)
	require.NoError(t, err)

	_, err = NewSigner("two", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsExpired(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	signer.ttl = -time.Minute

	token, err := signer.Generate(1, "user", 0)
	require.NoError(t, err)

	_, err = signer.Verify(token)
	assert.Error(t, err)
}
