package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	h, err := Hash("Abcdef12")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdef12", h)
	assert.True(t, Verify("Abcdef12", h))
}

func TestVerify_WrongPassword(t *testing.T) {
	h, err := Hash("Abcdef12")
	require.NoError(t, err)
	assert.False(t, Verify("abcdef12", h))
}

func TestVerify_MalformedHash_ReturnsFalse(t *testing.T) {
	assert.False(t, Verify("Abcdef12", "not-a-bcrypt-hash"))
	assert.False(t, Verify("Abcdef12", ""))
}

func TestHash_SaltedPerCall(t *testing.T) {
	h1, err := Hash("Abcdef12")
	require.NoError(t, err)
	h2, err := Hash("Abcdef12")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
