package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

func TestSecretLifecycle(t *testing.T) {
	gokeyring.MockInit()

	assert.False(t, HasSecret("vault-1"))
	_, err := GetSecret("vault-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, SaveSecret("vault-1", "s3cret"))
	assert.True(t, HasSecret("vault-1"))
	got, err := GetSecret("vault-1")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	require.NoError(t, DeleteSecret("vault-1"))
	assert.False(t, HasSecret("vault-1"))
	assert.NoError(t, DeleteSecret("vault-1"))
}
