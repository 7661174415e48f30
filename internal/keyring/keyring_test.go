package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	keyring.MockInit()

	const id = "6f1c2a9e-0000-4000-8000-000000000001"
	assert.False(t, HasPassword(id))

	_, err := GetPassword(id)
	assert.ErrorIs(t, err, ErrNotStored)

	require.NoError(t, SavePassword(id, []byte("hunter2")))
	assert.True(t, HasPassword(id))

	got, err := GetPassword(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), got)

	require.NoError(t, DeletePassword(id))
	assert.False(t, HasPassword(id))
	assert.ErrorIs(t, DeletePassword(id), ErrNotStored)
}
