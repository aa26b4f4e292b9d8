package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashKey(t *testing.T) {
	h1 := HashKey("my-secret-key", []byte("pepper"))
	h2 := HashKey("my-secret-key", []byte("pepper"))
	assert.Equal(t, h1, h2)

	raw, err := hex.DecodeString(h1)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestHashKey_PepperChangesHash(t *testing.T) {
	assert.NotEqual(t,
		HashKey("my-secret-key", []byte("pepper-a")),
		HashKey("my-secret-key", []byte("pepper-b")),
	)
	assert.NotEqual(t,
		HashKey("key-a", []byte("pepper")),
		HashKey("key-b", []byte("pepper")),
	)
}
