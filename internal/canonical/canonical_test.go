package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSortsKeys(t *testing.T) {
	out, err := Marshal(map[string]interface{}{
		"recipient": "bob",
		"amount":    10,
		"sender":    "alice",
		"inputs":    []string{"u1", "u2"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":10,"inputs":["u1","u2"],"recipient":"bob","sender":"alice"}`, string(out))
}

func TestMarshalIsDeterministicAcrossCalls(t *testing.T) {
	obj := map[string]interface{}{"nonce": 7, "transactions": []string{"a", "b"}}
	first, err := Marshal(obj)
	require.NoError(t, err)
	second, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
