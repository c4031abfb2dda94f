package cryptoutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)

	digest := Hash384([]byte("hello noobcash"))
	sig, err := priv.Sign(digest)
	require.NoError(t, err)

	assert.True(t, pub.Verify(digest, sig))

	tampered := Hash384([]byte("hello noobcash!"))
	assert.False(t, pub.Verify(tampered, sig))
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	priv, err := GenerateKeyPair()
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)

	parsed, err := ParsePublicKeyPEM(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub.String(), parsed.String())

	digest := Hash384([]byte("round trip"))
	sig, err := priv.Sign(digest)
	require.NoError(t, err)
	assert.True(t, parsed.Verify(digest, sig))
}

func TestHasLeadingHexZeros(t *testing.T) {
	var h [48]byte
	h[0] = 0x00
	h[1] = 0x0f
	assert.True(t, HasLeadingHexZeros(h, 3))
	assert.False(t, HasLeadingHexZeros(h, 4))
}

func TestHashHexIsLowercaseHex(t *testing.T) {
	hex := HashHex([]byte("abc"))
	assert.Len(t, hex, 96) // SHA-384 -> 48 bytes -> 96 hex chars
	assert.Regexp(t, "^[0-9a-f]+$", hex)
}
