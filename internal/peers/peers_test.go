package peers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

func TestAddRejectsDuplicateIDAndPubkey(t *testing.T) {
	d := New()
	require.NoError(t, d.Add(ledger.Participant{ID: 0, Host: "http://a", PubKey: "pub-a"}))

	err := d.Add(ledger.Participant{ID: 0, Host: "http://b", PubKey: "pub-b"})
	assert.Error(t, err, "duplicate id must be rejected")

	err = d.Add(ledger.Participant{ID: 1, Host: "http://c", PubKey: "pub-a"})
	assert.Error(t, err, "duplicate pubkey must be rejected")
}

func TestPeersExcludesSelf(t *testing.T) {
	d := New()
	require.NoError(t, d.Add(ledger.Participant{ID: 0, Host: "http://coord", PubKey: "pub-0"}))
	require.NoError(t, d.Add(ledger.Participant{ID: 1, Host: "http://peer1", PubKey: "pub-1"}))
	d.Self = ledger.Participant{ID: 0, Host: "http://coord", PubKey: "pub-0"}

	peers := d.Peers()
	require.Len(t, peers, 1)
	assert.Equal(t, 1, peers[0].ID)
}

func TestValidTokenRejectsEmptyAndWrong(t *testing.T) {
	d := New()
	assert.True(t, d.ValidToken(d.Token))
	assert.False(t, d.ValidToken(""))
	assert.False(t, d.ValidToken("not-the-token"))
}
