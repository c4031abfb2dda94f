package mempool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

func TestContainsUsesWireFormEquality(t *testing.T) {
	tx := &ledger.Transaction{Sender: "a", Recipient: "b", Amount: 10, ID: "id1", Signature: "sig"}
	other := tx.Clone()
	pending := []*ledger.Transaction{other}

	assert.True(t, Contains(pending, tx))

	mutated := tx.Clone()
	mutated.Amount = 11
	assert.False(t, Contains(pending, mutated))
}

func TestTakeForMiningRequiresFullCapacity(t *testing.T) {
	pending := []*ledger.Transaction{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	_, ok := TakeForMining(pending, 4)
	assert.False(t, ok)

	batch, ok := TakeForMining(pending, 2)
	require := assert.New(t)
	require.True(ok)
	require.Len(batch, 2)
	require.Equal("1", batch[0].ID)
	require.Equal("2", batch[1].ID)
}
