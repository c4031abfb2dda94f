package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTXOSetBalanceAndTotalSupply(t *testing.T) {
	s := NewUTXOSet()
	s["alice"] = []UTXO{{ID: "t1", Who: "alice", Amount: 100}, {ID: "t2", Who: "alice", Amount: 50}}
	s["bob"] = []UTXO{{ID: "t1", Who: "bob", Amount: 25}}

	assert.Equal(t, Amount(150), s.Balance("alice"))
	assert.Equal(t, Amount(25), s.Balance("bob"))
	assert.Equal(t, Amount(0), s.Balance("carol"))
	assert.Equal(t, Amount(175), s.TotalSupply())
}

func TestUTXOSetCloneIsIndependent(t *testing.T) {
	s := NewUTXOSet()
	s["alice"] = []UTXO{{ID: "t1", Who: "alice", Amount: 100}}

	clone := s.Clone()
	clone["alice"][0].Amount = 5
	clone["bob"] = []UTXO{{ID: "t2", Who: "bob", Amount: 1}}

	assert.Equal(t, Amount(100), s["alice"][0].Amount, "mutating the clone must not affect the original")
	assert.Nil(t, s["bob"])
}

func TestTransactionEqualIsWireForm(t *testing.T) {
	t1 := &Transaction{Sender: "a", Recipient: "b", Amount: 10, Inputs: []string{"x"}, ID: "id1", Signature: "sig",
		Outputs: []UTXO{{ID: "id1", Who: "a", Amount: 0}, {ID: "id1", Who: "b", Amount: 10}}}
	t2 := t1.Clone()
	assert.True(t, t1.Equal(t2))

	t2.Amount = 11
	assert.False(t, t1.Equal(t2))
}
