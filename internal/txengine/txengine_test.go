package txengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noobcash/noobcash-go/internal/cryptoutil"
	"github.com/noobcash/noobcash-go/internal/ledger"
)

type party struct {
	priv   *cryptoutil.PrivateKey
	pubkey string
}

func newParty(t *testing.T) party {
	t.Helper()
	priv, err := cryptoutil.GenerateKeyPair()
	require.NoError(t, err)
	pub, err := priv.PublicKey()
	require.NoError(t, err)
	return party{priv: priv, pubkey: pub.String()}
}

func TestCreateSpendAllAndOutputsMatch(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}

	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "genesis", Who: alice.pubkey, Amount: 10000}}

	tx, err := Create(alice.priv, alice.pubkey, bob.pubkey, 3000, utxos, known)
	require.NoError(t, err)

	assert.Equal(t, []string{"genesis"}, tx.Inputs)
	assert.Len(t, tx.Outputs, 2)
	assert.Equal(t, ledger.Amount(7000), tx.Outputs[0].Amount)
	assert.Equal(t, ledger.Amount(3000), tx.Outputs[1].Amount)

	assert.Equal(t, ledger.Amount(7000), utxos.Balance(alice.pubkey))
	assert.Equal(t, ledger.Amount(3000), utxos.Balance(bob.pubkey))
}

func TestCreateRejectsSelfAndUnknownAndInsufficientFunds(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 100}}

	_, err := Create(alice.priv, alice.pubkey, alice.pubkey, 10, utxos, known)
	assert.Error(t, err, "sending to self must fail")

	_, err = Create(alice.priv, alice.pubkey, "unknown-pubkey", 10, utxos, known)
	assert.Error(t, err, "unknown recipient must fail")

	_, err = Create(alice.priv, alice.pubkey, bob.pubkey, 1000, utxos, known)
	assert.Error(t, err, "budget shortfall must fail")
}

func TestValidateAddedThenExistsOnReplay(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 100}}

	tx := &ledger.Transaction{Sender: alice.pubkey, Recipient: bob.pubkey, Amount: 40, Inputs: []string{"g"}}
	require.NoError(t, Sign(tx, alice.priv))
	tx.Outputs = []ledger.UTXO{{ID: tx.ID, Who: alice.pubkey, Amount: 60}, {ID: tx.ID, Who: bob.pubkey, Amount: 40}}

	var pending []*ledger.Transaction
	status, applied := Validate(tx, known, utxos, pending)
	require.Equal(t, StatusAdded, status)
	pending = append(pending, applied)

	status, existing := Validate(tx, known, utxos, pending)
	assert.Equal(t, StatusExists, status)
	assert.Same(t, pending[0], existing)
}

func TestValidateRejectsDoubleSpend(t *testing.T) {
	alice, bob, carol := newParty(t), newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true, carol.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 100}}

	first := &ledger.Transaction{Sender: alice.pubkey, Recipient: bob.pubkey, Amount: 100, Inputs: []string{"g"}}
	require.NoError(t, Sign(first, alice.priv))
	first.Outputs = []ledger.UTXO{{ID: first.ID, Who: alice.pubkey, Amount: 0}, {ID: first.ID, Who: bob.pubkey, Amount: 100}}

	var pending []*ledger.Transaction
	status, applied := Validate(first, known, utxos, pending)
	require.Equal(t, StatusAdded, status)
	pending = append(pending, applied)

	before := utxos.Clone()

	second := &ledger.Transaction{Sender: alice.pubkey, Recipient: carol.pubkey, Amount: 100, Inputs: []string{"g"}}
	require.NoError(t, Sign(second, alice.priv))
	second.Outputs = []ledger.UTXO{{ID: second.ID, Who: alice.pubkey, Amount: 0}, {ID: second.ID, Who: carol.pubkey, Amount: 100}}

	status, _ = Validate(second, known, utxos, pending)
	assert.Equal(t, StatusError, status)
	assert.Equal(t, before, utxos, "a rejected transaction must not mutate the provisional UTXO set")
}

func TestValidateRejectsZeroAmount(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 100}}

	tx := &ledger.Transaction{Sender: alice.pubkey, Recipient: bob.pubkey, Amount: 0, Inputs: []string{"g"}}
	require.NoError(t, Sign(tx, alice.priv))
	tx.Outputs = []ledger.UTXO{{ID: tx.ID, Who: alice.pubkey, Amount: 100}, {ID: tx.ID, Who: bob.pubkey, Amount: 0}}

	status, _ := Validate(tx, known, utxos, nil)
	assert.Equal(t, StatusError, status)
}

func TestValidateAllowsAmountEqualToBudgetWithZeroChange(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 50}}

	tx := &ledger.Transaction{Sender: alice.pubkey, Recipient: bob.pubkey, Amount: 50, Inputs: []string{"g"}}
	require.NoError(t, Sign(tx, alice.priv))
	tx.Outputs = []ledger.UTXO{{ID: tx.ID, Who: alice.pubkey, Amount: 0}, {ID: tx.ID, Who: bob.pubkey, Amount: 50}}

	status, _ := Validate(tx, known, utxos, nil)
	require.Equal(t, StatusAdded, status)
	require.Len(t, utxos[alice.pubkey], 1)
	assert.Equal(t, ledger.Amount(0), utxos[alice.pubkey][0].Amount)
}

func TestValidateRejectsBadSignature(t *testing.T) {
	alice, bob := newParty(t), newParty(t)
	known := map[string]bool{alice.pubkey: true, bob.pubkey: true}
	utxos := ledger.NewUTXOSet()
	utxos[alice.pubkey] = []ledger.UTXO{{ID: "g", Who: alice.pubkey, Amount: 100}}

	tx := &ledger.Transaction{Sender: alice.pubkey, Recipient: bob.pubkey, Amount: 10, Inputs: []string{"g"}}
	require.NoError(t, Sign(tx, alice.priv))
	tx.Amount = 20 // mutate after signing: id/signature no longer match the content
	tx.Outputs = []ledger.UTXO{{ID: tx.ID, Who: alice.pubkey, Amount: 80}, {ID: tx.ID, Who: bob.pubkey, Amount: 20}}

	status, _ := Validate(tx, known, utxos, nil)
	assert.Equal(t, StatusError, status)
}

func TestCreateGenesisCreditsCoordinatorWithFullSupply(t *testing.T) {
	coordinator := newParty(t)
	tx, err := CreateGenesis(coordinator.priv, coordinator.pubkey, 5)
	require.NoError(t, err)

	assert.Equal(t, coordinator.pubkey, tx.Sender)
	assert.Equal(t, coordinator.pubkey, tx.Recipient)
	assert.Equal(t, ledger.AmountFromFloat(500), tx.Amount)
	assert.Empty(t, tx.Inputs)
	require.Len(t, tx.Outputs, 1)
	assert.Equal(t, ledger.AmountFromFloat(500), tx.Outputs[0].Amount)
}
