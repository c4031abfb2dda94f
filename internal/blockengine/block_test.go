package blockengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noobcash/noobcash-go/internal/cryptoutil"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/txengine"
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

// mine finds a nonce satisfying difficulty over transactions. Tests use
// difficulty 0 or 1 so this never loops long.
func mine(t *testing.T, transactions []string, difficulty int) (uint32, string) {
	t.Helper()
	for nonce := uint32(0); ; nonce++ {
		hash, err := ComputeHash(transactions, nonce)
		require.NoError(t, err)
		var digest [48]byte
		b, err := hexDecode(hash)
		require.NoError(t, err)
		copy(digest[:], b)
		if cryptoutil.HasLeadingHexZeros(digest, difficulty) {
			return nonce, hash
		}
	}
}

func setupGenesis(t *testing.T, numParticipants int) (party, *ledger.Block, ledger.UTXOSet) {
	t.Helper()
	coordinator := newParty(t)
	genesisTx, err := txengine.CreateGenesis(coordinator.priv, coordinator.pubkey, numParticipants)
	require.NoError(t, err)
	genesisBlock, err := BuildGenesis(genesisTx)
	require.NoError(t, err)
	utxos := ledger.NewUTXOSet()
	for _, o := range genesisTx.Outputs {
		utxos[o.Who] = append(utxos[o.Who], o)
	}
	return coordinator, genesisBlock, utxos
}

func TestBuildGenesisWaivesProofOfWork(t *testing.T) {
	_, genesis, _ := setupGenesis(t, 2)
	assert.Equal(t, ledger.GenesisPreviousHash, genesis.PreviousHash)
	assert.Equal(t, uint64(0), genesis.Index)
	hash, err := ComputeHash(genesis.Transactions, genesis.Nonce)
	require.NoError(t, err)
	assert.Equal(t, hash, genesis.CurrentHash)
}

func newStateAfterGenesis(coordinator party, genesis *ledger.Block, utxos ledger.UTXOSet) *State {
	return &State{
		Chain:      []*ledger.Block{genesis},
		ValidUTXOs: utxos.Clone(),
		UTXOs:      utxos.Clone(),
	}
}

func TestCreateCommitsAMinedBlockAndResetsProvisionalToCommitted(t *testing.T) {
	const capacity, difficulty = 2, 1
	coordinator, genesis, utxos := setupGenesis(t, 2)
	bob := newParty(t)
	known := map[string]bool{coordinator.pubkey: true, bob.pubkey: true}

	s := newStateAfterGenesis(coordinator, genesis, utxos)

	tx1, err := txengine.Create(coordinator.priv, coordinator.pubkey, bob.pubkey, 10, s.UTXOs, known)
	require.NoError(t, err)
	tx2, err := txengine.Create(coordinator.priv, coordinator.pubkey, bob.pubkey, 5, s.UTXOs, known)
	require.NoError(t, err)
	s.Pending = []*ledger.Transaction{tx1, tx2}

	tx1JSON, err := EncodeTransaction(tx1)
	require.NoError(t, err)
	tx2JSON, err := EncodeTransaction(tx2)
	require.NoError(t, err)
	batch := []string{tx1JSON, tx2JSON}

	nonce, hash := mine(t, batch, difficulty)
	block, err := Create(s, Candidate{Transactions: batch, Nonce: nonce, Hash: hash, Timestamp: "t"}, capacity, difficulty, known)
	require.NoError(t, err)

	assert.Equal(t, genesis.CurrentHash, block.PreviousHash)
	assert.Equal(t, uint64(1), block.Index)
	assert.Len(t, s.Chain, 2)
	assert.Empty(t, s.Pending)
	assert.Equal(t, s.ValidUTXOs, s.UTXOs, "committing must equalize provisional and committed snapshots")
}

func TestValidateRejectsWrongTransactionCount(t *testing.T) {
	const capacity, difficulty = 4, 0
	coordinator, genesis, utxos := setupGenesis(t, 2)
	known := map[string]bool{coordinator.pubkey: true}
	s := newStateAfterGenesis(coordinator, genesis, utxos)

	batch := []string{"only-one"}
	nonce, hash := mine(t, batch, difficulty)
	outcome := Validate(s, &ledger.Block{
		Transactions: batch, Nonce: nonce, CurrentHash: hash,
		PreviousHash: genesis.CurrentHash, Index: 1,
	}, capacity, difficulty, known)
	assert.Equal(t, OutcomeError, outcome)
}

func TestValidateRejectsInsufficientProofOfWork(t *testing.T) {
	const capacity, difficulty = 1, 64 // unreachable difficulty: every hash fails
	coordinator, genesis, utxos := setupGenesis(t, 2)
	known := map[string]bool{coordinator.pubkey: true}
	s := newStateAfterGenesis(coordinator, genesis, utxos)

	batch := []string{"tx"}
	hash, err := ComputeHash(batch, 0)
	require.NoError(t, err)
	outcome := Validate(s, &ledger.Block{
		Transactions: batch, Nonce: 0, CurrentHash: hash,
		PreviousHash: genesis.CurrentHash, Index: 1,
	}, capacity, difficulty, known)
	assert.Equal(t, OutcomeError, outcome)
}

func TestValidateReturnsDroppedForSiblingOfEarlierBlock(t *testing.T) {
	const capacity, difficulty = 0, 0
	coordinator, genesis, utxos := setupGenesis(t, 2)
	known := map[string]bool{coordinator.pubkey: true}
	s := newStateAfterGenesis(coordinator, genesis, utxos)

	batch := []string{}
	nonce, hash := mine(t, batch, difficulty)
	block1 := &ledger.Block{Transactions: batch, Nonce: nonce, CurrentHash: hash, PreviousHash: genesis.CurrentHash, Index: 1}
	outcome := Validate(s, block1, capacity, difficulty, known)
	require.Equal(t, OutcomeOK, outcome)

	// A second block also claiming genesis as its parent is a shorter/equal
	// sibling of block1 and must be dropped, not adopted.
	nonce2, hash2 := mine(t, batch, difficulty)
	for hash2 == block1.CurrentHash {
		nonce2++
		h, err := ComputeHash(batch, nonce2)
		require.NoError(t, err)
		hash2 = h
	}
	sibling := &ledger.Block{Transactions: batch, Nonce: nonce2, CurrentHash: hash2, PreviousHash: genesis.CurrentHash, Index: 1}
	outcome = Validate(s, sibling, capacity, difficulty, known)
	assert.Equal(t, OutcomeDropped, outcome)
}

func TestValidateReturnsConsensusForUnknownParent(t *testing.T) {
	const capacity, difficulty = 0, 0
	coordinator, genesis, utxos := setupGenesis(t, 2)
	known := map[string]bool{coordinator.pubkey: true}
	s := newStateAfterGenesis(coordinator, genesis, utxos)

	batch := []string{}
	nonce, hash := mine(t, batch, difficulty)
	block := &ledger.Block{Transactions: batch, Nonce: nonce, CurrentHash: hash, PreviousHash: "unknown-parent-hash", Index: 5}
	outcome := Validate(s, block, capacity, difficulty, known)
	assert.Equal(t, OutcomeConsensus, outcome)
}

func TestValidateDropsStalePendingTransactionInvalidatedByBlock(t *testing.T) {
	const capacity, difficulty = 1, 0
	coordinator, genesis, utxos := setupGenesis(t, 2)
	bob, carol := newParty(t), newParty(t)
	known := map[string]bool{coordinator.pubkey: true, bob.pubkey: true, carol.pubkey: true}
	s := newStateAfterGenesis(coordinator, genesis, utxos)

	// A pending transaction spending the genesis output to bob...
	pending, err := txengine.Create(coordinator.priv, coordinator.pubkey, bob.pubkey, 10, s.UTXOs, known)
	require.NoError(t, err)
	s.Pending = []*ledger.Transaction{pending}

	// ...while a committed block spends the *same* genesis input to carol.
	genesisOutput := s.ValidUTXOs[coordinator.pubkey][0]
	conflict := &ledger.Transaction{Sender: coordinator.pubkey, Recipient: carol.pubkey, Amount: 20, Inputs: []string{genesisOutput.ID}}
	require.NoError(t, txengine.Sign(conflict, coordinator.priv))
	conflict.Outputs = []ledger.UTXO{{ID: conflict.ID, Who: coordinator.pubkey, Amount: genesisOutput.Amount - 20}, {ID: conflict.ID, Who: carol.pubkey, Amount: 20}}

	txJSON, err := EncodeTransaction(conflict)
	require.NoError(t, err)
	batch := []string{txJSON}
	nonce, hash := mine(t, batch, difficulty)
	block := &ledger.Block{Transactions: batch, Nonce: nonce, CurrentHash: hash, PreviousHash: genesis.CurrentHash, Index: 1}

	outcome := Validate(s, block, capacity, difficulty, known)
	require.Equal(t, OutcomeOK, outcome)
	assert.Empty(t, s.Pending, "the conflicting pending transaction must be silently dropped on replay")
}

func TestStateSnapshotRestoreIsIndependent(t *testing.T) {
	_, genesis, utxos := setupGenesis(t, 2)
	s := &State{Chain: []*ledger.Block{genesis}, ValidUTXOs: utxos.Clone(), UTXOs: utxos.Clone()}
	backup := s.Snapshot()

	s.Chain = append(s.Chain, &ledger.Block{Index: 1})
	s.UTXOs["someone"] = []ledger.UTXO{{ID: "x", Who: "someone", Amount: 1}}

	s.Restore(backup)
	assert.Len(t, s.Chain, 1)
	assert.Nil(t, s.UTXOs["someone"])
}
