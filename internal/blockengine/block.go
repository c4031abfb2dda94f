// Package blockengine implements C4: assembling, hashing, validating and
// committing blocks, and maintaining the committed ("valid_utxos") vs
// provisional ("utxos") UTXO snapshots. It generalizes the teacher's
// pkg/mining/block.go (PoW block assembly) and pkg/validation/block.go
// (acceptance rules) to noobcash's UTXO-batch blocks, and is grounded in
// original_source/noobcash/backend/block.py for the exact reset-and-replay
// sequence spec §4.3 requires.
package blockengine

import (
	"fmt"
	"time"

	"github.com/noobcash/noobcash-go/internal/canonical"
	"github.com/noobcash/noobcash-go/internal/cryptoutil"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/txengine"
)

// Outcome is the result of Validate (spec §4.3).
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeDropped   Outcome = "dropped"
	OutcomeError     Outcome = "error"
	OutcomeConsensus Outcome = "consensus"
)

// HashPreimage builds the canonical preimage for a block's current_hash:
// {transactions, nonce} — exactly the two fields spec §4.1 names.
func HashPreimage(transactions []string, nonce uint32) ([]byte, error) {
	txs := transactions
	if txs == nil {
		txs = []string{}
	}
	return canonical.Marshal(map[string]interface{}{
		"transactions": txs,
		"nonce":        nonce,
	})
}

// ComputeHash computes a block's current_hash.
func ComputeHash(transactions []string, nonce uint32) (string, error) {
	preimage, err := HashPreimage(transactions, nonce)
	if err != nil {
		return "", err
	}
	return cryptoutil.HashHex(preimage), nil
}

// BuildGenesis assembles and installs the genesis block: index 0,
// previous_hash sentinel "1", nonce 0, PoW waived (spec §3, §4.3
// "create_genesis").
func BuildGenesis(genesisTx *ledger.Transaction) (*ledger.Block, error) {
	txJSON, err := EncodeTransaction(genesisTx)
	if err != nil {
		return nil, err
	}
	transactions := []string{txJSON}
	hash, err := ComputeHash(transactions, 0)
	if err != nil {
		return nil, err
	}
	return &ledger.Block{
		Transactions: transactions,
		Nonce:        0,
		CurrentHash:  hash,
		PreviousHash: ledger.GenesisPreviousHash,
		Index:        0,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// State bundles the four mutable slots a block mutator reads and writes:
// chain, provisional UTXOs, committed UTXOs, and the pending pool. Callers
// (the node controller) own the state mutex; blockengine only manipulates
// the values it is handed.
type State struct {
	Chain      []*ledger.Block
	ValidUTXOs ledger.UTXOSet
	UTXOs      ledger.UTXOSet
	Pending    []*ledger.Transaction
}

// Snapshot deep-copies a State for rollback (spec §4.3, §9 "Deep-copy for
// rollback").
func (s *State) Snapshot() *State {
	chainCopy := make([]*ledger.Block, len(s.Chain))
	for i, b := range s.Chain {
		chainCopy[i] = b.Clone()
	}
	pendingCopy := make([]*ledger.Transaction, len(s.Pending))
	for i, t := range s.Pending {
		pendingCopy[i] = t.Clone()
	}
	return &State{
		Chain:      chainCopy,
		ValidUTXOs: s.ValidUTXOs.Clone(),
		UTXOs:      s.UTXOs.Clone(),
		Pending:    pendingCopy,
	}
}

// Restore overwrites s's fields with snap's (used after a failed mutation).
func (s *State) Restore(snap *State) {
	s.Chain = snap.Chain
	s.ValidUTXOs = snap.ValidUTXOs
	s.UTXOs = snap.UTXOs
	s.Pending = snap.Pending
}

// Candidate is what the miner reports on success (spec §4.5's
// create_block payload).
type Candidate struct {
	Transactions []string
	Nonce        uint32
	Hash         string
	Timestamp    string
}

// Create rebuilds and commits a locally-mined block (spec §4.3 "create").
// knownParticipants gates the re-validation of included transactions.
// Returns the appended block, or an error leaving s untouched.
func Create(s *State, cand Candidate, capacity, difficulty int, knownParticipants map[string]bool) (*ledger.Block, error) {
	if len(s.Chain) == 0 {
		return nil, fmt.Errorf("chain has no genesis block")
	}
	parent := s.Chain[len(s.Chain)-1]

	block := &ledger.Block{
		Transactions: cand.Transactions,
		Nonce:        cand.Nonce,
		CurrentHash:  cand.Hash,
		PreviousHash: parent.CurrentHash,
		Index:        uint64(len(s.Chain)),
		Timestamp:    cand.Timestamp,
	}

	if err := verifyShape(block, capacity, difficulty); err != nil {
		return nil, err
	}

	if err := applyAcceptedBlock(s, block, knownParticipants); err != nil {
		return nil, err
	}

	// Commit: the provisional snapshot becomes the committed one.
	s.ValidUTXOs = s.UTXOs.Clone()
	return block, nil
}

// Validate validates an incoming block (spec §4.3 "validate"). On
// OutcomeError s is left unchanged: applyAcceptedBlock replays the block's
// transactions against a copy of the committed UTXOs and only writes to s
// once every transaction has validated.
func Validate(s *State, wire *ledger.Block, capacity, difficulty int, knownParticipants map[string]bool) Outcome {
	if err := verifyShape(wire, capacity, difficulty); err != nil {
		return OutcomeError
	}

	if len(s.Chain) == 0 {
		return OutcomeError
	}
	parent := s.Chain[len(s.Chain)-1]

	if wire.PreviousHash == parent.CurrentHash {
		if err := applyAcceptedBlock(s, wire, knownParticipants); err != nil {
			return OutcomeError
		}
		s.ValidUTXOs = s.UTXOs.Clone()
		return OutcomeOK
	}

	for _, b := range s.Chain {
		if wire.PreviousHash == b.CurrentHash {
			// An equal-or-shorter sibling of an earlier block: keep ours.
			return OutcomeDropped
		}
	}

	// Unknown parent: the peer's chain may be longer than ours.
	return OutcomeConsensus
}

func verifyShape(block *ledger.Block, capacity, difficulty int) error {
	if len(block.Transactions) != capacity {
		return fmt.Errorf("block has %d transactions, want %d", len(block.Transactions), capacity)
	}
	hash, err := ComputeHash(block.Transactions, block.Nonce)
	if err != nil {
		return err
	}
	if hash != block.CurrentHash {
		return fmt.Errorf("block hash mismatch")
	}
	var digest [48]byte
	copy(digest[:], mustHexDecode(hash))
	if !cryptoutil.HasLeadingHexZeros(digest, difficulty) {
		return fmt.Errorf("insufficient proof of work")
	}
	return nil
}

// applyAcceptedBlock performs the reset-and-replay sequence spec §4.3
// describes for both create and validate once a block's parent is known to
// be the current tip: reset provisional UTXO to committed, clear pending,
// re-validate every included transaction (refilling provisional UTXO and
// computing used inputs), append the block, then best-effort replay of the
// previously-pending transactions that were not in this block.
func applyAcceptedBlock(s *State, block *ledger.Block, knownParticipants map[string]bool) error {
	workingUTXOs := s.ValidUTXOs.Clone()
	usedInputs := make(map[string]bool)
	includedIDs := make(map[string]bool, len(block.Transactions))

	for _, txJSON := range block.Transactions {
		tx, err := DecodeTransaction(txJSON)
		if err != nil {
			return fmt.Errorf("decode block transaction: %w", err)
		}

		status, applied := txengine.Validate(tx, knownParticipants, workingUTXOs, nil)
		if status != txengine.StatusAdded {
			// The transaction was well-formed and signed when it first
			// entered this block (the miner only batches validated
			// transactions), but validation is re-run here against this
			// block's actual predecessor state, so a conflicting
			// double-spend is still rejected.
			return fmt.Errorf("transaction %s failed replay validation", tx.ID)
		}

		for _, in := range applied.Inputs {
			usedInputs[in] = true
		}
		includedIDs[applied.ID] = true
	}

	remaining := make([]*ledger.Transaction, 0, len(s.Pending))
	for _, p := range s.Pending {
		if includedIDs[p.ID] {
			continue
		}
		conflicted := false
		for _, in := range p.Inputs {
			if usedInputs[in] {
				conflicted = true
				break
			}
		}
		if conflicted {
			continue
		}
		remaining = append(remaining, p)
	}

	s.UTXOs = workingUTXOs
	s.Pending = nil
	s.Chain = append(s.Chain, block)

	// Best-effort replay: transactions that no longer validate against the
	// post-block snapshot are silently dropped (spec §4.4).
	replayed := make([]*ledger.Transaction, 0, len(remaining))
	for _, tx := range remaining {
		status, applied := txengine.Validate(tx, knownParticipants, s.UTXOs, replayed)
		if status == txengine.StatusAdded {
			replayed = append(replayed, applied)
		}
	}
	s.Pending = replayed

	return nil
}

func mustHexDecode(s string) []byte {
	b, err := hexDecode(s)
	if err != nil {
		return nil
	}
	return b
}
