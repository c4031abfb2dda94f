// Package txengine implements C3: building, signing, validating and
// applying transactions against a UTXO map. It generalizes the teacher's
// pkg/transaction (builder.go/sighash.go/validation.go) from Bitcoin's
// input-script model to noobcash's spend-all UTXO model, and is grounded in
// original_source/noobcash/backend/transaction.py for the exact validation
// order spec §4.2 requires.
package txengine

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/noobcash/noobcash-go/internal/canonical"
	"github.com/noobcash/noobcash-go/internal/cryptoutil"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/mempool"
)

// Status is the outcome of Validate (spec §4.2).
type Status string

const (
	StatusAdded  Status = "added"
	StatusExists Status = "exists"
	StatusError  Status = "error"
)

// HashPreimage builds the canonical preimage object for a transaction's id:
// {sender, recipient, amount, inputs} — exactly the fields spec §4.1 names,
// nothing else (outputs are derived, never hashed).
func HashPreimage(t *ledger.Transaction) ([]byte, error) {
	inputs := t.Inputs
	if inputs == nil {
		inputs = []string{}
	}
	return canonical.Marshal(map[string]interface{}{
		"sender":    t.Sender,
		"recipient": t.Recipient,
		"amount":    t.Amount,
		"inputs":    inputs,
	})
}

// ComputeID computes the transaction id: hex SHA-384 of the hash preimage.
func ComputeID(t *ledger.Transaction) (string, error) {
	preimage, err := HashPreimage(t)
	if err != nil {
		return "", err
	}
	return cryptoutil.HashHex(preimage), nil
}

// Sign finalizes a transaction: computes and sets its id, then signs the
// same digest with the sender's private key.
func Sign(t *ledger.Transaction, priv *cryptoutil.PrivateKey) error {
	preimage, err := HashPreimage(t)
	if err != nil {
		return err
	}
	digest := cryptoutil.Hash384(preimage)
	t.ID = hexDigest(digest)

	sig, err := priv.Sign(digest)
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	t.Signature = base64Encode(sig)
	return nil
}

// Create builds, signs and applies a spend-all transaction from selfPubKey
// to recipient for amount, per spec §4.2 "create". utxos is the provisional
// UTXO map; it is mutated only on success.
func Create(priv *cryptoutil.PrivateKey, selfPubKey, recipient string, amount ledger.Amount, utxos ledger.UTXOSet, knownParticipants map[string]bool) (*ledger.Transaction, error) {
	if recipient == selfPubKey {
		return nil, fmt.Errorf("cannot send to self")
	}
	if !knownParticipants[recipient] {
		return nil, fmt.Errorf("unknown recipient")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	senderUTXOs := utxos[selfPubKey]
	inputs := make([]string, len(senderUTXOs))
	var budget ledger.Amount
	for i, u := range senderUTXOs {
		inputs[i] = u.ID
		budget += u.Amount
	}
	if budget < amount {
		return nil, fmt.Errorf("insufficient funds: budget %s < amount %s", budget, amount)
	}

	tx := &ledger.Transaction{
		Sender:    selfPubKey,
		Recipient: recipient,
		Amount:    amount,
		Inputs:    inputs,
	}
	if err := Sign(tx, priv); err != nil {
		return nil, err
	}

	change := budget - amount
	tx.Outputs = []ledger.UTXO{
		{ID: tx.ID, Who: selfPubKey, Amount: change},
		{ID: tx.ID, Who: recipient, Amount: amount},
	}

	// Spend-all: the sender's entire set is replaced by the single change
	// output; the recipient gains one more output. This mirrors
	// create_transaction in original_source exactly.
	utxos[selfPubKey] = []ledger.UTXO{tx.Outputs[0]}
	utxos[recipient] = append(utxos[recipient], tx.Outputs[1])

	return tx, nil
}

// CreateGenesis builds the self-directed genesis transaction crediting the
// coordinator with 100*N (spec §4.2 "create_genesis").
func CreateGenesis(priv *cryptoutil.PrivateKey, coordinatorPubKey string, numParticipants int) (*ledger.Transaction, error) {
	tx := &ledger.Transaction{
		Sender:    coordinatorPubKey,
		Recipient: coordinatorPubKey,
		Amount:    ledger.Amount(100 * numParticipants * 100),
		Inputs:    []string{},
	}
	if err := Sign(tx, priv); err != nil {
		return nil, err
	}
	tx.Outputs = []ledger.UTXO{
		{ID: tx.ID, Who: coordinatorPubKey, Amount: tx.Amount},
	}
	return tx, nil
}

// Validate validates an incoming transaction against the validation order
// of spec §4.2 and, on success, mutates utxos in the same way Create does.
// pending is only read (for the "exists" check); appending the returned
// transaction to the pool is left to the caller. It returns (status,
// transaction-or-nil).
//
// Any failure leaves utxos and pending untouched: everything up to the
// mutation step is checked against copies before anything is written.
func Validate(tx *ledger.Transaction, knownParticipants map[string]bool, utxos ledger.UTXOSet, pending []*ledger.Transaction) (Status, *ledger.Transaction) {
	if mempool.Contains(pending, tx) {
		for _, p := range pending {
			if p.Equal(tx) {
				return StatusExists, p
			}
		}
	}

	if err := validateShape(tx, knownParticipants); err != nil {
		return StatusError, nil
	}

	preimage, err := HashPreimage(tx)
	if err != nil {
		return StatusError, nil
	}
	digest := cryptoutil.Hash384(preimage)
	if tx.ID != hexDigest(digest) {
		return StatusError, nil
	}

	senderKey, err := cryptoutil.ParsePublicKeyPEM(tx.Sender)
	if err != nil {
		return StatusError, nil
	}
	sig, err := base64Decode(tx.Signature)
	if err != nil {
		return StatusError, nil
	}
	if !senderKey.Verify(digest, sig) {
		return StatusError, nil
	}

	if err := checkDistinctInputs(tx); err != nil {
		return StatusError, nil
	}

	change, err := consumeInputs(utxos, tx)
	if err != nil {
		return StatusError, nil
	}

	if !outputsMatch(tx, change) {
		return StatusError, nil
	}

	commitOutputs(utxos, tx)
	return StatusAdded, tx
}

func validateShape(tx *ledger.Transaction, knownParticipants map[string]bool) error {
	if tx.Sender == "" || tx.Recipient == "" {
		return fmt.Errorf("missing sender/recipient")
	}
	if tx.Sender == tx.Recipient {
		return fmt.Errorf("sender equals recipient")
	}
	if !knownParticipants[tx.Sender] || !knownParticipants[tx.Recipient] {
		return fmt.Errorf("unknown participant")
	}
	if tx.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

func checkDistinctInputs(tx *ledger.Transaction) error {
	seen := make(map[string]bool, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if seen[in] {
			return fmt.Errorf("duplicate input %s", in)
		}
		if in == tx.ID {
			return fmt.Errorf("input references own id")
		}
		seen[in] = true
	}
	return nil
}

// consumeInputs resolves tx.Inputs against utxos[tx.Sender] on a working
// copy, returning the change amount. It does not mutate utxos; call
// commitOutputs after all checks pass.
func consumeInputs(utxos ledger.UTXOSet, tx *ledger.Transaction) (ledger.Amount, error) {
	senderUTXOs := append([]ledger.UTXO(nil), utxos[tx.Sender]...)

	var sum ledger.Amount
	for _, inputID := range tx.Inputs {
		found := -1
		for i, u := range senderUTXOs {
			if u.ID == inputID && u.Who == tx.Sender {
				found = i
				break
			}
		}
		if found == -1 {
			return 0, fmt.Errorf("input %s not found in sender's utxos", inputID)
		}
		sum += senderUTXOs[found].Amount
		senderUTXOs = append(senderUTXOs[:found], senderUTXOs[found+1:]...)
	}

	if sum < tx.Amount {
		return 0, fmt.Errorf("insufficient input amount")
	}
	return sum - tx.Amount, nil
}

func outputsMatch(tx *ledger.Transaction, change ledger.Amount) bool {
	if len(tx.Outputs) != 2 {
		return false
	}
	want0 := ledger.UTXO{ID: tx.ID, Who: tx.Sender, Amount: change}
	want1 := ledger.UTXO{ID: tx.ID, Who: tx.Recipient, Amount: tx.Amount}
	return tx.Outputs[0].Equal(want0) && tx.Outputs[1].Equal(want1)
}

// commitOutputs applies the already-validated transaction to utxos:
// replaces the sender's set with only the change output and appends the
// recipient output.
func commitOutputs(utxos ledger.UTXOSet, tx *ledger.Transaction) {
	utxos[tx.Sender] = []ledger.UTXO{tx.Outputs[0]}
	utxos[tx.Recipient] = append(utxos[tx.Recipient], tx.Outputs[1])
}

func hexDigest(d [48]byte) string {
	return hex.EncodeToString(d[:])
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func base64Decode(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
