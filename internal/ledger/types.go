// Package ledger holds the wire data model of spec §3: UTXOs,
// transactions, blocks and participants. It mirrors the teacher's
// pkg/types package (plain structs, hash/id as the identity) but swaps
// Bitcoin's binary header/txin/txout shape for noobcash's UTXO-and-JSON
// model.
package ledger

// UTXO is an unspent transaction output: {id, who, amount} (spec §3).
type UTXO struct {
	ID     string `json:"id"`
	Who    string `json:"who"`
	Amount Amount `json:"amount"`
}

// Equal reports identity equality: the (id, who, amount) triple.
func (u UTXO) Equal(o UTXO) bool {
	return u.ID == o.ID && u.Who == o.Who && u.Amount == o.Amount
}

// Transaction is a signed transfer between two participants (spec §3).
type Transaction struct {
	Sender    string   `json:"sender"`
	Recipient string   `json:"recipient"`
	Amount    Amount   `json:"amount"`
	Inputs    []string `json:"inputs"`
	ID        string   `json:"id"`
	Signature string   `json:"signature"`
	Outputs   []UTXO   `json:"outputs"`
}

// Equal reports wire-form equality, used for pending-pool membership tests
// (spec §4.4, §8) — equality is defined over the canonical wire form, not
// struct identity, because two transactions with different in-memory
// representations can still be the same transaction.
func (t *Transaction) Equal(o *Transaction) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Sender != o.Sender || t.Recipient != o.Recipient || t.Amount != o.Amount ||
		t.ID != o.ID || t.Signature != o.Signature || len(t.Inputs) != len(o.Inputs) || len(t.Outputs) != len(o.Outputs) {
		return false
	}
	for i := range t.Inputs {
		if t.Inputs[i] != o.Inputs[i] {
			return false
		}
	}
	for i := range t.Outputs {
		if !t.Outputs[i].Equal(o.Outputs[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, used when callers need to mutate a working
// copy without perturbing pool/state entries.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	out := *t
	out.Inputs = append([]string(nil), t.Inputs...)
	out.Outputs = append([]UTXO(nil), t.Outputs...)
	return &out
}

// Block is a chain link: a batch of transactions plus the PoW header
// fields (spec §3).
type Block struct {
	Transactions []string `json:"transactions"` // canonical-json string per tx
	Nonce        uint32   `json:"nonce"`
	CurrentHash  string   `json:"current_hash"`
	PreviousHash string   `json:"previous_hash"`
	Index        uint64   `json:"index"`
	Timestamp    string   `json:"timestamp"`
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := *b
	out.Transactions = append([]string(nil), b.Transactions...)
	return &out
}

// GenesisPreviousHash is the sentinel previous_hash of the genesis block
// (spec §3).
const GenesisPreviousHash = "1"

// Participant is a fixed member of the network (spec §3). id=0 is the
// coordinator.
type Participant struct {
	ID     int    `json:"id"`
	Host   string `json:"host"`
	PubKey string `json:"pubkey"`
}
