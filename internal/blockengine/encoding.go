package blockengine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/noobcash/noobcash-go/internal/canonical"
	"github.com/noobcash/noobcash-go/internal/ledger"
)

// EncodeTransaction renders a transaction as the canonical wire-form JSON
// string that is embedded in a block's Transactions list (spec §3 Block:
// "transactions: [canonical-json string]"). Exported so the miner
// subprocess, which assembles the same transactions list the block will
// eventually carry, produces byte-identical entries.
func EncodeTransaction(t *ledger.Transaction) (string, error) {
	inputs := t.Inputs
	if inputs == nil {
		inputs = []string{}
	}
	outputs := make([]interface{}, len(t.Outputs))
	for i, o := range t.Outputs {
		outputs[i] = map[string]interface{}{
			"id": o.ID, "who": o.Who, "amount": o.Amount,
		}
	}
	b, err := canonical.Marshal(map[string]interface{}{
		"sender":    t.Sender,
		"recipient": t.Recipient,
		"amount":    t.Amount,
		"inputs":    inputs,
		"id":        t.ID,
		"signature": t.Signature,
		"outputs":   outputs,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTransaction parses a wire-form transaction JSON string.
func DecodeTransaction(s string) (*ledger.Transaction, error) {
	var t ledger.Transaction
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &t, nil
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
