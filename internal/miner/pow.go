// Package miner implements C6: the isolated proof-of-work search and the
// supervision contract the node controller uses to start, stop and restart
// it. The search algorithm is grounded in the teacher's
// pkg/mining/miner.go (nonce-increment loop, leading-zero check) adapted
// from Bitcoin's header-hash target to noobcash's canonical-JSON preimage
// and hex-zero-count difficulty; the subprocess supervision model is
// grounded in original_source/noobcash/backend/node.py's pid-based
// start()/stop()/start_if_needed() (spec §4.5), since the source already
// isolates mining in a killable OS process rather than an in-process
// goroutine.
package miner

import (
	"math/rand"
	"time"

	"github.com/noobcash/noobcash-go/internal/canonical"
	"github.com/noobcash/noobcash-go/internal/cryptoutil"
)

// Result is what a successful search reports, matching the create_block
// payload shape (spec §4.5).
type Result struct {
	Transactions []string
	Nonce        uint32
	Hash         string
	Timestamp    string
}

// SeedNonce derives the starting nonce from the participant id (spec §4.5:
// "seed a 32-bit nonce with (random u32 × participant_id) mod 2^32").
func SeedNonce(participantID int) uint32 {
	r := uint32(rand.Uint32())
	return r * uint32(participantID)
}

// Search iterates nonces until the block preimage hash has `difficulty`
// leading hex zeros, or stop signals cancellation. now defaults to
// time.Now but is a parameter so callers (and tests) can fix the clock.
//
// The hashed preimage is strictly {transactions, nonce}, matching the block
// hash definition of blockengine.HashPreimage: §4.5 describes the miner's
// per-attempt hash as covering {transactions, nonce, timestamp}, but §3/§4.1
// fix current_hash as SHA-384 over {transactions, nonce} alone, and a block
// whose submitted sha does not match that recomputation is rejected by
// blockengine.Validate's shape check. Stamping every attempt with a fresh
// timestamp and hashing it would make the submitted sha nearly impossible to
// reproduce at verification time, so timestamp is generated once per
// success and carried on the result as the block's wire timestamp field —
// never part of the hash.
func Search(transactions []string, startNonce uint32, difficulty int, stop <-chan struct{}, now func() time.Time) (*Result, bool) {
	nonce := startNonce
	for {
		select {
		case <-stop:
			return nil, false
		default:
		}

		preimage, err := canonical.Marshal(map[string]interface{}{
			"transactions": transactions,
			"nonce":        nonce,
		})
		if err == nil {
			digest := cryptoutil.Hash384(preimage)
			if cryptoutil.HasLeadingHexZeros(digest, difficulty) {
				return &Result{
					Transactions: transactions,
					Nonce:        nonce,
					Hash:         cryptoutil.HashHex(preimage),
					Timestamp:    now().UTC().Format(time.RFC3339Nano),
				}, true
			}
		}

		nonce = nonce + 1 // wraps mod 2^32 by virtue of uint32 arithmetic
	}
}
