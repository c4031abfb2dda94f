// Package mempool implements C5: the FIFO pool of validated,
// not-yet-mined transactions. It is a deliberately thin adaptation of the
// teacher's pkg/mempool/mempool.go — that package's fee-market, RBF and
// ancestor-tracking machinery has no counterpart in noobcash (transactions
// carry no fee field and the spend-all policy forbids overlapping inputs),
// so what is kept is its core contract: ordered membership with duplicate
// detection (a linear scan using wire-form equality) for block assembly.
// The pool itself is carried as a
// plain []*ledger.Transaction inside blockengine.State (the single slot the
// state mutex guards per spec §5); this package holds the free functions
// that operate on it, rather than a second, competing owner of the slice.
package mempool

import "github.com/noobcash/noobcash-go/internal/ledger"

// Contains reports whether a wire-equal transaction is already pending
// (spec §4.2 "exists" status).
func Contains(pending []*ledger.Transaction, tx *ledger.Transaction) bool {
	for _, t := range pending {
		if t.Equal(tx) {
			return true
		}
	}
	return false
}

// TakeForMining returns the first `capacity` pending transactions, ready to
// hand to the miner, along with whether the pool held enough to do so (spec
// §4.5 "start_if_needed": the miner only starts once `pending.len() >=
// BLOCK_CAPACITY").
func TakeForMining(pending []*ledger.Transaction, capacity int) ([]*ledger.Transaction, bool) {
	if len(pending) < capacity {
		return nil, false
	}
	batch := make([]*ledger.Transaction, capacity)
	copy(batch, pending[:capacity])
	return batch, true
}
