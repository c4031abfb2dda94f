// Package consensus implements C9: the longest-valid-chain resolver run
// when block validation reports an unknown parent. It is grounded in
// original_source/noobcash/backend/node.py's `consensus()` method (snapshot,
// per-peer chain fetch, tentative replay-from-genesis, adopt-or-restore) and
// reuses the teacher's pkg/consensus/rules.go and pkg/validation/consensus.go
// fork-choice framing — longest valid chain wins — adapted from work-weight
// comparison to plain chain length, since
// spec §3 fixes length (not weight) as the tie-breaker.
package consensus

import (
	"github.com/noobcash/noobcash-go/internal/blockengine"
	"github.com/noobcash/noobcash-go/internal/gossip"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/logging"
	"github.com/noobcash/noobcash-go/internal/txengine"
)

// PeerChainFetcher abstracts the "GET /get_blockchain/ from every peer"
// step so tests can substitute canned chains without an HTTP server.
type PeerChainFetcher interface {
	GetBlockchain(peer ledger.Participant) ([]*ledger.Block, error)
}

var _ PeerChainFetcher = (*gossip.Client)(nil)

// Resolve runs the consensus procedure of spec §4.7. s is the node's live
// state (already under the caller's state mutex); genesisBlock/genesisUTXOs
// are the retained bootstrap snapshot. peers excludes self. It mutates s in
// place when a strictly longer valid chain is found, and leaves s untouched
// otherwise.
func Resolve(
	s *blockengine.State,
	peers []ledger.Participant,
	fetcher PeerChainFetcher,
	genesisBlock *ledger.Block,
	genesisUTXOs ledger.UTXOSet,
	capacity, difficulty int,
	knownParticipants map[string]bool,
	log *logging.Logger,
) {
	champion := s.Snapshot()
	bestLen := len(champion.Chain)

	for _, peer := range peers {
		peerChain, err := fetcher.GetBlockchain(peer)
		if err != nil {
			log.WithField("peer", peer.Host).Debugf("consensus: fetch failed: %v", err)
			continue
		}

		if len(peerChain)+1 < bestLen {
			continue
		}

		candidate := &blockengine.State{
			Chain:      []*ledger.Block{genesisBlock.Clone()},
			ValidUTXOs: genesisUTXOs.Clone(),
			UTXOs:      genesisUTXOs.Clone(),
			Pending:    nil,
		}

		ok := true
		for _, block := range peerChain {
			outcome := blockengine.Validate(candidate, block, capacity, difficulty, knownParticipants)
			if outcome != blockengine.OutcomeOK {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if len(candidate.Chain) <= bestLen {
			// Not strictly longer than the current champion: keep ours
			// (spec §4.7 tie-break).
			continue
		}

		// Best-effort replay of the locally pending transactions that
		// survived onto the adopted chain (spec §4.7 step 4).
		replayed := make([]*ledger.Transaction, 0, len(champion.Pending))
		for _, tx := range champion.Pending {
			status, applied := txengine.Validate(tx, knownParticipants, candidate.UTXOs, replayed)
			if status == txengine.StatusAdded {
				replayed = append(replayed, applied)
			}
		}
		candidate.Pending = replayed

		champion = candidate
		bestLen = len(candidate.Chain)
	}

	s.Restore(champion)
}
