package node

import (
	"fmt"

	"github.com/noobcash/noobcash-go/internal/blockengine"
	"github.com/noobcash/noobcash-go/internal/consensus"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/mempool"
	"github.com/noobcash/noobcash-go/internal/txengine"
)

// ReceiveTransaction validates an incoming wire transaction (spec §6
// `/receive_transaction/`) and, on success, starts the miner if the pool
// has reached capacity.
func (c *Controller) ReceiveTransaction(tx *ledger.Transaction) (txengine.Status, error) {
	c.mu.Lock()
	status, applied := txengine.Validate(tx, c.dir.KnownSet(), c.chain.UTXOs, c.chain.Pending)
	if status == txengine.StatusAdded {
		c.chain.Pending = append(c.chain.Pending, applied)
	}
	pendingLen := len(c.chain.Pending)
	capacity := c.cfg.BlockCapacity
	batch, ready := mempool.TakeForMining(c.chain.Pending, capacity)
	self := c.dir.Self
	token := c.dir.Token
	difficulty := c.cfg.Difficulty
	c.mu.Unlock()

	if status == txengine.StatusError {
		return status, fmt.Errorf("transaction failed validation")
	}

	if ready {
		_ = pendingLen
		if err := c.miner.StartIfNeeded(len(batch), capacity, self.Host, token, self.ID, difficulty, batch); err != nil {
			c.log.Warnf("start miner: %v", err)
		}
	}
	return status, nil
}

// CreateTransaction builds and broadcasts a locally-originated transaction
// (spec §6 `/create_transaction/`, authenticated by token).
func (c *Controller) CreateTransaction(token, recipientPubkey string, amount ledger.Amount) (*ledger.Transaction, error) {
	c.mu.Lock()
	if !c.dir.ValidToken(token) {
		c.mu.Unlock()
		return nil, fmt.Errorf("invalid token")
	}

	tx, err := txengine.Create(c.priv, c.pub.String(), recipientPubkey, amount, c.chain.UTXOs, c.dir.KnownSet())
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.chain.Pending = append(c.chain.Pending, tx)

	pendingLen := len(c.chain.Pending)
	capacity := c.cfg.BlockCapacity
	batch, ready := mempool.TakeForMining(c.chain.Pending, capacity)
	self := c.dir.Self
	nodeToken := c.dir.Token
	difficulty := c.cfg.Difficulty
	peerList := c.dir.Peers()
	c.mu.Unlock()

	c.gossip.BroadcastTransaction(peerList, tx)

	if ready {
		_ = pendingLen
		if err := c.miner.StartIfNeeded(len(batch), capacity, self.Host, nodeToken, self.ID, difficulty, batch); err != nil {
			c.log.Warnf("start miner: %v", err)
		}
	}
	return tx, nil
}

// ReceiveBlock validates an incoming wire block (spec §6 `/receive_block/`):
// stop the miner, validate, run consensus on an unknown parent, then
// restart the miner if the surviving pool still meets capacity.
//
// Unconditionally stopping the miner on every inbound block, valid or not,
// is an open question the source leaves unresolved (spec §9): a peer
// flooding bogus blocks could keep this node from ever finishing a search.
func (c *Controller) ReceiveBlock(block *ledger.Block) blockengine.Outcome {
	c.miner.Stop()

	c.mu.Lock()
	backup := c.chain.Snapshot()
	outcome := blockengine.Validate(c.chain, block, c.cfg.BlockCapacity, c.cfg.Difficulty, c.dir.KnownSet())

	switch outcome {
	case blockengine.OutcomeError:
		c.chain.Restore(backup)
	case blockengine.OutcomeConsensus:
		peerList := c.dir.Peers()
		genesisBlock := c.dir.GenesisBlock
		genesisUTXOs := c.dir.GenesisUTXOs
		known := c.dir.KnownSet()
		consensus.Resolve(c.chain, peerList, c.gossip, genesisBlock, genesisUTXOs, c.cfg.BlockCapacity, c.cfg.Difficulty, known, c.log)
	}

	pendingLen := len(c.chain.Pending)
	capacity := c.cfg.BlockCapacity
	batch, ready := mempool.TakeForMining(c.chain.Pending, capacity)
	self := c.dir.Self
	token := c.dir.Token
	difficulty := c.cfg.Difficulty
	c.mu.Unlock()

	if ready {
		_ = pendingLen
		if err := c.miner.StartIfNeeded(len(batch), capacity, self.Host, token, self.ID, difficulty, batch); err != nil {
			c.log.Warnf("start miner: %v", err)
		}
	}
	return outcome
}

// CreateBlockFromMiner commits a block the local miner found (spec §6
// `/create_block/`, authenticated by token).
func (c *Controller) CreateBlockFromMiner(token string, transactions []string, nonce uint32, sha, timestamp string) error {
	c.mu.Lock()
	if !c.dir.ValidToken(token) {
		c.mu.Unlock()
		return fmt.Errorf("invalid token")
	}

	cand := blockengine.Candidate{Transactions: transactions, Nonce: nonce, Hash: sha, Timestamp: timestamp}
	block, err := blockengine.Create(c.chain, cand, c.cfg.BlockCapacity, c.cfg.Difficulty, c.dir.KnownSet())
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.blocksMined++
	peerList := c.dir.Peers()
	c.mu.Unlock()

	c.gossip.BroadcastBlock(peerList, block)
	return nil
}

// GetBlockchain returns the committed chain excluding genesis (spec §6
// `/get_blockchain/`).
func (c *Controller) GetBlockchain() []*ledger.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.chain.Chain) <= 1 {
		return nil
	}
	out := make([]*ledger.Block, len(c.chain.Chain)-1)
	copy(out, c.chain.Chain[1:])
	return out
}

// GetPendingTransactions returns the current pending pool (spec §6
// `/get_pending_transactions/`).
func (c *Controller) GetPendingTransactions() []*ledger.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ledger.Transaction, len(c.chain.Pending))
	copy(out, c.chain.Pending)
	return out
}

// BalancesCommitted returns balances keyed by participant id from the
// committed snapshot (spec §6 `/get_balance/`).
func (c *Controller) BalancesCommitted() map[int]ledger.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balancesByID(c.chain.ValidUTXOs)
}

// BalancesProvisional returns balances keyed by participant id from the
// provisional snapshot (spec §6 `/get_balance_latest/`).
func (c *Controller) BalancesProvisional() map[int]ledger.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balancesByID(c.chain.UTXOs)
}

func (c *Controller) balancesByID(utxos ledger.UTXOSet) map[int]ledger.Amount {
	out := make(map[int]ledger.Amount, c.dir.Len())
	for id, p := range c.dir.Participants {
		out[id] = utxos.Balance(p.PubKey)
	}
	return out
}

// Stats is the supplemented `/get_stats/` payload (not in the original
// spec's explicit endpoint list, but listed among "Other GETs" as operator
// diagnostics).
type Stats struct {
	ChainLength   int `json:"chain_length"`
	PendingCount  int `json:"pending_count"`
	BlocksMined   int `json:"blocks_mined"`
	ParticipantID int `json:"participant_id"`
}

// Stats reports node counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		ChainLength:   len(c.chain.Chain),
		PendingCount:  len(c.chain.Pending),
		BlocksMined:   c.blocksMined,
		ParticipantID: c.dir.Self.ID,
	}
}

// AllTransactions flattens every transaction across the committed chain,
// the supplemented `/get_transactions/` endpoint (original_source exposes
// the same view via its block explorer helper).
func (c *Controller) AllTransactions() ([]*ledger.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*ledger.Transaction
	for _, b := range c.chain.Chain {
		for _, txJSON := range b.Transactions {
			tx, err := blockengine.DecodeTransaction(txJSON)
			if err != nil {
				return nil, err
			}
			out = append(out, tx)
		}
	}
	return out, nil
}
