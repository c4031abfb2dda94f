// Package node implements C10: the node controller. It owns the single
// state mutex spec §5 mandates, runs the bootstrap state machine of spec
// §4.8, and dispatches every inbound message to C3/C4/C5/C7/C9 while
// arbitrating the miner's lifecycle. It generalizes the teacher's
// cmd/phase_11/main.go `Node` struct (config + chain + wallet + servers +
// miner, Start/Stop) from a single-process Bitcoin full node to noobcash's
// coordinator/peer bootstrap protocol, and is grounded step-by-step in
// original_source/noobcash/backend/node.py for the exact state transitions.
package node

import (
	"fmt"
	"sync"

	"github.com/noobcash/noobcash-go/internal/blockengine"
	"github.com/noobcash/noobcash-go/internal/config"
	"github.com/noobcash/noobcash-go/internal/cryptoutil"
	"github.com/noobcash/noobcash-go/internal/gossip"
	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/logging"
	"github.com/noobcash/noobcash-go/internal/mempool"
	"github.com/noobcash/noobcash-go/internal/miner"
	"github.com/noobcash/noobcash-go/internal/peers"
	"github.com/noobcash/noobcash-go/internal/txengine"
)

// Phase is the node's bootstrap lifecycle state (spec §4.8).
type Phase string

const (
	PhaseUninit      Phase = "uninit"
	PhaseRegistering Phase = "registering"
	PhaseReady       Phase = "ready"
	PhaseShutdown    Phase = "shutdown"
)

// Controller is the single process-wide node instance. All exported
// methods that mutate state acquire mu at entry and release it on every
// return path (spec §5).
type Controller struct {
	mu  sync.Mutex
	cfg *config.NodeConfig
	log *logging.Logger

	phase Phase

	priv *cryptoutil.PrivateKey
	pub  *cryptoutil.PublicKey

	dir   *peers.Directory
	chain *blockengine.State

	gossip *gossip.Client
	miner  *miner.Supervisor

	blocksMined int

	// coordinator-only bootstrap bookkeeping
	expectedParticipants int
	nextParticipantID    int
}

// New creates an uninitialized controller.
func New(cfg *config.NodeConfig, log *logging.Logger, minerBinary string) *Controller {
	return &Controller{
		cfg:    cfg,
		log:    log,
		phase:  PhaseUninit,
		dir:    peers.New(),
		chain:  &blockengine.State{},
		gossip: gossip.New(log),
		miner:  miner.NewSupervisor(minerBinary, log),
	}
}

// Phase returns the controller's current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Token returns the node's local authentication token, used by the
// /init_server/ and /init_client/ handlers to report it to the operator.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir.Token
}

// InitServer begins the coordinator bootstrap path (spec §4.8, §6
// `/init_server/`). numParticipants must be ≥ 2.
func (c *Controller) InitServer(numParticipants int, host string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseUninit {
		return fmt.Errorf("node already initialized")
	}
	if numParticipants < 2 {
		return fmt.Errorf("num_participants must be >= 2")
	}

	if err := c.generateIdentity(); err != nil {
		return err
	}

	c.expectedParticipants = numParticipants
	c.nextParticipantID = 1

	self := ledger.Participant{ID: 0, Host: host, PubKey: c.pub.String()}
	if err := c.dir.Add(self); err != nil {
		return err
	}
	c.dir.Self = self

	c.phase = PhaseRegistering
	return nil
}

// InitClient begins the peer bootstrap path (spec §4.8, §6 `/init_client/`).
// The caller (HTTP handler) is responsible for following up with
// ConnectToCoordinator, which sends client_connect with the identity
// generated here.
func (c *Controller) InitClient(host string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseUninit {
		return fmt.Errorf("node already initialized")
	}
	if err := c.generateIdentity(); err != nil {
		return err
	}
	c.dir.Self = ledger.Participant{ID: -1, Host: host, PubKey: c.pub.String()}
	c.phase = PhaseRegistering
	return nil
}

// SelfInfo returns this node's host and pubkey. The client_connect request
// body is built by ConnectToCoordinator, which reads the same fields itself.
func (c *Controller) SelfInfo() (host, pubkey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir.Self.Host, c.pub.String()
}

// ConnectToCoordinator posts client_connect to the configured coordinator
// (spec §4.8 peer path: InitClient transitions to REGISTERING, then the
// peer announces itself). Must be called without holding mu.
func (c *Controller) ConnectToCoordinator() error {
	c.mu.Lock()
	coordinator := c.cfg.CoordinatorHost
	host := c.dir.Self.Host
	pubkey := c.pub.String()
	c.mu.Unlock()

	if coordinator == "" {
		return fmt.Errorf("no coordinator host configured")
	}
	return c.gossip.BroadcastSync(
		[]ledger.Participant{{Host: coordinator}},
		"/client_connect/",
		map[string]interface{}{"host": host, "pubkey": pubkey},
	)
}

func (c *Controller) generateIdentity() error {
	priv, err := cryptoutil.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generate keypair: %w", err)
	}
	pub, err := priv.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}
	c.priv = priv
	c.pub = pub
	return nil
}

// ClientConnect registers an incoming peer (coordinator-side, spec §6
// `/client_connect/`). Once every expected peer has registered, it
// finalizes bootstrap: builds genesis, pushes client_accepted and the
// endowment transactions synchronously.
func (c *Controller) ClientConnect(host, pubkey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRegistering || c.dir.Self.ID != 0 {
		return fmt.Errorf("not accepting connections")
	}
	if c.nextParticipantID >= c.expectedParticipants {
		return fmt.Errorf("participant table already full")
	}

	p := ledger.Participant{ID: c.nextParticipantID, Host: host, PubKey: pubkey}
	if err := c.dir.Add(p); err != nil {
		return err
	}
	c.nextParticipantID++

	if c.dir.Len() == c.expectedParticipants {
		return c.finalizeBootstrap()
	}
	return nil
}

// finalizeBootstrap runs once the coordinator's participant table is full
// (spec §4.8 "Coordinator: ... once the table is full, creates the genesis
// block, pushes client_accepted ..., then creates and broadcasts one
// 100-unit endowment transaction per other participant"). Caller holds mu.
func (c *Controller) finalizeBootstrap() error {
	numParticipants := c.dir.Len()

	genesisTx, err := txengine.CreateGenesis(c.priv, c.pub.String(), numParticipants)
	if err != nil {
		return fmt.Errorf("create genesis transaction: %w", err)
	}
	genesisBlock, err := blockengine.BuildGenesis(genesisTx)
	if err != nil {
		return fmt.Errorf("build genesis block: %w", err)
	}
	genesisUTXOs := ledger.NewUTXOSet()
	for _, o := range genesisTx.Outputs {
		genesisUTXOs[o.Who] = append(genesisUTXOs[o.Who], o)
	}

	c.dir.GenesisBlock = genesisBlock
	c.dir.GenesisUTXOs = genesisUTXOs.Clone()

	c.chain.Chain = []*ledger.Block{genesisBlock}
	c.chain.ValidUTXOs = genesisUTXOs.Clone()
	c.chain.UTXOs = genesisUTXOs.Clone()
	c.chain.Pending = nil

	participants := c.participantsSlice()
	peerList := c.dir.Peers()

	for _, p := range peerList {
		if err := c.gossip.NotifyAccepted(p, p.ID, participants, genesisBlock, genesisUTXOs); err != nil {
			c.log.WithField("peer", p.Host).Warnf("client_accepted delivery failed: %v", err)
		}
	}

	for _, p := range peerList {
		tx, err := txengine.Create(c.priv, c.pub.String(), p.PubKey, ledger.AmountFromFloat(100), c.chain.UTXOs, c.dir.KnownSet())
		if err != nil {
			return fmt.Errorf("create endowment for %s: %w", p.Host, err)
		}
		c.chain.Pending = append(c.chain.Pending, tx)
		for _, dest := range peerList {
			if err := c.gossip.SendEndowment(dest, tx); err != nil {
				c.log.WithField("peer", dest.Host).Warnf("endowment delivery failed: %v", err)
			}
		}
	}

	c.phase = PhaseReady
	return nil
}

func (c *Controller) participantsSlice() []ledger.Participant {
	out := make([]ledger.Participant, 0, c.dir.Len())
	for _, p := range c.dir.Participants {
		out = append(out, p)
	}
	return out
}

// ClientAccepted installs the state the coordinator pushed (peer-side, spec
// §6 `/client_accepted/`).
func (c *Controller) ClientAccepted(participantID int, participants []ledger.Participant, genesisBlock *ledger.Block, genesisUTXOs ledger.UTXOSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseRegistering {
		return fmt.Errorf("already accepted")
	}

	c.dir.Self.ID = participantID
	for _, p := range participants {
		if p.ID == participantID {
			continue
		}
		_ = c.dir.Add(p)
	}
	self := c.dir.Self
	self.PubKey = c.pub.String()
	c.dir.Participants[participantID] = self
	c.dir.Self = self

	c.dir.GenesisBlock = genesisBlock
	c.dir.GenesisUTXOs = genesisUTXOs.Clone()

	c.chain.Chain = []*ledger.Block{genesisBlock}
	c.chain.ValidUTXOs = genesisUTXOs.Clone()
	c.chain.UTXOs = genesisUTXOs.Clone()
	c.chain.Pending = nil

	c.phase = PhaseReady
	return nil
}

// Directory exposes the participant directory for read-only inspection (no
// HTTP handler calls it; tests use it to look up participants).
func (c *Controller) Directory() *peers.Directory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir
}
