// Package gossip implements C8: fanning transactions and blocks out to the
// peer mesh. It adapts the teacher's pkg/rpc/client.go (baseURL + get/post
// helpers; responses are decoded as bare bodies, with no envelope) to
// noobcash's two broadcast disciplines: a
// fire-and-forget mode for steady-state tx/block fan-out, and a synchronous,
// wait-for-every-reply mode used only during bootstrap.
package gossip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/noobcash/noobcash-go/internal/ledger"
	"github.com/noobcash/noobcash-go/internal/logging"
)

// FireAndForgetTimeout is the very short per-peer deadline used for
// steady-state fan-out (spec §4.6: "≈1 ms"). A peer that misses the
// message will either hear about the resulting block from someone else or
// trigger consensus on the next chain-length mismatch, so losing the race
// is harmless.
const FireAndForgetTimeout = time.Millisecond

// Client posts messages to peers over HTTP.
type Client struct {
	http *http.Client
	log  *logging.Logger
}

// New creates a gossip client.
func New(log *logging.Logger) *Client {
	return &Client{http: &http.Client{}, log: log}
}

// BroadcastTransaction fans a transaction out to every peer, fire-and-forget
// (spec §4.6). It must never be called with the state mutex held.
func (c *Client) BroadcastTransaction(peers []ledger.Participant, tx *ledger.Transaction) {
	body := map[string]interface{}{"transaction": tx}
	c.fireAndForget(peers, "/receive_transaction/", body)
}

// BroadcastBlock fans a block out to every peer, fire-and-forget.
func (c *Client) BroadcastBlock(peers []ledger.Participant, block *ledger.Block) {
	body := map[string]interface{}{"block": block}
	c.fireAndForget(peers, "/receive_block/", body)
}

// fireAndForget posts body to every peer with a FireAndForgetTimeout (1 ms)
// deadline, each from its own goroutine, and
// discards the outcome; unreachable peers are logged and swallowed (spec §7
// "Network: peer unreachable during broadcast → logged, swallowed").
func (c *Client) fireAndForget(peers []ledger.Participant, path string, body interface{}) {
	for _, p := range peers {
		go func(p ledger.Participant) {
			ctx, cancel := context.WithTimeout(context.Background(), FireAndForgetTimeout)
			defer cancel()
			if _, err := c.post(ctx, p.Host+path, body); err != nil {
				c.log.WithField("peer", p.Host).Debugf("fire-and-forget to %s: %v", path, err)
			}
		}(p)
	}
}

// NotifyAccepted synchronously pushes client_accepted to a single peer
// during bootstrap (spec §4.6, §4.8). The coordinator waits for every reply
// before continuing.
func (c *Client) NotifyAccepted(peer ledger.Participant, participantID int, participants []ledger.Participant, genesis *ledger.Block, genesisUTXOs ledger.UTXOSet) error {
	body := map[string]interface{}{
		"participant_id": participantID,
		"participants":   participants,
		"genesis_block":  genesis,
		"genesis_utxos":  genesisUTXOs,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := c.post(ctx, peer.Host+"/client_accepted/", body)
	return err
}

// SendEndowment synchronously delivers an endowment transaction during
// bootstrap.
func (c *Client) SendEndowment(peer ledger.Participant, tx *ledger.Transaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := c.post(ctx, peer.Host+"/receive_transaction/", map[string]interface{}{"transaction": tx})
	return err
}

// BroadcastSync is the general synchronous fan-out used for bootstrap-only
// messages: it waits for every peer's reply and returns the first error
// encountered, if any (callers may choose to ignore individual failures).
func (c *Client) BroadcastSync(peers []ledger.Participant, path string, body interface{}) error {
	var firstErr error
	for _, p := range peers {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, err := c.post(ctx, p.Host+path, body)
		cancel()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("peer %s: %w", p.Host, err)
		}
	}
	return firstErr
}

func (c *Client) post(ctx context.Context, url string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetBlockchain fetches a peer's chain excluding genesis (spec §6
// `/get_blockchain/`), used by the consensus resolver.
func (c *Client) GetBlockchain(peer ledger.Participant) ([]*ledger.Block, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, peer.Host+"/get_blockchain/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out struct {
		Blockchain []*ledger.Block `json:"blockchain"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode blockchain from %s: %w", peer.Host, err)
	}
	return out.Blockchain, nil
}
