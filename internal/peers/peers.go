// Package peers implements C7: the participant directory, the genesis
// snapshot retained for consensus re-validation, and the node's local
// authentication token. It generalizes the teacher's pkg/network/peer
// address-book bookkeeping (peer.go's id/address table) from a dynamic
// gossip-discovered set to noobcash's fixed, bootstrap-closed membership.
package peers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/noobcash/noobcash-go/internal/ledger"
)

// Directory is the fixed participant table plus the bootstrap artifacts a
// node must retain for the lifetime of the process (spec §3 "Node local
// state").
type Directory struct {
	Self         ledger.Participant
	Participants map[int]ledger.Participant // by id, id 0 = coordinator
	Token        string

	GenesisBlock *ledger.Block
	GenesisUTXOs ledger.UTXOSet
}

// New creates an empty directory with a freshly generated local token.
func New() *Directory {
	return &Directory{
		Participants: make(map[int]ledger.Participant),
		Token:        uuid.NewString(),
	}
}

// Add registers a participant, rejecting a duplicate id or pubkey (spec §6
// "400 if unknown-to-role / duplicate").
func (d *Directory) Add(p ledger.Participant) error {
	if _, exists := d.Participants[p.ID]; exists {
		return fmt.Errorf("participant id %d already registered", p.ID)
	}
	for _, existing := range d.Participants {
		if existing.PubKey == p.PubKey {
			return fmt.Errorf("pubkey already registered")
		}
	}
	d.Participants[p.ID] = p
	return nil
}

// Len returns the number of registered participants.
func (d *Directory) Len() int {
	return len(d.Participants)
}

// Known reports whether pubkey belongs to a registered participant.
func (d *Directory) Known(pubkey string) bool {
	for _, p := range d.Participants {
		if p.PubKey == pubkey {
			return true
		}
	}
	return false
}

// KnownSet returns the participant pubkeys as a membership set, the shape
// txengine/blockengine validation expects.
func (d *Directory) KnownSet() map[string]bool {
	out := make(map[string]bool, len(d.Participants))
	for _, p := range d.Participants {
		out[p.PubKey] = true
	}
	return out
}

// Peers returns every participant except self, the broadcast fan-out list
// (spec §4.6 "Fan-out list is all participants except self").
func (d *Directory) Peers() []ledger.Participant {
	out := make([]ledger.Participant, 0, len(d.Participants))
	for _, p := range d.Participants {
		if p.ID == d.Self.ID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ByID looks up a participant by id. create_transaction requests name
// their recipient by pubkey, so that path does not go through ByID.
func (d *Directory) ByID(id int) (ledger.Participant, bool) {
	p, ok := d.Participants[id]
	return p, ok
}

// ValidToken reports whether tok matches the node's local authentication
// token (spec §6 "Authentication").
func (d *Directory) ValidToken(tok string) bool {
	return tok != "" && tok == d.Token
}
