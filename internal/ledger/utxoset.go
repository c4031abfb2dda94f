package ledger

// UTXOSet maps a participant's pubkey to their list of unspent outputs. A
// node keeps two of these (spec §3): `valid_utxos` (committed) and `utxos`
// (provisional, after replaying the pending pool).
type UTXOSet map[string][]UTXO

// NewUTXOSet creates an empty set.
func NewUTXOSet() UTXOSet {
	return make(UTXOSet)
}

// Clone performs a deep copy, used for the rollback snapshots mutators take
// on entry (spec §4.2, §4.3, §9 "Deep-copy for rollback").
func (s UTXOSet) Clone() UTXOSet {
	out := make(UTXOSet, len(s))
	for k, v := range s {
		cp := make([]UTXO, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Balance sums the amounts of every UTXO owned by pubkey.
func (s UTXOSet) Balance(pubkey string) Amount {
	var total Amount
	for _, u := range s[pubkey] {
		total += u.Amount
	}
	return total
}

// Balances returns the balance of every known participant, keyed by pubkey.
func (s UTXOSet) Balances() map[string]Amount {
	out := make(map[string]Amount, len(s))
	for k := range s {
		out[k] = s.Balance(k)
	}
	return out
}

// TotalSupply sums every balance in the set — used by the conservation
// property in spec §8 ("total supply is constant").
func (s UTXOSet) TotalSupply() Amount {
	var total Amount
	for k := range s {
		total += s.Balance(k)
	}
	return total
}
