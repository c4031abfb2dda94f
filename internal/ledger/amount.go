package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Amount is a non-negative monetary amount stored as hundredths of a coin
// (fixed point, two decimal places per spec §3) rather than a binary float,
// so that repeated addition/subtraction across the UTXO set never drifts —
// the conservation invariant in spec §8 depends on this being exact.
type Amount int64

// AmountFromFloat converts a float64 (as received over the wire) into a
// fixed-point Amount, rounding to the nearest cent.
func AmountFromFloat(f float64) Amount {
	return Amount(math.Round(f * 100))
}

// Float64 converts back to a float64 for JSON wire output.
func (a Amount) Float64() float64 {
	return float64(a) / 100
}

// String renders the amount with two decimal places.
func (a Amount) String() string {
	return strconv.FormatFloat(a.Float64(), 'f', 2, 64)
}

// MarshalJSON emits the amount as a plain JSON number, matching the wire
// format's `amount: number` field (spec §3).
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Float64())
}

// UnmarshalJSON parses a JSON number into a fixed-point Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = AmountFromFloat(f)
	return nil
}
