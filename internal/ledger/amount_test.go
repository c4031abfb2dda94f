package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFromFloatRoundsToCents(t *testing.T) {
	assert.Equal(t, Amount(10050), AmountFromFloat(100.50))
	assert.Equal(t, Amount(1), AmountFromFloat(0.006))
	assert.Equal(t, Amount(0), AmountFromFloat(0))
}

func TestAmountRoundTripsThroughJSON(t *testing.T) {
	a := AmountFromFloat(30.25)
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, "30.25", string(b))

	var back Amount
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, a, back)
}

func TestAmountArithmeticNeverDrifts(t *testing.T) {
	// The classic 0.1+0.2 float trap must not surface on fixed-point Amount.
	a := AmountFromFloat(0.1)
	b := AmountFromFloat(0.2)
	assert.Equal(t, AmountFromFloat(0.3), a+b)
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "100.00", AmountFromFloat(100).String())
}
