package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket("IRON@PORT-AZURE")
	require.NoError(t, err)
	assert.Equal(t, Market{Item: "IRON", Location: "PORT-AZURE"}, m)
	assert.Equal(t, "IRON@PORT-AZURE", m.String())

	for _, bad := range []string{"", "IRON", "IRON@", "@PORT-AZURE"} {
		_, err := ParseMarket(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestOrderFillTransitions(t *testing.T) {
	o := &Order{Side: Buy, Price: 5, Quantity: 10, Remaining: 10, Status: Active}

	o.Fill(4)
	assert.Equal(t, PartiallyFilled, o.Status)
	assert.Equal(t, int64(6), o.Remaining)
	assert.True(t, o.Open())

	o.Fill(6)
	assert.Equal(t, Filled, o.Status)
	assert.Equal(t, int64(0), o.Remaining)
	assert.False(t, o.Open())
}

func TestOrderEscrowAmount(t *testing.T) {
	buy := &Order{Side: Buy, Price: 5, Remaining: 6}
	assert.Equal(t, int64(30), buy.EscrowAmount())

	sell := &Order{Side: Sell, Price: 5, Remaining: 6}
	assert.Equal(t, int64(6), sell.EscrowAmount())
}
