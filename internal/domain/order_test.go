package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_LimitRequiresPositivePrice(t *testing.T) {
	o := &Order{Kind: Limit, Price: 0, OriginalQuantity: 1, RemainingQuantity: 1}
	assert.ErrorIs(t, o.Validate(), ErrMissingPrice)
}

func TestValidate_StopRequiresPositiveStopPrice(t *testing.T) {
	o := &Order{Kind: Stop, StopPrice: 0, OriginalQuantity: 1, RemainingQuantity: 1}
	assert.ErrorIs(t, o.Validate(), ErrMissingStopPrice)
}

func TestValidate_RejectsZeroQuantity(t *testing.T) {
	o := &Order{Kind: Market, OriginalQuantity: 0}
	assert.ErrorIs(t, o.Validate(), ErrZeroQuantity)
}

func TestValidate_RejectsRemainingExceedingOriginal(t *testing.T) {
	o := &Order{Kind: Market, OriginalQuantity: 5, RemainingQuantity: 6}
	assert.ErrorIs(t, o.Validate(), ErrBadRemaining)
}

func TestValidate_AcceptsWellFormedLimit(t *testing.T) {
	o := &Order{Kind: Limit, Price: 100, OriginalQuantity: 5, RemainingQuantity: 5}
	assert.NoError(t, o.Validate())
}

func TestFilled_ReportsZeroRemaining(t *testing.T) {
	o := &Order{OriginalQuantity: 5, RemainingQuantity: 0}
	assert.True(t, o.Filled())
}

func TestSide_Opposite(t *testing.T) {
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, Filled.Terminal())
	assert.True(t, Cancelled.Terminal())
	assert.True(t, Rejected.Terminal())
	assert.False(t, New.Terminal())
	assert.False(t, PartiallyFilled.Terminal())
}
