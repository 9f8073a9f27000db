package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBreakdown(t *testing.T) {
	b := CalculateBreakdown(1000)

	assert.Equal(t, 1000.0, b.Price)
	assert.Equal(t, 100.0, b.Commission)
	assert.Equal(t, 50.0, b.ServiceFee)
	assert.Equal(t, 30.0, b.PlatformFee)
	assert.Equal(t, 820.0, b.Payout)
}

func TestCalculateBreakdown_RoundsToCents(t *testing.T) {
	b := CalculateBreakdown(12.34)

	assert.Equal(t, 1.23, b.Commission)
	assert.Equal(t, 0.62, b.ServiceFee)
	assert.Equal(t, 0.37, b.PlatformFee)
	assert.Equal(t, 10.12, b.Payout)
}

func TestCalculateBreakdown_InvalidPrice(t *testing.T) {
	assert.Equal(t, PriceBreakdown{}, CalculateBreakdown(-5))
}
