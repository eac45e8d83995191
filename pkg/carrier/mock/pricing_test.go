package mock_test

import (
	"testing"

	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	base := decimal.RequireFromString("5.00")

	assert.Equal(t, "5.75", mock.Price(base, 1.5, decimal.NewFromInt(40)).StringFixed(2))
	assert.Equal(t, "7.75", mock.Price(base, 1.5, decimal.NewFromInt(150)).StringFixed(2))
	assert.Equal(t, "5.75", mock.Price(base, 1.5, decimal.NewFromInt(100)).StringFixed(2), "exactly 100 is not high value")
}
