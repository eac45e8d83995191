package mock

import (
	"github.com/shopspring/decimal"
)

var (
	perKG           = decimal.RequireFromString("0.50")
	highValueFee    = decimal.NewFromInt(2)
	highValueCutoff = decimal.NewFromInt(100)
)

// Price is the sandbox tariff used by every carrier's mock API:
// base + 0.50 per kg, plus 2.00 for declared values above 100.
func Price(base decimal.Decimal, weightKG float64, declared decimal.Decimal) decimal.Decimal {
	cost := base.Add(perKG.Mul(decimal.NewFromFloat(weightKG)))
	if declared.GreaterThan(highValueCutoff) {
		cost = cost.Add(highValueFee)
	}
	return cost.Round(2)
}
