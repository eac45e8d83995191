package orchestrator

import (
	"github.com/dixis/shipping/internal/address"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

// RateRequestFromOrder describes an order as a single parcel for carrier
// pricing. Items without a weight count defaultItemGrams per unit.
func RateRequestFromOrder(order *domain.Order, defaultItemGrams int64) *carrier.RateRequest {
	parcel := carrier.Parcel{
		WeightKG:      float64(domain.WeightGrams(order.Items, defaultItemGrams)) / 1000,
		DeclaredValue: order.TotalAmount,
	}
	if order.IsCOD() {
		parcel.CODAmount = order.TotalAmount
	} else {
		parcel.CODAmount = decimal.Zero
	}
	return &carrier.RateRequest{
		Reference: order.Number,
		Recipient: address.ToCarrier(address.Normalize(order.Address)),
		Parcel:    parcel,
	}
}
