package lifecycle

import (
	"fmt"

	"github.com/dixis/shipping/internal/address"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

var (
	signatureThreshold = decimal.NewFromInt(100)
	insuranceThreshold = decimal.NewFromInt(50)
)

// BuildShipmentRequest turns an order into a carrier booking. The address is
// normalised and validated first; an invalid address fails with
// ErrInvalidAddress before any carrier is contacted.
func BuildShipmentRequest(order *domain.Order, defaultItemGrams int64) (*carrier.ShipmentRequest, error) {
	addr := address.Normalize(order.Address)
	if err := address.Validate(addr); err != nil {
		return nil, err
	}

	parcel := carrier.Parcel{
		WeightKG:      float64(domain.WeightGrams(order.Items, defaultItemGrams)) / 1000,
		DeclaredValue: order.TotalAmount,
		Description:   describe(order.Items),
		CODAmount:     decimal.Zero,
	}
	if order.IsCOD() {
		parcel.CODAmount = order.TotalAmount
	}

	return &carrier.ShipmentRequest{
		Reference: order.Number,
		Recipient: address.ToCarrier(addr),
		Parcel:    parcel,
		Options: carrier.ServiceOptions{
			SignatureRequired: order.TotalAmount.GreaterThan(signatureThreshold),
			Insurance:         order.TotalAmount.GreaterThan(insuranceThreshold),
		},
	}, nil
}

func describe(items []domain.OrderItem) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0].Name
	default:
		return fmt.Sprintf("%s και %d άλλα προϊόντα", items[0].Name, len(items)-1)
	}
}
