package lifecycle

import (
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/pkg/carrier"
)

var carrierToOrder = map[carrier.Status]domain.OrderStatus{
	carrier.StatusPickedUp:       domain.OrderProcessing,
	carrier.StatusInTransit:      domain.OrderShipped,
	carrier.StatusOutForDelivery: domain.OrderShipped,
	carrier.StatusDelivered:      domain.OrderDelivered,
	carrier.StatusFailedDelivery: domain.OrderShipped,
	carrier.StatusReturned:       domain.OrderCancelled,
}

// MapCarrierStatus returns the order status a carrier status implies. The
// second result is false for statuses that must not move the order.
func MapCarrierStatus(s carrier.Status) (domain.OrderStatus, bool) {
	status, ok := carrierToOrder[s]
	return status, ok
}

var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:    {domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled},
	domain.OrderConfirmed:  {domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled},
	domain.OrderQuoted:     {domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled},
	domain.OrderProcessing: {domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled},
	domain.OrderShipped:    {domain.OrderProcessing, domain.OrderDelivered, domain.OrderCancelled},
}

// CanTransition reports whether an order may move from one status to another.
// Delivered and cancelled orders never move.
func CanTransition(from, to domain.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanShip reports whether a shipment may be created for an order in status s.
func CanShip(s domain.OrderStatus) bool {
	return CanTransition(s, domain.OrderShipped)
}
