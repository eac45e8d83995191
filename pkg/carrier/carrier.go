// Package carrier provides an abstraction layer for Greek courier integrations.
package carrier

import (
	"context"
)

// Adapter defines the interface that all courier integrations must implement.
// Adapters are built once per tenant from typed Settings and keep no state
// between calls.
type Adapter interface {
	// Name returns the provider key (e.g., "elta", "acs", "speedex", "courier_center").
	Name() string

	// DisplayName returns the human readable carrier name.
	DisplayName() string

	// SupportedServices lists the carrier's service codes.
	SupportedServices() []string

	// CoverageAreas lists the regions the carrier serves.
	CoverageAreas() []string

	// Features lists optional capabilities such as cod or saturday_delivery.
	Features() []string

	// CalculateRate returns the carrier's price for shipping a parcel.
	CalculateRate(ctx context.Context, req *RateRequest) (*RateQuote, error)

	// CreateShipment books a shipment and returns its tracking number.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	// GetTrackingStatus returns the latest normalized status of a shipment.
	GetTrackingStatus(ctx context.Context, trackingNumber string) (*TrackingStatus, error)

	// TestConnection reports whether the carrier API is reachable with the
	// configured credentials.
	TestConnection(ctx context.Context) bool
}
