package domain

import "context"

// OrderRepository reads orders for the engine. Orders belong to the wider marketplace.
type OrderRepository interface {
	GetOrder(ctx context.Context, tenant TenantID, orderID int64) (*Order, error)
}

// ShipmentRepository persists shipments and the order status they drive.
type ShipmentRepository interface {
	// RecordShipment stores s and moves the order to status in one unit of work.
	// A second shipment for the same order fails with ErrDuplicateShipment.
	RecordShipment(ctx context.Context, s *Shipment, status OrderStatus) error

	// UpdateStatus records a tracking refresh on the shipment and the order.
	UpdateStatus(ctx context.Context, tenant TenantID, orderID int64, status OrderStatus, carrierStatus, location string) error
}

// ReferenceSource loads the full reference data set.
type ReferenceSource interface {
	LoadReferenceData(ctx context.Context) (*ReferenceData, error)
}

// SettingsProvider returns per-tenant carrier credentials.
type SettingsProvider interface {
	// IntegrationSettings returns the tenant's settings keyed by carrier; missing
	// carriers are simply absent.
	IntegrationSettings(ctx context.Context, tenant TenantID) (map[string]IntegrationSetting, error)
}

// IntegrationLogSink appends audit entries.
type IntegrationLogSink interface {
	Append(ctx context.Context, entry IntegrationLog) error
}

// Notifier delivers status-change events to customers or other services.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, change StatusChange) error
}
