package domain

import (
	"encoding/json"
	"time"
)

// Shipment is the carrier-side record of an order's dispatch. At most one per order.
type Shipment struct {
	ID                int64       `json:"id"`
	TenantID          TenantID    `json:"tenant_id"`
	OrderID           int64       `json:"order_id"`
	Carrier           string      `json:"carrier"`
	TrackingNumber    string      `json:"tracking_number"`
	LabelURL          string      `json:"label_url,omitempty"`
	Status            OrderStatus `json:"status"`
	CarrierStatus     string      `json:"carrier_status,omitempty"`
	Location          string      `json:"location,omitempty"`
	EstimatedDelivery *time.Time  `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// IntegrationSetting holds one tenant's credentials for one carrier.
type IntegrationSetting struct {
	TenantID  TenantID          `json:"tenant_id"`
	Service   string            `json:"service"`
	Active    bool              `json:"active"`
	BaseURL   string            `json:"base_url"`
	APIKey    string            `json:"api_key"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// Integration log outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// IntegrationLog is an append-only audit entry.
type IntegrationLog struct {
	ID        string          `json:"id"`
	TenantID  TenantID        `json:"tenant_id"`
	Service   string          `json:"service"`
	Action    string          `json:"action"`
	Payload   json.RawMessage `json:"payload"`
	Outcome   string          `json:"outcome"`
	CreatedAt time.Time       `json:"created_at"`
}

// StatusChange is emitted when a tracking refresh moves an order to a new status.
type StatusChange struct {
	TenantID       TenantID    `json:"tenant_id"`
	OrderID        int64       `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	From           OrderStatus `json:"from"`
	To             OrderStatus `json:"to"`
	Carrier        string      `json:"carrier"`
	TrackingNumber string      `json:"tracking_number"`
	CarrierStatus  string      `json:"carrier_status"`
	Location       string      `json:"location,omitempty"`
	At             time.Time   `json:"at"`
}
