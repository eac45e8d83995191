// Package mock provides a configurable carrier adapter for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

// Client is a mock carrier. The exported fields may be changed between calls.
type Client struct {
	name string

	mu           sync.Mutex
	Cost         decimal.Decimal
	DeliveryDays int
	Status       carrier.Status
	Location     string
	Connected    bool

	OnCalculateRate     func(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error)
	OnCreateShipment    func(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error)
	OnGetTrackingStatus func(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error)

	seq       int
	shipments []carrier.ShipmentRequest
	tracked   []string
}

// New creates a mock carrier quoting 5.00 EUR with 2 day delivery.
func New(name string) *Client {
	return &Client{
		name:         name,
		Cost:         decimal.NewFromInt(5),
		DeliveryDays: 2,
		Status:       carrier.StatusInTransit,
		Location:     "Αθήνα",
		Connected:    true,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// DisplayName returns the carrier name in upper case.
func (c *Client) DisplayName() string {
	return strings.ToUpper(c.name)
}

// SupportedServices returns a single standard service.
func (c *Client) SupportedServices() []string {
	return []string{"standard"}
}

// CoverageAreas returns the whole country.
func (c *Client) CoverageAreas() []string {
	return []string{"GR"}
}

// Features returns no optional features.
func (c *Client) Features() []string {
	return nil
}

// CalculateRate returns the configured cost.
func (c *Client) CalculateRate(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error) {
	if c.OnCalculateRate != nil {
		return c.OnCalculateRate(ctx, req)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &carrier.RateQuote{
		Carrier:      c.name,
		ServiceCode:  "standard",
		Cost:         c.Cost,
		Currency:     carrier.Currency,
		DeliveryDays: c.DeliveryDays,
	}, nil
}

// CreateShipment records the request and returns a sequential tracking number.
func (c *Client) CreateShipment(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	if c.OnCreateShipment != nil {
		return c.OnCreateShipment(ctx, req)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.shipments = append(c.shipments, *req)
	tracking := fmt.Sprintf("%s%06d", strings.ToUpper(c.name), c.seq)
	eta := time.Now().AddDate(0, 0, c.DeliveryDays)
	return &carrier.ShipmentResponse{
		Carrier:           c.name,
		TrackingNumber:    tracking,
		LabelURL:          fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, tracking),
		EstimatedDelivery: &eta,
	}, nil
}

// GetTrackingStatus returns the configured status.
func (c *Client) GetTrackingStatus(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error) {
	if c.OnGetTrackingStatus != nil {
		return c.OnGetTrackingStatus(ctx, trackingNumber)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracked = append(c.tracked, trackingNumber)
	return &carrier.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         c.Status,
		RawStatus:      string(c.Status),
		Location:       c.Location,
		UpdatedAt:      time.Now(),
	}, nil
}

// TestConnection returns Connected.
func (c *Client) TestConnection(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Connected
}

// SetStatus changes the status reported by GetTrackingStatus.
func (c *Client) SetStatus(s carrier.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Status = s
}

// Shipments returns the shipment requests received so far.
func (c *Client) Shipments() []carrier.ShipmentRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]carrier.ShipmentRequest, len(c.shipments))
	copy(out, c.shipments)
	return out
}

// TrackingCalls returns how many times GetTrackingStatus reached the carrier.
func (c *Client) TrackingCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracked)
}

var _ carrier.Adapter = (*Client)(nil)
