package elta

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const mockTransitDays = 4

var mockBase = decimal.RequireFromString("3.50")

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnGetRate        func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	OnGetTracking    func(ctx context.Context, voucher string) (*TrackingResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate(ctx context.Context) error {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.SimulateErrors {
		return &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}
	return nil
}

// GetRate returns the sandbox tariff.
func (m *MockAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnGetRate != nil {
		return m.OnGetRate(ctx, req)
	}

	declared, _ := decimal.NewFromString(req.DeclaredValue)
	return &RateResponse{
		Service:     req.Service,
		Total:       mock.Price(mockBase, req.WeightKG, declared).StringFixed(2),
		Currency:    "EUR",
		TransitDays: mockTransitDays,
	}, nil
}

// CreateShipment returns a random voucher.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	voucher := fmt.Sprintf("EL%09dGR", uuid.New().ID()%1000000000)
	return &ShipmentResponse{
		Voucher:          voucher,
		LabelURL:         fmt.Sprintf("https://sandbox.elta-courier.gr/labels/%s.pdf", voucher),
		ExpectedDelivery: time.Now().AddDate(0, 0, mockTransitDays).Format("2006-01-02"),
	}, nil
}

// GetTracking reports a collected then in-transit voucher.
func (m *MockAPIClient) GetTracking(ctx context.Context, voucher string) (*TrackingResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, voucher)
	}

	now := time.Now()
	return &TrackingResponse{
		Voucher: voucher,
		Events: []TrackingEvent{
			{Code: "COLLECTED", Description: "Παραλαβή αποστολής", Station: "Αθήνα", Timestamp: now.Add(-26 * time.Hour).Format(time.RFC3339)},
			{Code: "IN_TRANSIT", Description: "Σε μεταφορά", Station: "Κέντρο Διαλογής Κρυονερίου", Timestamp: now.Add(-4 * time.Hour).Format(time.RFC3339)},
		},
	}, nil
}

// Ping always succeeds unless errors are simulated.
func (m *MockAPIClient) Ping(ctx context.Context) error {
	return m.simulate(ctx)
}

var _ APIClient = (*MockAPIClient)(nil)
