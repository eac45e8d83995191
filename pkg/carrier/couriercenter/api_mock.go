package couriercenter

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/shopspring/decimal"
)

const mockTransitDays = 3

var mockBase = decimal.RequireFromString("4.00")

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors bool

	OnGetRate        func(ctx context.Context, req *RateRequest) (*RateResponse, error)
	OnCreateShipment func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	OnGetTracking    func(ctx context.Context, awb string) (*TrackingResponse, error)

	seq atomic.Int64
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) failure() error {
	if m.SimulateErrors {
		return &APIError{Code: "mock_error", Message: "Simulated API error"}
	}
	return nil
}

func (m *MockAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	if err := m.failure(); err != nil {
		return nil, err
	}
	if m.OnGetRate != nil {
		return m.OnGetRate(ctx, req)
	}
	return &RateResponse{
		Service:     req.Service,
		Amount:      mock.Price(mockBase, req.WeightKG, req.DeclaredValue),
		Currency:    "EUR",
		TransitDays: mockTransitDays,
	}, nil
}

func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	if err := m.failure(); err != nil {
		return nil, err
	}
	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	awb := fmt.Sprintf("CC%010d", m.seq.Add(1))
	return &ShipmentResponse{
		AWB:               awb,
		LabelURL:          "https://sandbox.courier.gr/awb/" + awb + ".pdf",
		EstimatedDelivery: time.Now().AddDate(0, 0, mockTransitDays).Format("2006-01-02"),
	}, nil
}

func (m *MockAPIClient) GetTracking(ctx context.Context, awb string) (*TrackingResponse, error) {
	if err := m.failure(); err != nil {
		return nil, err
	}
	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, awb)
	}
	return &TrackingResponse{
		AWB:        awb,
		Status:     "in_transit",
		StatusText: "Σε μεταφορά",
		Location:   "Αθήνα",
		UpdatedAt:  time.Now().Add(-time.Hour),
	}, nil
}

func (m *MockAPIClient) Health(ctx context.Context) error {
	return m.failure()
}

var _ APIClient = (*MockAPIClient)(nil)
