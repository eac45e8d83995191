package acs

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const mockTransitDays = 2

var mockBase = decimal.RequireFromString("5.00")

// MockAPIClient is a mock implementation of APIClient for testing and sandbox tenants.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCalculatePrice  func(ctx context.Context, req *PriceRequest) (*PriceResponse, error)
	OnCreateVoucher   func(ctx context.Context, req *VoucherRequest) (*VoucherResponse, error)
	OnTrackingSummary func(ctx context.Context, voucherNo string) (*TrackingResponse, error)
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

// CalculatePrice returns the sandbox tariff.
func (m *MockAPIClient) CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnCalculatePrice != nil {
		return m.OnCalculatePrice(ctx, req)
	}

	return &PriceResponse{
		TotalAmount:  mock.Price(mockBase, req.Weight, req.InsuranceAmount),
		TransitDays:  mockTransitDays,
		ProductTitle: "ACS Standard",
	}, nil
}

// CreateVoucher returns a random voucher.
func (m *MockAPIClient) CreateVoucher(ctx context.Context, req *VoucherRequest) (*VoucherResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnCreateVoucher != nil {
		return m.OnCreateVoucher(ctx, req)
	}

	voucher := fmt.Sprintf("72%08d", uuid.New().ID()%100000000)
	return &VoucherResponse{
		VoucherNo:             voucher,
		VoucherPrintURL:       fmt.Sprintf("https://sandbox.acscourier.net/vouchers/%s.pdf", voucher),
		EstimatedDeliveryDate: time.Now().AddDate(0, 0, mockTransitDays).Format("2006-01-02"),
	}, nil
}

// TrackingSummary reports every voucher as in transit.
func (m *MockAPIClient) TrackingSummary(ctx context.Context, voucherNo string) (*TrackingResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnTrackingSummary != nil {
		return m.OnTrackingSummary(ctx, voucherNo)
	}

	return &TrackingResponse{
		VoucherNo:           voucherNo,
		ShipmentStatus:      "ΜΕΤΑΦΟΡΑ",
		LastCheckpoint:      "Αναχώρηση από κέντρο διαλογής",
		LastCheckpointPlace: "Αθήνα",
		LastCheckpointTime:  time.Now().Add(-3 * time.Hour).Format(timeLayout),
	}, nil
}

// Ping always succeeds unless errors are simulated.
func (m *MockAPIClient) Ping(ctx context.Context) error {
	return m.simulate(ctx)
}

var _ APIClient = (*MockAPIClient)(nil)
