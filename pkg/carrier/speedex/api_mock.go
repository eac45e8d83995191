package speedex

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const mockDeliveryDays = 3

var mockBase = decimal.RequireFromString("4.50")

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCalculatePrice    func(ctx context.Context, req *PriceRequest) (*PriceResponse, error)
	OnCreateBOL         func(ctx context.Context, req *BOLRequest) (*BOLResponse, error)
	OnGetTraceByVoucher func(ctx context.Context, voucher string) (*TraceResponse, error)
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
		return &APIError{ReturnCode: -99, Message: "Simulated API error"}
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
		TotalPrice:   mock.Price(mockBase, req.WeightKG, req.DeclaredValue),
		DeliveryDays: mockDeliveryDays,
	}, nil
}

// CreateBOL returns a random voucher.
func (m *MockAPIClient) CreateBOL(ctx context.Context, req *BOLRequest) (*BOLResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnCreateBOL != nil {
		return m.OnCreateBOL(ctx, req)
	}

	voucher := fmt.Sprintf("SPX%09d", uuid.New().ID()%1000000000)
	return &BOLResponse{
		VoucherCode:  voucher,
		LabelURL:     "https://sandbox.speedex.gr/vouchers/" + voucher + ".pdf",
		DeliveryDate: time.Now().AddDate(0, 0, mockDeliveryDays).Format("2006-01-02"),
	}, nil
}

// GetTraceByVoucher reports a picked then in-transit voucher.
func (m *MockAPIClient) GetTraceByVoucher(ctx context.Context, voucher string) (*TraceResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnGetTraceByVoucher != nil {
		return m.OnGetTraceByVoucher(ctx, voucher)
	}

	now := time.Now()
	return &TraceResponse{
		VoucherCode: voucher,
		Checkpoints: []Checkpoint{
			{Status: "PICKED", Description: "Παραλαβή", Branch: "Αθήνα", Date: now.Add(-20 * time.Hour).Format(timeLayout)},
			{Status: "TRANSIT", Description: "Σε διακίνηση", Branch: "Κεντρικό Hub", Date: now.Add(-2 * time.Hour).Format(timeLayout)},
		},
	}, nil
}

// Ping always succeeds unless errors are simulated.
func (m *MockAPIClient) Ping(ctx context.Context) error {
	return m.simulate(ctx)
}

var _ APIClient = (*MockAPIClient)(nil)
