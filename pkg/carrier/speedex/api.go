package speedex

import (
	"context"
	"fmt"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

// APIClient defines the Speedex access point SOAP operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CalculatePrice prices a parcel for a destination postcode.
	CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error)

	// CreateBOL books a shipment and returns its voucher (bill of lading).
	CreateBOL(ctx context.Context, req *BOLRequest) (*BOLResponse, error)

	// GetTraceByVoucher returns the checkpoints recorded for a voucher.
	GetTraceByVoucher(ctx context.Context, voucher string) (*TraceResponse, error)

	// Ping validates the session.
	Ping(ctx context.Context) error
}

// Access point return codes.
const (
	ReturnOK             = 1
	ReturnInvalidSession = -2
	ReturnNotFound       = -5
)

// ============================================================================
// API Request/Response Types
// ============================================================================

// PriceRequest is the CalculatePrice input.
type PriceRequest struct {
	Service         string
	PostalCode      string
	WeightKG        float64
	DeclaredValue   decimal.Decimal
	CODAmount       decimal.Decimal
	InsuranceAmount decimal.Decimal
}

// PriceResponse is the CalculatePrice result.
type PriceResponse struct {
	TotalPrice   decimal.Decimal
	DeliveryDays int
}

// BOLRequest is the CreateBOL input.
type BOLRequest struct {
	CustomerReference string
	Service           string
	RecipientName     string
	RecipientAddress  string
	RecipientCity     string
	RecipientZip      string
	RecipientPhone    string
	RecipientEmail    string
	WeightKG          float64
	ItemsDescription  string
	CODAmount         decimal.Decimal
	InsuranceAmount   decimal.Decimal
	Saturday          bool
	Signature         bool
}

// BOLResponse is the CreateBOL result.
type BOLResponse struct {
	VoucherCode  string
	LabelURL     string
	DeliveryDate string
}

// TraceResponse lists the checkpoints of a voucher, oldest first.
type TraceResponse struct {
	VoucherCode string
	Checkpoints []Checkpoint
}

// Checkpoint is one scan of a voucher.
type Checkpoint struct {
	Status      string
	Description string
	Branch      string
	Date        string
}

// APIError is a non-success return code from the access point.
type APIError struct {
	ReturnCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("speedex return code %d: %s", e.ReturnCode, e.Message)
}

// Unwrap maps well-known return codes to carrier sentinels.
func (e *APIError) Unwrap() error {
	switch e.ReturnCode {
	case ReturnInvalidSession:
		return carrier.ErrAuthenticationFailed
	case ReturnNotFound:
		return carrier.ErrTrackingNotFound
	}
	return nil
}
