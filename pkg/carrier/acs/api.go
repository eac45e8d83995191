package acs

import (
	"context"

	"github.com/shopspring/decimal"
)

// APIClient defines the ACS web service operations the adapter uses.
// Every call is an alias invocation on the ACS AutoRest endpoint.
type APIClient interface {
	// CalculatePrice runs the ACS_Price_Calculation alias.
	CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error)

	// CreateVoucher runs the ACS_Create_Voucher alias.
	CreateVoucher(ctx context.Context, req *VoucherRequest) (*VoucherResponse, error)

	// TrackingSummary runs the ACS_Trackingsummary alias.
	TrackingSummary(ctx context.Context, voucherNo string) (*TrackingResponse, error)

	// Ping checks that the service answers.
	Ping(ctx context.Context) error
}

// PriceRequest is the input of ACS_Price_Calculation.
type PriceRequest struct {
	RecipientZipcode string          `json:"Recipient_Zipcode"`
	RecipientCountry string          `json:"Recipient_Country"`
	Weight           float64         `json:"Weight"`
	CodAmount        decimal.Decimal `json:"Cod_Ammount"`
	InsuranceAmount  decimal.Decimal `json:"Insurance_Ammount"`
	DeliveryProducts string          `json:"Delivery_Products,omitempty"`
	ChargeType       int             `json:"Charge_Type"`
}

// PriceResponse is the output of ACS_Price_Calculation.
type PriceResponse struct {
	TotalAmount  decimal.Decimal `json:"Total_Ammount"`
	TransitDays  int             `json:"Transit_Days"`
	ProductTitle string          `json:"Product_Title"`
}

// VoucherRequest is the input of ACS_Create_Voucher.
type VoucherRequest struct {
	RecipientName    string          `json:"Recipient_Name"`
	RecipientAddress string          `json:"Recipient_Address"`
	RecipientZipcode string          `json:"Recipient_Zipcode"`
	RecipientRegion  string          `json:"Recipient_Region"`
	RecipientCountry string          `json:"Recipient_Country"`
	RecipientPhone   string          `json:"Recipient_Phone"`
	RecipientEmail   string          `json:"Recipient_Email,omitempty"`
	Weight           float64         `json:"Weight"`
	ItemQuantity     int             `json:"Item_Quantity"`
	CodAmount        decimal.Decimal `json:"Cod_Ammount"`
	InsuranceAmount  decimal.Decimal `json:"Insurance_Ammount"`
	DeliveryProducts string          `json:"Delivery_Products,omitempty"`
	ReferenceKey     string          `json:"Reference_Key1"`
	DeliveryNotes    string          `json:"Delivery_Notes,omitempty"`
	ChargeType       int             `json:"Charge_Type"`
}

// VoucherResponse is the output of ACS_Create_Voucher.
type VoucherResponse struct {
	VoucherNo             string `json:"Voucher_No"`
	VoucherPrintURL       string `json:"Voucher_Print_Url"`
	EstimatedDeliveryDate string `json:"Estimated_Delivery_Date"`
}

// TrackingResponse is the output of ACS_Trackingsummary.
type TrackingResponse struct {
	VoucherNo           string `json:"Voucher_No"`
	ShipmentStatus      string `json:"Shipment_Status"`
	DeliveryFlag        int    `json:"Delivery_Flag"`
	ReturnedFlag        int    `json:"Returned_Flag"`
	LastCheckpoint      string `json:"Last_Checkpoint"`
	LastCheckpointPlace string `json:"Last_Checkpoint_Station"`
	LastCheckpointTime  string `json:"Last_Checkpoint_Time"`
}

// ChargeSender bills the shipping cost to the marketplace account.
const ChargeSender = 2

// APIError represents an error reported inside an ACS response.
type APIError struct {
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
