package couriercenter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// APIClient defines the Courier Center REST operations.
type APIClient interface {
	GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error)
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
	GetTracking(ctx context.Context, awb string) (*TrackingResponse, error)
	Health(ctx context.Context) error
}

// Dimensions in centimetres.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RateRequest is the body of POST /rates.
type RateRequest struct {
	Service       string          `json:"service"`
	Postcode      string          `json:"postcode"`
	Country       string          `json:"country"`
	WeightKG      float64         `json:"weight_kg"`
	Dimensions    *Dimensions     `json:"dimensions,omitempty"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	CODAmount     decimal.Decimal `json:"cod_amount"`
}

// RateResponse is the priced service.
type RateResponse struct {
	Service     string          `json:"service"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	TransitDays int             `json:"transit_days"`
}

// Consignee is the receiving party.
type Consignee struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ShipmentRequest is the body of POST /shipments.
type ShipmentRequest struct {
	Reference     string          `json:"reference"`
	Service       string          `json:"service"`
	Consignee     Consignee       `json:"consignee"`
	WeightKG      float64         `json:"weight_kg"`
	Contents      string          `json:"contents,omitempty"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
	CODAmount     decimal.Decimal `json:"cod_amount"`
	Extras        []string        `json:"extras,omitempty"`
}

// ShipmentResponse is the created airway bill.
type ShipmentResponse struct {
	AWB               string `json:"awb"`
	LabelURL          string `json:"label_url"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

// TrackingResponse is the current state of an airway bill.
type TrackingResponse struct {
	AWB        string    `json:"awb"`
	Status     string    `json:"status"`
	StatusText string    `json:"status_text"`
	Location   string    `json:"location"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// APIError is the error body returned by the REST API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}
