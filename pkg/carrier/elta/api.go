package elta

import (
	"context"
	"encoding/xml"
)

// APIClient defines the ELTA Courier XML API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// GetRate prices a parcel.
	GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error)

	// CreateShipment registers a shipment and returns its voucher.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	// GetTracking returns the latest tracking event of a voucher.
	GetTracking(ctx context.Context, voucher string) (*TrackingResponse, error)

	// Ping checks that the API answers.
	Ping(ctx context.Context) error
}

// ============================================================================
// API Request/Response Types (match ELTA Courier XML documents)
// ============================================================================

// RateRequest is the <rate-request> document.
type RateRequest struct {
	XMLName       xml.Name `xml:"rate-request"`
	Service       string   `xml:"service"`
	DestPostcode  string   `xml:"destination>postcode"`
	DestCountry   string   `xml:"destination>country"`
	WeightKG      float64  `xml:"parcel>weight"`
	LengthCM      float64  `xml:"parcel>length,omitempty"`
	WidthCM       float64  `xml:"parcel>width,omitempty"`
	HeightCM      float64  `xml:"parcel>height,omitempty"`
	DeclaredValue string   `xml:"parcel>declared-value"`
	CODAmount     string   `xml:"parcel>cod-amount,omitempty"`
}

// RateResponse is the <rate> document.
type RateResponse struct {
	XMLName     xml.Name `xml:"rate"`
	Service     string   `xml:"service"`
	Total       string   `xml:"price>total"`
	Currency    string   `xml:"price>currency"`
	TransitDays int      `xml:"transit-days"`
}

// Recipient is the consignee block of a shipment.
type Recipient struct {
	Name     string `xml:"name"`
	Street   string `xml:"street"`
	City     string `xml:"city"`
	Postcode string `xml:"postcode"`
	Country  string `xml:"country"`
	Phone    string `xml:"phone"`
	Email    string `xml:"email,omitempty"`
}

// ShipmentRequest is the <shipment> document.
type ShipmentRequest struct {
	XMLName       xml.Name  `xml:"shipment"`
	Reference     string    `xml:"reference"`
	Service       string    `xml:"service"`
	Recipient     Recipient `xml:"recipient"`
	WeightKG      float64   `xml:"parcel>weight"`
	Description   string    `xml:"parcel>description"`
	DeclaredValue string    `xml:"parcel>declared-value"`
	CODAmount     string    `xml:"parcel>cod-amount,omitempty"`
	Signature     bool      `xml:"options>signature"`
	Insurance     bool      `xml:"options>insurance"`
	Saturday      bool      `xml:"options>saturday"`
}

// ShipmentResponse is the <shipment-confirmation> document.
type ShipmentResponse struct {
	XMLName          xml.Name `xml:"shipment-confirmation"`
	Voucher          string   `xml:"voucher"`
	LabelURL         string   `xml:"label-url"`
	ExpectedDelivery string   `xml:"expected-delivery"`
}

// TrackingResponse is the <tracking> document.
type TrackingResponse struct {
	XMLName xml.Name        `xml:"tracking"`
	Voucher string          `xml:"voucher"`
	Events  []TrackingEvent `xml:"events>event"`
}

// TrackingEvent is one scan of a voucher.
type TrackingEvent struct {
	Code        string `xml:"code"`
	Description string `xml:"description"`
	Station     string `xml:"station"`
	Timestamp   string `xml:"timestamp"`
}

// APIError represents an error from the ELTA API.
type APIError struct {
	XMLName     xml.Name `xml:"error"`
	Code        string   `xml:"code"`
	Description string   `xml:"message"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}
