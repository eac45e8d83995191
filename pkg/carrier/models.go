package carrier

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the normalized shipment status every adapter reports.
type Status string

const (
	StatusPickedUp       Status = "picked_up"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusFailedDelivery Status = "failed_delivery"
	StatusReturned       Status = "returned"
)

// Currency used by every Greek carrier.
const Currency = "EUR"

// Address represents a Greek delivery address.
type Address struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	CountryCode  string // ISO 3166-1 alpha-2, "GR"
	Phone        string
	Email        string
}

// Parcel describes what is shipped.
type Parcel struct {
	WeightKG      float64
	LengthCM      float64
	WidthCM       float64
	HeightCM      float64
	DeclaredValue decimal.Decimal
	Description   string
	CODAmount     decimal.Decimal // zero when not cash on delivery
}

// ServiceOptions are per-shipment service flags.
type ServiceOptions struct {
	SignatureRequired bool
	Insurance         bool
	SaturdayDelivery  bool
}

// RateRequest asks a carrier to price a parcel.
type RateRequest struct {
	Reference string
	Recipient Address
	Parcel    Parcel
}

// RateQuote is a carrier's price for a parcel.
type RateQuote struct {
	Carrier      string
	ServiceCode  string
	Cost         decimal.Decimal
	Currency     string
	DeliveryDays int
}

// ShipmentRequest books a shipment.
type ShipmentRequest struct {
	Reference string // marketplace order number
	Recipient Address
	Parcel    Parcel
	Options   ServiceOptions
}

// ShipmentResponse is the carrier's booking confirmation.
type ShipmentResponse struct {
	Carrier           string
	TrackingNumber    string
	LabelURL          string
	EstimatedDelivery *time.Time
}

// TrackingStatus is the latest known state of a shipment.
type TrackingStatus struct {
	TrackingNumber string
	Status         Status
	RawStatus      string
	Location       string
	Description    string
	UpdatedAt      time.Time
}

// Descriptor is the static description of a carrier.
type Descriptor struct {
	Key               string
	DisplayName       string
	SupportedServices []string
	CoverageAreas     []string
	Features          []string
}

// Describe collects the static description of a.
func Describe(a Adapter) Descriptor {
	return Descriptor{
		Key:               a.Name(),
		DisplayName:       a.DisplayName(),
		SupportedServices: a.SupportedServices(),
		CoverageAreas:     a.CoverageAreas(),
		Features:          a.Features(),
	}
}
