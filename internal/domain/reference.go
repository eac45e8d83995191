package domain

import "github.com/shopspring/decimal"

// ShippingZone is a named geographic grouping of postal-code prefixes.
type ShippingZone struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Boundary string `json:"boundary,omitempty"`
	Active   bool   `json:"active"`
}

// PostalCodeZone maps a postal-code prefix to a zone.
type PostalCodeZone struct {
	Prefix string `json:"prefix"`
	ZoneID int64  `json:"zone_id"`
}

// WeightTier covers [MinGrams, MaxGrams).
type WeightTier struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	MinGrams    int64  `json:"min_weight_grams"`
	MaxGrams    int64  `json:"max_weight_grams"`
}

// Contains reports whether grams falls inside the tier.
func (t WeightTier) Contains(grams int64) bool {
	return grams >= t.MinGrams && grams < t.MaxGrams
}

// DeliveryMethod is a fulfilment mode with physical and service constraints.
// Zero-valued limits mean unlimited.
type DeliveryMethod struct {
	ID                    int64  `json:"id"`
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	MaxWeightGrams        int64  `json:"max_weight_grams,omitempty"`
	MaxLengthCM           int    `json:"max_length_cm,omitempty"`
	MaxWidthCM            int    `json:"max_width_cm,omitempty"`
	MaxHeightCM           int    `json:"max_height_cm,omitempty"`
	SupportsCOD           bool   `json:"supports_cod"`
	SuitableForPerishable bool   `json:"suitable_for_perishable"`
	SuitableForFragile    bool   `json:"suitable_for_fragile"`
	Active                bool   `json:"active"`
}

// ShippingRate prices one (zone, tier, method) tuple.
type ShippingRate struct {
	ZoneID                  int64            `json:"zone_id"`
	WeightTierID            int64            `json:"weight_tier_id"`
	MethodID                int64            `json:"delivery_method_id"`
	Price                   decimal.Decimal  `json:"price"`
	MultiProducerDiscount   *decimal.Decimal `json:"multi_producer_discount,omitempty"`
	MinProducersForDiscount int              `json:"min_producers_for_discount,omitempty"`
}

// Producer carries the rate-related flags of a seller.
type Producer struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	UsesCustomShippingRates bool   `json:"uses_custom_shipping_rates"`
}

// ProducerShippingMethod enables or disables a method for one producer.
type ProducerShippingMethod struct {
	ProducerID int64 `json:"producer_id"`
	MethodID   int64 `json:"delivery_method_id"`
	Enabled    bool  `json:"enabled"`
}

// ProducerShippingRate overrides a ShippingRate for a producer that opted into custom rates.
type ProducerShippingRate struct {
	ProducerID   int64           `json:"producer_id"`
	ZoneID       int64           `json:"zone_id"`
	WeightTierID int64           `json:"weight_tier_id"`
	MethodID     int64           `json:"delivery_method_id"`
	Price        decimal.Decimal `json:"price"`
}

// ProducerFreeShipping waives a producer's line once its items reach Threshold.
// Nil ZoneID or MethodID match any zone or method.
type ProducerFreeShipping struct {
	ProducerID int64           `json:"producer_id"`
	ZoneID     *int64          `json:"zone_id,omitempty"`
	MethodID   *int64          `json:"delivery_method_id,omitempty"`
	Threshold  decimal.Decimal `json:"threshold"`
}

// ExtraWeightCharge is the per-kg price above the heavy-parcel threshold.
// A nil MethodID applies to every method of the zone.
type ExtraWeightCharge struct {
	ZoneID    int64           `json:"zone_id"`
	MethodID  *int64          `json:"delivery_method_id,omitempty"`
	RatePerKG decimal.Decimal `json:"rate_per_kg"`
}

// ReferenceData is the administrator-managed configuration the quote engine reads.
type ReferenceData struct {
	Zones                   []ShippingZone           `json:"zones"`
	PostalCodeZones         []PostalCodeZone         `json:"postal_code_zones"`
	WeightTiers             []WeightTier             `json:"weight_tiers"`
	DeliveryMethods         []DeliveryMethod         `json:"delivery_methods"`
	Rates                   []ShippingRate           `json:"rates"`
	Producers               []Producer               `json:"producers"`
	ProducerShippingMethods []ProducerShippingMethod `json:"producer_shipping_methods"`
	ProducerShippingRates   []ProducerShippingRate   `json:"producer_shipping_rates"`
	FreeShipping            []ProducerFreeShipping   `json:"free_shipping"`
	ExtraWeightCharges      []ExtraWeightCharge      `json:"extra_weight_charges"`
}
