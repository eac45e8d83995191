package postgres

import (
	"time"

	"github.com/dixis/shipping/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ZoneModel is a row of shipping_zones.
type ZoneModel struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"type:varchar(255);not null"`
	Boundary string `gorm:"type:text"`
	Active   bool   `gorm:"not null;default:true"`
}

func (ZoneModel) TableName() string { return "shipping_zones" }

// PostalCodeZoneModel is a row of postal_code_zones.
type PostalCodeZoneModel struct {
	ID     int64  `gorm:"primaryKey"`
	Prefix string `gorm:"type:varchar(10);not null;uniqueIndex"`
	ZoneID int64  `gorm:"not null;index"`
}

func (PostalCodeZoneModel) TableName() string { return "postal_code_zones" }

// WeightTierModel is a row of weight_tiers.
type WeightTierModel struct {
	ID          int64  `gorm:"primaryKey"`
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(255)"`
	MinGrams    int64  `gorm:"column:min_weight_grams;not null"`
	MaxGrams    int64  `gorm:"column:max_weight_grams;not null"`
}

func (WeightTierModel) TableName() string { return "weight_tiers" }

// DeliveryMethodModel is a row of delivery_methods.
type DeliveryMethodModel struct {
	ID                    int64  `gorm:"primaryKey"`
	Code                  string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                  string `gorm:"type:varchar(255);not null"`
	MaxWeightGrams        int64  `gorm:"not null;default:0"`
	MaxLengthCM           int    `gorm:"column:max_length_cm;not null;default:0"`
	MaxWidthCM            int    `gorm:"column:max_width_cm;not null;default:0"`
	MaxHeightCM           int    `gorm:"column:max_height_cm;not null;default:0"`
	SupportsCOD           bool   `gorm:"column:supports_cod;not null;default:false"`
	SuitableForPerishable bool   `gorm:"not null;default:false"`
	SuitableForFragile    bool   `gorm:"not null;default:false"`
	Active                bool   `gorm:"not null;default:true"`
}

func (DeliveryMethodModel) TableName() string { return "delivery_methods" }

// ShippingRateModel is a row of shipping_rates.
type ShippingRateModel struct {
	ID                      int64            `gorm:"primaryKey"`
	ZoneID                  int64            `gorm:"not null;uniqueIndex:idx_rate_tuple"`
	WeightTierID            int64            `gorm:"not null;uniqueIndex:idx_rate_tuple"`
	MethodID                int64            `gorm:"column:delivery_method_id;not null;uniqueIndex:idx_rate_tuple"`
	Price                   decimal.Decimal  `gorm:"type:numeric(10,2);not null"`
	MultiProducerDiscount   *decimal.Decimal `gorm:"type:numeric(5,2)"`
	MinProducersForDiscount int              `gorm:"not null;default:0"`
}

func (ShippingRateModel) TableName() string { return "shipping_rates" }

// ProducerModel is a row of producers, limited to shipping columns.
type ProducerModel struct {
	ID                      int64  `gorm:"primaryKey"`
	Name                    string `gorm:"type:varchar(255);not null"`
	UsesCustomShippingRates bool   `gorm:"not null;default:false"`
}

func (ProducerModel) TableName() string { return "producers" }

// ProducerShippingMethodModel is a row of producer_shipping_methods.
type ProducerShippingMethodModel struct {
	ID         int64 `gorm:"primaryKey"`
	ProducerID int64 `gorm:"not null;uniqueIndex:idx_producer_method"`
	MethodID   int64 `gorm:"column:delivery_method_id;not null;uniqueIndex:idx_producer_method"`
	Enabled    bool  `gorm:"column:is_enabled;not null;default:true"`
}

func (ProducerShippingMethodModel) TableName() string { return "producer_shipping_methods" }

// ProducerShippingRateModel is a row of producer_shipping_rates.
type ProducerShippingRateModel struct {
	ID           int64           `gorm:"primaryKey"`
	ProducerID   int64           `gorm:"not null;uniqueIndex:idx_producer_rate_tuple"`
	ZoneID       int64           `gorm:"not null;uniqueIndex:idx_producer_rate_tuple"`
	WeightTierID int64           `gorm:"not null;uniqueIndex:idx_producer_rate_tuple"`
	MethodID     int64           `gorm:"column:delivery_method_id;not null;uniqueIndex:idx_producer_rate_tuple"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (ProducerShippingRateModel) TableName() string { return "producer_shipping_rates" }

// ProducerFreeShippingModel is a row of producer_free_shipping.
type ProducerFreeShippingModel struct {
	ID         int64           `gorm:"primaryKey"`
	ProducerID int64           `gorm:"not null;index"`
	ZoneID     *int64          `gorm:"index"`
	MethodID   *int64          `gorm:"column:delivery_method_id"`
	Threshold  decimal.Decimal `gorm:"column:free_shipping_threshold;type:numeric(10,2);not null"`
}

func (ProducerFreeShippingModel) TableName() string { return "producer_free_shipping" }

// ExtraWeightChargeModel is a row of extra_weight_charges.
type ExtraWeightChargeModel struct {
	ID        int64           `gorm:"primaryKey"`
	ZoneID    int64           `gorm:"not null;index"`
	MethodID  *int64          `gorm:"column:delivery_method_id"`
	RatePerKG decimal.Decimal `gorm:"column:price_per_kg;type:numeric(10,2);not null"`
}

func (ExtraWeightChargeModel) TableName() string { return "extra_weight_charges" }

// OrderModel is a row of orders. The shipping address is kept as jsonb.
type OrderModel struct {
	ID              int64                              `gorm:"primaryKey"`
	TenantID        int64                              `gorm:"not null;index"`
	Number          string                             `gorm:"column:order_number;type:varchar(50);not null"`
	Status          string                             `gorm:"type:varchar(30);not null;index"`
	PaymentMethod   string                             `gorm:"type:varchar(30)"`
	TotalAmount     decimal.Decimal                    `gorm:"type:numeric(10,2);not null"`
	ShippingAddress datatypes.JSONType[domain.Address] `gorm:"type:jsonb"`
	Items           []OrderItemModel                   `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time                          `gorm:"not null"`
	UpdatedAt       time.Time                          `gorm:"not null"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel is a row of order_items.
type OrderItemModel struct {
	ID          int64           `gorm:"primaryKey"`
	OrderID     int64           `gorm:"not null;index"`
	ProducerID  int64           `gorm:"not null;index"`
	Name        string          `gorm:"column:product_name;type:varchar(255)"`
	WeightGrams int64           `gorm:"not null;default:0"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	LengthCM    float64         `gorm:"column:length_cm"`
	WidthCM     float64         `gorm:"column:width_cm"`
	HeightCM    float64         `gorm:"column:height_cm"`
	Perishable  bool            `gorm:"not null;default:false"`
	Fragile     bool            `gorm:"not null;default:false"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// ShipmentModel is a row of shipments. One per order, and tracking numbers
// are unique per carrier.
type ShipmentModel struct {
	ID                int64      `gorm:"primaryKey"`
	TenantID          int64      `gorm:"not null;index"`
	OrderID           int64      `gorm:"not null;uniqueIndex"`
	Carrier           string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_carrier_tracking"`
	TrackingNumber    string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_carrier_tracking"`
	LabelURL          string     `gorm:"type:text"`
	Status            string     `gorm:"type:varchar(30);not null"`
	CarrierStatus     string     `gorm:"type:varchar(100)"`
	Location          string     `gorm:"type:varchar(255)"`
	EstimatedDelivery *time.Time `gorm:"type:timestamptz"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

func (ShipmentModel) TableName() string { return "shipments" }

type integrationCredentials struct {
	BaseURL   string            `json:"base_url"`
	APIKey    string            `json:"api_key"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// IntegrationSettingModel is a row of integration_settings.
type IntegrationSettingModel struct {
	ID        int64                                      `gorm:"primaryKey"`
	TenantID  int64                                      `gorm:"not null;uniqueIndex:idx_tenant_service"`
	Service   string                                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_tenant_service"`
	Active    bool                                       `gorm:"column:is_active;not null;default:true"`
	Settings  datatypes.JSONType[integrationCredentials] `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (IntegrationSettingModel) TableName() string { return "integration_settings" }

// IntegrationLogModel is a row of integration_logs.
type IntegrationLogModel struct {
	ID        string         `gorm:"type:uuid;primaryKey"`
	TenantID  int64          `gorm:"not null;index"`
	Service   string         `gorm:"type:varchar(50);not null"`
	Action    string         `gorm:"type:varchar(50);not null;index"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Outcome   string         `gorm:"column:status;type:varchar(20);not null"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (IntegrationLogModel) TableName() string { return "integration_logs" }

// allModels lists every table in dependency order.
func allModels() []any {
	return []any{
		&ZoneModel{},
		&PostalCodeZoneModel{},
		&WeightTierModel{},
		&DeliveryMethodModel{},
		&ShippingRateModel{},
		&ProducerModel{},
		&ProducerShippingMethodModel{},
		&ProducerShippingRateModel{},
		&ProducerFreeShippingModel{},
		&ExtraWeightChargeModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ShipmentModel{},
		&IntegrationSettingModel{},
		&IntegrationLogModel{},
	}
}
