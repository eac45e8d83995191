package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the canonical order lifecycle state.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderQuoted     OrderStatus = "quoted"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentMethod values relevant to shipping.
const (
	PaymentCOD  = "cod"
	PaymentCard = "card"
)

// Address is a Greek delivery address.
type Address struct {
	Name         string `json:"name" validate:"omitempty,max=255"`
	AddressLine1 string `json:"address_line_1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line_2,omitempty" validate:"omitempty,max=255"`
	City         string `json:"city" validate:"required,max=100"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code" validate:"required,gr_postcode"`
	Country      string `json:"country,omitempty" validate:"omitempty,iso3166_1_alpha2"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// OrderItem is one line of an order. Dimensions are per unit in centimetres.
type OrderItem struct {
	ID          int64           `json:"id"`
	ProducerID  int64           `json:"producer_id"`
	Name        string          `json:"name"`
	WeightGrams int64           `json:"weight_grams"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LengthCM    float64         `json:"length_cm,omitempty"`
	WidthCM     float64         `json:"width_cm,omitempty"`
	HeightCM    float64         `json:"height_cm,omitempty"`
	Perishable  bool            `json:"perishable,omitempty"`
	Fragile     bool            `json:"fragile,omitempty"`
}

// Subtotal returns unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order aggregates items, possibly from several producers, shipped to one address.
type Order struct {
	ID            int64           `json:"id"`
	TenantID      TenantID        `json:"tenant_id"`
	Number        string          `json:"order_number"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Address       Address         `json:"shipping_address"`
	Items         []OrderItem     `json:"items"`
	Shipment      *Shipment       `json:"shipment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IsCOD reports whether the order is paid on delivery.
func (o *Order) IsCOD() bool {
	return o.PaymentMethod == PaymentCOD
}

// HasShipment reports whether a carrier shipment already exists for the order.
func (o *Order) HasShipment() bool {
	return o.Shipment != nil && o.Shipment.TrackingNumber != ""
}

// ProducerIDs returns the distinct producers in first-seen order.
func (o *Order) ProducerIDs() []int64 {
	seen := make(map[int64]bool, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.ProducerID] {
			seen[it.ProducerID] = true
			ids = append(ids, it.ProducerID)
		}
	}
	return ids
}

// ItemsOf returns the items sold by one producer.
func (o *Order) ItemsOf(producerID int64) []OrderItem {
	var items []OrderItem
	for _, it := range o.Items {
		if it.ProducerID == producerID {
			items = append(items, it)
		}
	}
	return items
}

// WeightGrams sums item weight times quantity. Items without a weight count as
// defaultItemGrams per unit.
func WeightGrams(items []OrderItem, defaultItemGrams int64) int64 {
	var total int64
	for _, it := range items {
		w := it.WeightGrams
		if w <= 0 {
			w = defaultItemGrams
		}
		total += w * int64(it.Quantity)
	}
	return total
}
