package rating

import (
	"fmt"

	"github.com/dixis/shipping/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type rateKey struct {
	zone, tier, method int64
}

// RateTable holds the global price of every (zone, tier, method) tuple.
type RateTable struct {
	rates map[rateKey]domain.ShippingRate
}

// NewRateTable rejects duplicate tuples, negative prices and malformed discount rules.
func NewRateTable(rates []domain.ShippingRate) (*RateTable, error) {
	t := &RateTable{rates: make(map[rateKey]domain.ShippingRate, len(rates))}
	for _, r := range rates {
		k := rateKey{r.ZoneID, r.WeightTierID, r.MethodID}
		if _, dup := t.rates[k]; dup {
			return nil, fmt.Errorf("duplicate rate for zone %d tier %d method %d", k.zone, k.tier, k.method)
		}
		if r.Price.IsNegative() {
			return nil, fmt.Errorf("negative price for zone %d tier %d method %d", k.zone, k.tier, k.method)
		}
		if d := r.MultiProducerDiscount; d != nil {
			if !d.IsPositive() || d.GreaterThan(hundred) {
				return nil, fmt.Errorf("discount %s out of range for zone %d tier %d method %d", d, k.zone, k.tier, k.method)
			}
			if r.MinProducersForDiscount < 2 {
				return nil, fmt.Errorf("min producers for discount must be at least 2, got %d", r.MinProducersForDiscount)
			}
		}
		t.rates[k] = r
	}
	return t, nil
}

// Lookup returns the rate of a tuple.
func (t *RateTable) Lookup(zoneID, tierID, methodID int64) (domain.ShippingRate, bool) {
	r, ok := t.rates[rateKey{zoneID, tierID, methodID}]
	return r, ok
}

// DiscountPercent returns the multi-producer discount a tuple grants to an order
// with the given number of distinct producers, or zero.
func (t *RateTable) DiscountPercent(zoneID, tierID, methodID int64, producers int) decimal.Decimal {
	r, ok := t.Lookup(zoneID, tierID, methodID)
	if !ok || r.MultiProducerDiscount == nil {
		return decimal.Zero
	}
	if producers < r.MinProducersForDiscount {
		return decimal.Zero
	}
	return *r.MultiProducerDiscount
}

type producerRateKey struct {
	producer int64
	rateKey
}

type producerMethodKey struct {
	producer, method int64
}

// ProducerOverrides holds per-producer method restrictions and custom rates.
type ProducerOverrides struct {
	custom     map[int64]bool
	restricted map[int64]bool
	methods    map[producerMethodKey]bool
	rates      map[producerRateKey]decimal.Decimal
}

// NewProducerOverrides indexes producer flags, enabled methods and custom rates.
func NewProducerOverrides(producers []domain.Producer, methods []domain.ProducerShippingMethod, rates []domain.ProducerShippingRate) (*ProducerOverrides, error) {
	o := &ProducerOverrides{
		custom:     make(map[int64]bool, len(producers)),
		restricted: make(map[int64]bool),
		methods:    make(map[producerMethodKey]bool, len(methods)),
		rates:      make(map[producerRateKey]decimal.Decimal, len(rates)),
	}
	for _, p := range producers {
		o.custom[p.ID] = p.UsesCustomShippingRates
	}
	for _, m := range methods {
		k := producerMethodKey{m.ProducerID, m.MethodID}
		if _, dup := o.methods[k]; dup {
			return nil, fmt.Errorf("producer %d method %d configured twice", m.ProducerID, m.MethodID)
		}
		o.methods[k] = m.Enabled
		o.restricted[m.ProducerID] = true
	}
	for _, r := range rates {
		k := producerRateKey{r.ProducerID, rateKey{r.ZoneID, r.WeightTierID, r.MethodID}}
		if _, dup := o.rates[k]; dup {
			return nil, fmt.Errorf("duplicate custom rate for producer %d zone %d tier %d method %d",
				r.ProducerID, r.ZoneID, r.WeightTierID, r.MethodID)
		}
		if r.Price.IsNegative() {
			return nil, fmt.Errorf("negative custom price for producer %d", r.ProducerID)
		}
		o.rates[k] = r.Price
	}
	return o, nil
}

// MethodEnabled reports whether a producer may ship with a method. Producers
// without any method rows are unrestricted.
func (o *ProducerOverrides) MethodEnabled(producerID, methodID int64) bool {
	if !o.restricted[producerID] {
		return true
	}
	return o.methods[producerMethodKey{producerID, methodID}]
}

// CustomPrice returns the producer's override price, only when the producer
// has opted into custom rates.
func (o *ProducerOverrides) CustomPrice(producerID, zoneID, tierID, methodID int64) (decimal.Decimal, bool) {
	if !o.custom[producerID] {
		return decimal.Zero, false
	}
	p, ok := o.rates[producerRateKey{producerID, rateKey{zoneID, tierID, methodID}}]
	return p, ok
}
