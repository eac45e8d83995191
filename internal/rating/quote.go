package rating

import (
	"context"
	"math"
	"strings"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Price sources of a producer line.
const (
	SourceGlobal = "global"
	SourceCustom = "custom"
)

// Options tunes the quote arithmetic.
type Options struct {
	// DefaultZoneID is used when no prefix matches. Zero disables the fallback.
	DefaultZoneID             int64
	DefaultItemWeightGrams    int64
	VolumetricDivisor         float64
	ExtraWeightThresholdGrams int64
	ExtraWeightRatePerKG      decimal.Decimal
	CODFee                    decimal.Decimal
}

// DefaultOptions returns the marketplace defaults.
func DefaultOptions() Options {
	return Options{
		DefaultItemWeightGrams:    500,
		VolumetricDivisor:         5000,
		ExtraWeightThresholdGrams: 10000,
		ExtraWeightRatePerKG:      decimal.RequireFromString("0.90"),
		CODFee:                    decimal.RequireFromString("2.00"),
	}
}

// ProducerLine is the price of one producer's share of an order.
type ProducerLine struct {
	ProducerID            int64           `json:"producer_id"`
	WeightGrams           int64           `json:"weight_grams"`
	ChargeableWeightGrams int64           `json:"chargeable_weight_grams"`
	WeightTierID          int64           `json:"weight_tier_id"`
	Source                string          `json:"source"`
	BasePrice             decimal.Decimal `json:"base_price"`
	ExtraWeightCharge     decimal.Decimal `json:"extra_weight_charge"`
	FreeShipping          bool            `json:"free_shipping"`
	LineTotal             decimal.Decimal `json:"line_total"`
}

// Discount is the multi-producer reduction applied to the summed lines.
type Discount struct {
	Percent   decimal.Decimal `json:"percent"`
	Amount    decimal.Decimal `json:"amount"`
	Producers int             `json:"producers"`
}

// Quote is a priced shipping quote for a whole order.
type Quote struct {
	OrderID               int64           `json:"order_id"`
	ZoneID                int64           `json:"zone_id"`
	ZoneName              string          `json:"zone_name"`
	WeightTierID          int64           `json:"weight_tier_id"`
	WeightTierCode        string          `json:"weight_tier_code"`
	Method                string          `json:"method"`
	WeightGrams           int64           `json:"weight_grams"`
	ChargeableWeightGrams int64           `json:"chargeable_weight_grams"`
	Breakdown             []ProducerLine  `json:"per_producer_breakdown"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Discount              *Discount       `json:"discount_applied"`
	CODFee                decimal.Decimal `json:"cod_fee"`
	FinalPrice            decimal.Decimal `json:"final_price"`
	SnapshotVersion       string          `json:"snapshot_version"`
}

// QuoteEngine prices orders against a Snapshot.
type QuoteEngine struct {
	opts   Options
	logger *otelzap.Logger
	tracer trace.Tracer
}

// NewQuoteEngine creates a QuoteEngine. Zero-valued options take their defaults.
func NewQuoteEngine(opts Options, logger *otelzap.Logger, tracer trace.Tracer) *QuoteEngine {
	def := DefaultOptions()
	if opts.DefaultItemWeightGrams <= 0 {
		opts.DefaultItemWeightGrams = def.DefaultItemWeightGrams
	}
	if opts.VolumetricDivisor <= 0 {
		opts.VolumetricDivisor = def.VolumetricDivisor
	}
	if opts.ExtraWeightThresholdGrams <= 0 {
		opts.ExtraWeightThresholdGrams = def.ExtraWeightThresholdGrams
	}
	return &QuoteEngine{
		opts:   opts,
		logger: logger,
		tracer: telemetry.TracerOrNoop(tracer),
	}
}

// Quote prices order for the delivery method code. Each producer's items are
// priced on their own tier, the lines are summed, and the multi-producer
// discount of the order-level rate row is applied to the sum.
func (e *QuoteEngine) Quote(ctx context.Context, snap *Snapshot, order *domain.Order, methodCode string) (*Quote, error) {
	ctx, span := e.tracer.Start(ctx, "rating.Quote")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("delivery.method", methodCode),
	)

	if len(order.Items) == 0 {
		return nil, domain.NewError(domain.KindInvalidInput, "order %d has no items", order.ID)
	}

	method, ok := snap.Method(methodCode)
	if !ok || !method.Active {
		return nil, domain.NewError(domain.KindMethodNotAvailable, "delivery method %q is not available", methodCode)
	}

	zone, err := e.resolveZone(snap, order.Address.PostalCode)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		OrderID:         order.ID,
		ZoneID:          zone.ID,
		ZoneName:        zone.Name,
		Method:          method.Code,
		Subtotal:        decimal.Zero,
		CODFee:          decimal.Zero,
		SnapshotVersion: snap.Version,
	}

	producers := order.ProducerIDs()
	for _, producerID := range producers {
		line, err := e.priceProducer(snap, zone, method, producerID, order.ItemsOf(producerID))
		if err != nil {
			return nil, err
		}
		q.Breakdown = append(q.Breakdown, *line)
		q.Subtotal = q.Subtotal.Add(line.LineTotal)
		q.WeightGrams += line.WeightGrams
		q.ChargeableWeightGrams += line.ChargeableWeightGrams
	}

	tier, err := snap.Tiers.Resolve(q.ChargeableWeightGrams)
	if err != nil {
		return nil, err
	}
	q.WeightTierID = tier.ID
	q.WeightTierCode = tier.Code

	total := q.Subtotal
	if pct := snap.Rates.DiscountPercent(zone.ID, tier.ID, method.ID, len(producers)); pct.IsPositive() {
		amount := q.Subtotal.Mul(pct).Div(hundred).Round(2)
		q.Discount = &Discount{Percent: pct, Amount: amount, Producers: len(producers)}
		total = total.Sub(amount)
	}

	if order.IsCOD() {
		if !method.SupportsCOD {
			return nil, domain.NewError(domain.KindMethodNotAvailable, "delivery method %s does not support cash on delivery", method.Code)
		}
		q.CODFee = e.opts.CODFee
		total = total.Add(q.CODFee)
	}
	q.FinalPrice = total.Round(2)

	e.logger.Ctx(ctx).Debug("Quote computed",
		zap.Int64("order_id", order.ID),
		zap.Int64("zone_id", zone.ID),
		zap.Int64("weight_tier_id", tier.ID),
		zap.Int("producers", len(producers)),
		zap.String("final_price", q.FinalPrice.StringFixed(2)),
	)
	return q, nil
}

func (e *QuoteEngine) resolveZone(snap *Snapshot, postalCode string) (domain.ShippingZone, error) {
	zone, err := snap.Zones.Resolve(postalCode)
	if err == nil || e.opts.DefaultZoneID == 0 {
		return zone, err
	}
	if z, ok := snap.Zones.Zone(e.opts.DefaultZoneID); ok {
		return z, nil
	}
	return zone, err
}

func (e *QuoteEngine) priceProducer(snap *Snapshot, zone domain.ShippingZone, method domain.DeliveryMethod, producerID int64, items []domain.OrderItem) (*ProducerLine, error) {
	if !snap.Overrides.MethodEnabled(producerID, method.ID) {
		return nil, domain.NewError(domain.KindMethodNotAvailable, "producer %d does not ship with %s", producerID, method.Code)
	}

	weight := domain.WeightGrams(items, e.opts.DefaultItemWeightGrams)
	chargeable := weight
	if vol := e.volumetricGrams(items); vol > chargeable {
		chargeable = vol
	}
	if err := checkMethod(method, items, chargeable); err != nil {
		return nil, err
	}

	tier, err := snap.Tiers.Resolve(chargeable)
	if err != nil {
		return nil, err
	}

	line := &ProducerLine{
		ProducerID:            producerID,
		WeightGrams:           weight,
		ChargeableWeightGrams: chargeable,
		WeightTierID:          tier.ID,
		ExtraWeightCharge:     decimal.Zero,
	}

	if price, ok := snap.Overrides.CustomPrice(producerID, zone.ID, tier.ID, method.ID); ok {
		line.BasePrice, line.Source = price, SourceCustom
	} else if rate, ok := snap.Rates.Lookup(zone.ID, tier.ID, method.ID); ok {
		line.BasePrice, line.Source = rate.Price, SourceGlobal
	} else {
		return nil, domain.NewError(domain.KindRateNotConfigured,
			"no rate for zone %d tier %s method %s", zone.ID, tier.Code, method.Code)
	}

	if chargeable > e.opts.ExtraWeightThresholdGrams {
		perKG, ok := snap.ExtraWeightRate(zone.ID, method.ID)
		if !ok {
			perKG = e.opts.ExtraWeightRatePerKG
		}
		extraKG := math.Ceil(float64(chargeable-e.opts.ExtraWeightThresholdGrams) / 1000)
		line.ExtraWeightCharge = perKG.Mul(decimal.NewFromFloat(extraKG)).Round(2)
	}

	line.LineTotal = line.BasePrice.Add(line.ExtraWeightCharge).Round(2)

	if threshold, ok := snap.FreeShippingThreshold(producerID, zone.ID, method.ID); ok {
		subtotal := decimal.Zero
		for _, it := range items {
			subtotal = subtotal.Add(it.Subtotal())
		}
		if subtotal.GreaterThanOrEqual(threshold) {
			line.FreeShipping = true
			line.LineTotal = decimal.Zero
		}
	}
	return line, nil
}

func (e *QuoteEngine) volumetricGrams(items []domain.OrderItem) int64 {
	var kg float64
	for _, it := range items {
		if it.LengthCM <= 0 || it.WidthCM <= 0 || it.HeightCM <= 0 {
			continue
		}
		kg += it.LengthCM * it.WidthCM * it.HeightCM / e.opts.VolumetricDivisor * float64(it.Quantity)
	}
	return int64(math.Round(kg * 1000))
}

func checkMethod(method domain.DeliveryMethod, items []domain.OrderItem, chargeable int64) error {
	if method.MaxWeightGrams > 0 && chargeable > method.MaxWeightGrams {
		return domain.NewError(domain.KindMethodNotAvailable,
			"%d g exceeds the %d g limit of %s", chargeable, method.MaxWeightGrams, method.Code)
	}
	for _, it := range items {
		if exceeds(it.LengthCM, method.MaxLengthCM) || exceeds(it.WidthCM, method.MaxWidthCM) || exceeds(it.HeightCM, method.MaxHeightCM) {
			return domain.NewError(domain.KindMethodNotAvailable, "%s exceeds the dimensions of %s", itemLabel(it), method.Code)
		}
		if it.Perishable && !method.SuitableForPerishable {
			return domain.NewError(domain.KindMethodNotAvailable, "%s is perishable and %s is not suitable", itemLabel(it), method.Code)
		}
		if it.Fragile && !method.SuitableForFragile {
			return domain.NewError(domain.KindMethodNotAvailable, "%s is fragile and %s is not suitable", itemLabel(it), method.Code)
		}
	}
	return nil
}

func exceeds(size float64, limit int) bool {
	return limit > 0 && size > float64(limit)
}

func itemLabel(it domain.OrderItem) string {
	if name := strings.TrimSpace(it.Name); name != "" {
		return name
	}
	return "item"
}
