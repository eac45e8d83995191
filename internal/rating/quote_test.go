package rating_test

import (
	"context"
	"testing"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newEngine(opts rating.Options) *rating.QuoteEngine {
	return rating.NewQuoteEngine(opts, otelzap.New(zap.NewNop()), nil)
}

func mustSnapshot(t *testing.T, data *domain.ReferenceData) *rating.Snapshot {
	t.Helper()
	snap, err := rating.NewSnapshot(data)
	require.NoError(t, err)
	return snap
}

func TestQuote_SingleProducer(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(10, 1200, 1, "15.00")), "HOME")
	require.NoError(t, err)

	assert.Equal(t, zoneAthens, q.ZoneID)
	assert.Equal(t, "T2", q.WeightTierCode)
	assert.Nil(t, q.Discount, "one producer never earns the discount")
	assert.Equal(t, "8.00", q.FinalPrice.StringFixed(2))
	require.Len(t, q.Breakdown, 1)
	assert.Equal(t, rating.SourceGlobal, q.Breakdown[0].Source)
	assert.Equal(t, snap.Version, q.SnapshotVersion)
}

func TestQuote_MultiProducerDiscountOnSum(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	order := athensOrder(
		item(10, 500, 1, "9.00"),
		item(30, 500, 1, "9.00"),
		item(40, 1500, 1, "12.00"),
	)

	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, order, "HOME")
	require.NoError(t, err)

	require.Len(t, q.Breakdown, 3)
	assert.Equal(t, "6.00", q.Breakdown[0].LineTotal.StringFixed(2))
	assert.Equal(t, "6.00", q.Breakdown[1].LineTotal.StringFixed(2))
	assert.Equal(t, "8.00", q.Breakdown[2].LineTotal.StringFixed(2))
	assert.Equal(t, "20.00", q.Subtotal.StringFixed(2))

	assert.Equal(t, int64(2500), q.ChargeableWeightGrams)
	assert.Equal(t, "T2", q.WeightTierCode)
	require.NotNil(t, q.Discount)
	assert.Equal(t, 3, q.Discount.Producers)
	assert.Equal(t, "2.00", q.Discount.Amount.StringFixed(2))
	assert.Equal(t, "18.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_HeavySingleProducerNoDiscount(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(10, 4000, 1, "30.00")), "HOME")
	require.NoError(t, err)

	assert.Equal(t, "T3", q.WeightTierCode)
	assert.Nil(t, q.Discount)
	assert.Equal(t, "20.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_ExtraWeightCharge(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(10, 12500, 1, "80.00")), "HOME")
	require.NoError(t, err)

	line := q.Breakdown[0]
	assert.Equal(t, "25.00", line.BasePrice.StringFixed(2))
	assert.Equal(t, "2.70", line.ExtraWeightCharge.StringFixed(2))
	assert.Equal(t, "27.70", q.FinalPrice.StringFixed(2))
}

func TestQuote_ExtraWeightZoneRate(t *testing.T) {
	data := referenceData()
	data.ExtraWeightCharges = []domain.ExtraWeightCharge{{ZoneID: zoneAthens, RatePerKG: dec("1.50")}}
	snap := mustSnapshot(t, data)

	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(10, 12500, 1, "80.00")), "HOME")
	require.NoError(t, err)
	assert.Equal(t, "4.50", q.Breakdown[0].ExtraWeightCharge.StringFixed(2))
	assert.Equal(t, "29.50", q.FinalPrice.StringFixed(2))
}

func TestQuote_FreeShippingThreshold(t *testing.T) {
	data := referenceData()
	data.FreeShipping = []domain.ProducerFreeShipping{{ProducerID: 10, Threshold: dec("30.00")}}
	snap := mustSnapshot(t, data)
	engine := newEngine(rating.DefaultOptions())

	q, err := engine.Quote(context.Background(), snap, athensOrder(item(10, 500, 2, "20.00")), "HOME")
	require.NoError(t, err)
	assert.True(t, q.Breakdown[0].FreeShipping)
	assert.True(t, q.FinalPrice.IsZero())

	q, err = engine.Quote(context.Background(), snap, athensOrder(item(10, 500, 1, "20.00")), "HOME")
	require.NoError(t, err)
	assert.False(t, q.Breakdown[0].FreeShipping)
	assert.Equal(t, "6.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_CashOnDelivery(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	engine := newEngine(rating.DefaultOptions())

	order := athensOrder(item(10, 500, 1, "9.00"))
	order.PaymentMethod = domain.PaymentCOD
	q, err := engine.Quote(context.Background(), snap, order, "HOME")
	require.NoError(t, err)
	assert.Equal(t, "2.00", q.CODFee.StringFixed(2))
	assert.Equal(t, "8.00", q.FinalPrice.StringFixed(2))

	mainland := athensOrder(item(10, 500, 1, "9.00"))
	mainland.Address.PostalCode = "11526"
	mainland.PaymentMethod = domain.PaymentCOD
	_, err = engine.Quote(context.Background(), snap, mainland, "PICKUP")
	assert.ErrorIs(t, err, domain.ErrMethodNotAvailable)
}

func TestQuote_VolumetricWeight(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	it := item(10, 500, 1, "10.00")
	it.LengthCM, it.WidthCM, it.HeightCM = 40, 30, 20

	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(it), "HOME")
	require.NoError(t, err)

	assert.Equal(t, int64(500), q.WeightGrams)
	assert.Equal(t, int64(4800), q.ChargeableWeightGrams)
	assert.Equal(t, "20.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_CustomProducerRate(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(20, 500, 1, "12.00")), "HOME")
	require.NoError(t, err)

	assert.Equal(t, rating.SourceCustom, q.Breakdown[0].Source)
	assert.Equal(t, "4.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_DefaultItemWeight(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	q, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, athensOrder(item(10, 0, 3, "5.00")), "home")
	require.NoError(t, err)

	assert.Equal(t, int64(1500), q.WeightGrams)
	assert.Equal(t, "8.00", q.FinalPrice.StringFixed(2))
}

func TestQuote_Failures(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	engine := newEngine(rating.DefaultOptions())

	mainland := func(items ...domain.OrderItem) *domain.Order {
		o := athensOrder(items...)
		o.Address.PostalCode = "11526"
		return o
	}
	fragile := item(10, 500, 1, "5.00")
	fragile.Fragile = true
	long := item(10, 500, 1, "5.00")
	long.LengthCM = 80

	tests := []struct {
		name   string
		order  *domain.Order
		method string
		want   error
	}{
		{"no items", athensOrder(), "HOME", domain.ErrInvalidInput},
		{"unknown method", athensOrder(item(10, 500, 1, "5.00")), "DRONE", domain.ErrMethodNotAvailable},
		{"unknown zone", &domain.Order{ID: 7, Address: domain.Address{PostalCode: "54624"}, Items: []domain.OrderItem{item(10, 500, 1, "5.00")}}, "HOME", domain.ErrZoneNotFound},
		{"producer disabled method", mainland(item(40, 500, 1, "5.00")), "PICKUP", domain.ErrMethodNotAvailable},
		{"over method weight limit", mainland(item(10, 6000, 1, "5.00")), "PICKUP", domain.ErrMethodNotAvailable},
		{"over method length", mainland(long), "PICKUP", domain.ErrMethodNotAvailable},
		{"fragile on unsuitable method", mainland(fragile), "PICKUP", domain.ErrMethodNotAvailable},
		{"missing rate row", mainland(item(10, 4000, 1, "5.00")), "HOME", domain.ErrRateNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Quote(context.Background(), snap, tt.order, tt.method)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuote_DefaultZoneFallback(t *testing.T) {
	snap := mustSnapshot(t, referenceData())
	order := athensOrder(item(10, 500, 1, "5.00"))
	order.Address.PostalCode = "54624"

	_, err := newEngine(rating.DefaultOptions()).Quote(context.Background(), snap, order, "HOME")
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)

	opts := rating.DefaultOptions()
	opts.DefaultZoneID = zoneMainland
	q, err := newEngine(opts).Quote(context.Background(), snap, order, "HOME")
	require.NoError(t, err)
	assert.Equal(t, zoneMainland, q.ZoneID)
	assert.Equal(t, "4.50", q.FinalPrice.StringFixed(2))
}
