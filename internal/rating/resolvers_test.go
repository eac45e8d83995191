package rating_test

import (
	"testing"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneResolver_LongestPrefix(t *testing.T) {
	r, err := rating.NewZoneResolver(
		[]domain.ShippingZone{{ID: 1, Name: "Z1", Active: true}, {ID: 2, Name: "Z2", Active: true}},
		[]domain.PostalCodeZone{{Prefix: "1", ZoneID: 1}, {Prefix: "106", ZoneID: 2}},
	)
	require.NoError(t, err)

	tests := []struct {
		postal string
		want   int64
	}{
		{"10679", 2},
		{"10681", 2},
		{"11526", 1},
		{"106 79", 2},
	}
	for _, tt := range tests {
		t.Run(tt.postal, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				z, err := r.Resolve(tt.postal)
				require.NoError(t, err)
				assert.Equal(t, tt.want, z.ID)
			}
		})
	}
}

func TestZoneResolver_NotFound(t *testing.T) {
	r, err := rating.NewZoneResolver(
		[]domain.ShippingZone{{ID: 1, Active: true}},
		[]domain.PostalCodeZone{{Prefix: "1", ZoneID: 1}},
	)
	require.NoError(t, err)

	_, err = r.Resolve("54624")
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)
}

func TestZoneResolver_InactiveZoneIsSkipped(t *testing.T) {
	r, err := rating.NewZoneResolver(referenceData().Zones, referenceData().PostalCodeZones)
	require.NoError(t, err)

	_, err = r.Resolve("84100")
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)

	_, ok := r.Zone(zoneIslands)
	assert.False(t, ok)
}

func TestZoneResolver_ConfigErrors(t *testing.T) {
	zones := []domain.ShippingZone{{ID: 1, Active: true}, {ID: 2, Active: true}}

	tests := []struct {
		name     string
		mappings []domain.PostalCodeZone
	}{
		{"duplicate prefix for different zones", []domain.PostalCodeZone{{Prefix: "10", ZoneID: 1}, {Prefix: "10", ZoneID: 2}}},
		{"unknown zone", []domain.PostalCodeZone{{Prefix: "10", ZoneID: 9}}},
		{"empty prefix", []domain.PostalCodeZone{{Prefix: " ", ZoneID: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rating.NewZoneResolver(zones, tt.mappings)
			assert.Error(t, err)
		})
	}
}

func TestZoneResolver_SamePrefixSameZoneAllowed(t *testing.T) {
	_, err := rating.NewZoneResolver(
		[]domain.ShippingZone{{ID: 1, Active: true}},
		[]domain.PostalCodeZone{{Prefix: "10", ZoneID: 1}, {Prefix: "10", ZoneID: 1}},
	)
	assert.NoError(t, err)
}

func TestWeightTierResolver_Resolve(t *testing.T) {
	r, err := rating.NewWeightTierResolver([]domain.WeightTier{
		{ID: 2, Code: "T2", MinGrams: 1000, MaxGrams: 3000},
		{ID: 1, Code: "T1", MinGrams: 0, MaxGrams: 1000},
	})
	require.NoError(t, err)

	tests := []struct {
		grams int64
		want  string
	}{
		{0, "T1"},
		{999, "T1"},
		{1000, "T2"},
		{1200, "T2"},
		{2999, "T2"},
		{3000, "T2"},
		{50000, "T2"},
	}
	for _, tt := range tests {
		tier, err := r.Resolve(tt.grams)
		require.NoError(t, err)
		assert.Equal(t, tt.want, tier.Code, "weight %d", tt.grams)
	}
}

func TestWeightTierResolver_Errors(t *testing.T) {
	empty, err := rating.NewWeightTierResolver(nil)
	require.NoError(t, err)
	_, err = empty.Resolve(100)
	assert.ErrorIs(t, err, domain.ErrWeightTierNotFound)

	r, err := rating.NewWeightTierResolver([]domain.WeightTier{{Code: "T1", MinGrams: 0, MaxGrams: 1000}})
	require.NoError(t, err)
	_, err = r.Resolve(-1)
	assert.ErrorIs(t, err, domain.ErrWeightTierNotFound)
}

func TestWeightTierResolver_PartitionValidation(t *testing.T) {
	tests := []struct {
		name  string
		tiers []domain.WeightTier
	}{
		{"gap", []domain.WeightTier{{Code: "A", MinGrams: 0, MaxGrams: 1000}, {Code: "B", MinGrams: 1500, MaxGrams: 3000}}},
		{"overlap", []domain.WeightTier{{Code: "A", MinGrams: 0, MaxGrams: 2000}, {Code: "B", MinGrams: 1500, MaxGrams: 3000}}},
		{"not starting at zero", []domain.WeightTier{{Code: "A", MinGrams: 100, MaxGrams: 1000}}},
		{"empty range", []domain.WeightTier{{Code: "A", MinGrams: 0, MaxGrams: 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rating.NewWeightTierResolver(tt.tiers)
			assert.Error(t, err)
		})
	}
}

func TestRateTable_Validation(t *testing.T) {
	ok := domain.ShippingRate{ZoneID: 1, WeightTierID: 1, MethodID: 1, Price: dec("3.50")}

	_, err := rating.NewRateTable([]domain.ShippingRate{ok, ok})
	assert.Error(t, err, "duplicate tuple")

	negative := ok
	negative.Price = dec("-1")
	_, err = rating.NewRateTable([]domain.ShippingRate{negative})
	assert.Error(t, err)

	badMin := ok
	badMin.MultiProducerDiscount = decPtr("10")
	badMin.MinProducersForDiscount = 1
	_, err = rating.NewRateTable([]domain.ShippingRate{badMin})
	assert.Error(t, err)

	badPct := ok
	badPct.MultiProducerDiscount = decPtr("120")
	badPct.MinProducersForDiscount = 2
	_, err = rating.NewRateTable([]domain.ShippingRate{badPct})
	assert.Error(t, err)
}

func TestRateTable_DiscountPercent(t *testing.T) {
	table, err := rating.NewRateTable(referenceData().Rates)
	require.NoError(t, err)

	assert.True(t, table.DiscountPercent(zoneAthens, tierLight, methodHome, 1).IsZero())
	assert.True(t, dec("10").Equal(table.DiscountPercent(zoneAthens, tierLight, methodHome, 2)))
	assert.True(t, table.DiscountPercent(zoneAthens, tierBulky, methodHome, 5).IsZero())
	assert.True(t, table.DiscountPercent(zoneIslands, tierLight, methodHome, 5).IsZero())
}

func TestProducerOverrides(t *testing.T) {
	data := referenceData()
	o, err := rating.NewProducerOverrides(data.Producers, data.ProducerShippingMethods, data.ProducerShippingRates)
	require.NoError(t, err)

	price, ok := o.CustomPrice(20, zoneAthens, tierLight, methodHome)
	assert.True(t, ok)
	assert.True(t, dec("4.00").Equal(price))

	_, ok = o.CustomPrice(10, zoneAthens, tierLight, methodHome)
	assert.False(t, ok, "producer 10 has a row but has not opted into custom rates")

	assert.True(t, o.MethodEnabled(10, methodPickup), "no rows means unrestricted")
	assert.True(t, o.MethodEnabled(40, methodHome))
	assert.False(t, o.MethodEnabled(40, methodPickup))
}

func TestNewSnapshot_ReportsEveryProblem(t *testing.T) {
	data := referenceData()
	data.WeightTiers = append(data.WeightTiers, domain.WeightTier{Code: "X", MinGrams: 500, MaxGrams: 800})
	data.Rates = append(data.Rates, data.Rates[0])

	_, err := rating.NewSnapshot(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Contains(t, err.Error(), "weight tiers")
	assert.Contains(t, err.Error(), "rates")
}

func TestNewSnapshot_VersionIsStable(t *testing.T) {
	a, err := rating.NewSnapshot(referenceData())
	require.NoError(t, err)
	b, err := rating.NewSnapshot(referenceData())
	require.NoError(t, err)

	assert.Equal(t, a.Version, b.Version)
	assert.NotEmpty(t, a.Version)

	m, ok := a.Method("home")
	assert.True(t, ok)
	assert.Equal(t, methodHome, m.ID)
}

func TestSnapshot_FreeShippingSpecificity(t *testing.T) {
	data := referenceData()
	data.FreeShipping = []domain.ProducerFreeShipping{
		{ProducerID: 10, Threshold: dec("50")},
		{ProducerID: 10, ZoneID: idPtr(zoneAthens), Threshold: dec("40")},
		{ProducerID: 10, ZoneID: idPtr(zoneAthens), MethodID: idPtr(methodHome), Threshold: dec("30")},
		{ProducerID: 10, MethodID: idPtr(methodPickup), Threshold: dec("45")},
	}
	snap, err := rating.NewSnapshot(data)
	require.NoError(t, err)

	th, ok := snap.FreeShippingThreshold(10, zoneAthens, methodHome)
	require.True(t, ok)
	assert.True(t, dec("30").Equal(th))

	th, _ = snap.FreeShippingThreshold(10, zoneAthens, methodPickup)
	assert.True(t, dec("40").Equal(th))

	th, _ = snap.FreeShippingThreshold(10, zoneMainland, methodPickup)
	assert.True(t, dec("45").Equal(th))

	th, _ = snap.FreeShippingThreshold(10, zoneMainland, methodHome)
	assert.True(t, dec("50").Equal(th))

	_, ok = snap.FreeShippingThreshold(20, zoneAthens, methodHome)
	assert.False(t, ok)
}
