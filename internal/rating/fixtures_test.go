package rating_test

import (
	"github.com/dixis/shipping/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	zoneMainland int64 = 1
	zoneAthens   int64 = 2
	zoneIslands  int64 = 4

	tierLight  int64 = 1
	tierMedium int64 = 2
	tierHeavy  int64 = 3
	tierBulky  int64 = 4

	methodHome   int64 = 1
	methodPickup int64 = 2
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func idPtr(id int64) *int64 {
	return &id
}

func referenceData() *domain.ReferenceData {
	tenPercent := decPtr("10")
	return &domain.ReferenceData{
		Zones: []domain.ShippingZone{
			{ID: zoneMainland, Name: "Λοιπή Ηπειρωτική", Active: true},
			{ID: zoneAthens, Name: "Αθήνα", Active: true},
			{ID: zoneIslands, Name: "Νησιά", Active: false},
		},
		PostalCodeZones: []domain.PostalCodeZone{
			{Prefix: "1", ZoneID: zoneMainland},
			{Prefix: "106", ZoneID: zoneAthens},
			{Prefix: "841", ZoneID: zoneIslands},
		},
		WeightTiers: []domain.WeightTier{
			{ID: tierMedium, Code: "T2", MinGrams: 1000, MaxGrams: 3000},
			{ID: tierLight, Code: "T1", MinGrams: 0, MaxGrams: 1000},
			{ID: tierHeavy, Code: "T3", MinGrams: 3000, MaxGrams: 10000},
			{ID: tierBulky, Code: "T4", MinGrams: 10000, MaxGrams: 30000},
		},
		DeliveryMethods: []domain.DeliveryMethod{
			{ID: methodHome, Code: "HOME", Name: "Παράδοση στο σπίτι", SupportsCOD: true, SuitableForPerishable: true, SuitableForFragile: true, Active: true},
			{ID: methodPickup, Code: "PICKUP", Name: "Παραλαβή από σημείο", MaxWeightGrams: 5000, MaxLengthCM: 60, Active: true},
		},
		Rates: []domain.ShippingRate{
			{ZoneID: zoneAthens, WeightTierID: tierLight, MethodID: methodHome, Price: dec("6.00"), MultiProducerDiscount: tenPercent, MinProducersForDiscount: 2},
			{ZoneID: zoneAthens, WeightTierID: tierMedium, MethodID: methodHome, Price: dec("8.00"), MultiProducerDiscount: tenPercent, MinProducersForDiscount: 2},
			{ZoneID: zoneAthens, WeightTierID: tierHeavy, MethodID: methodHome, Price: dec("20.00"), MultiProducerDiscount: tenPercent, MinProducersForDiscount: 2},
			{ZoneID: zoneAthens, WeightTierID: tierBulky, MethodID: methodHome, Price: dec("25.00")},
			{ZoneID: zoneMainland, WeightTierID: tierLight, MethodID: methodHome, Price: dec("4.50")},
			{ZoneID: zoneMainland, WeightTierID: tierMedium, MethodID: methodHome, Price: dec("5.50")},
			{ZoneID: zoneMainland, WeightTierID: tierLight, MethodID: methodPickup, Price: dec("3.00")},
		},
		Producers: []domain.Producer{
			{ID: 10, Name: "Μελισσοκομία Κρήτης"},
			{ID: 20, Name: "Ελαιώνες Μεσσηνίας", UsesCustomShippingRates: true},
			{ID: 30, Name: "Τυροκομείο Ηπείρου", UsesCustomShippingRates: true},
			{ID: 40, Name: "Αμπελώνες Νεμέας"},
		},
		ProducerShippingMethods: []domain.ProducerShippingMethod{
			{ProducerID: 40, MethodID: methodHome, Enabled: true},
			{ProducerID: 40, MethodID: methodPickup, Enabled: false},
		},
		ProducerShippingRates: []domain.ProducerShippingRate{
			{ProducerID: 20, ZoneID: zoneAthens, WeightTierID: tierLight, MethodID: methodHome, Price: dec("4.00")},
			{ProducerID: 10, ZoneID: zoneAthens, WeightTierID: tierLight, MethodID: methodHome, Price: dec("1.00")},
		},
	}
}

func item(producerID, grams int64, qty int, price string) domain.OrderItem {
	return domain.OrderItem{
		ProducerID:  producerID,
		Name:        "προϊόν",
		WeightGrams: grams,
		Quantity:    qty,
		UnitPrice:   dec(price),
	}
}

func athensOrder(items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:            1001,
		TenantID:      1,
		PaymentMethod: domain.PaymentCard,
		Address: domain.Address{
			AddressLine1: "Πανεπιστημίου 30",
			City:         "Αθήνα",
			PostalCode:   "10679",
		},
		Items: items,
	}
}
