package memory

import (
	"time"

	"github.com/dixis/shipping/internal/domain"
	"github.com/shopspring/decimal"
)

// Seeded identifiers.
const (
	ZoneUrban        int64 = 1
	ZoneCapitals     int64 = 2
	ZoneMainland     int64 = 3
	ZoneIslands      int64 = 4
	ZoneRemote       int64 = 5
	ZoneAthens       int64 = 6
	ZoneThessaloniki int64 = 7

	MethodHome   int64 = 1
	MethodPickup int64 = 2
	MethodLocker int64 = 3
)

// zone -> method -> price per tier (2kg, 5kg, 10kg). The bulky tier reuses the
// 10kg price; anything above 10kg pays the extra weight charge on top.
var seedPrices = map[int64]map[int64][3]string{
	ZoneUrban:        {MethodHome: {"3.50", "4.50", "6.00"}, MethodPickup: {"2.50", "3.50", "5.00"}, MethodLocker: {"2.00", "3.00", "4.50"}},
	ZoneCapitals:     {MethodHome: {"4.00", "5.00", "7.00"}, MethodPickup: {"3.00", "4.00", "6.00"}, MethodLocker: {"2.50", "3.50", "5.50"}},
	ZoneMainland:     {MethodHome: {"4.50", "5.50", "8.00"}, MethodPickup: {"3.50", "4.50", "7.00"}, MethodLocker: {"3.00", "4.00", "6.50"}},
	ZoneIslands:      {MethodHome: {"5.50", "7.00", "10.00"}, MethodPickup: {"4.50", "6.00", "9.00"}, MethodLocker: {"4.00", "5.50", "8.50"}},
	ZoneRemote:       {MethodHome: {"7.00", "9.00", "13.00"}, MethodPickup: {"6.00", "8.00", "12.00"}, MethodLocker: {"5.50", "7.50", "11.50"}},
	ZoneAthens:       {MethodHome: {"3.00", "4.00", "5.50"}, MethodPickup: {"2.00", "3.00", "4.50"}, MethodLocker: {"1.50", "2.50", "4.00"}},
	ZoneThessaloniki: {MethodHome: {"3.00", "4.00", "5.50"}, MethodPickup: {"2.00", "3.00", "4.50"}, MethodLocker: {"1.50", "2.50", "4.00"}},
}

// GreekReferenceData returns the default marketplace zones, tiers, methods and rates.
func GreekReferenceData() *domain.ReferenceData {
	data := &domain.ReferenceData{
		Zones: []domain.ShippingZone{
			{ID: ZoneUrban, Name: "Αστικά Κέντρα", Active: true},
			{ID: ZoneCapitals, Name: "Πρωτεύουσες Νομών Ηπειρωτικής Ελλάδας", Active: true},
			{ID: ZoneMainland, Name: "Λοιπή Ηπειρωτική Ελλάδα & Εύβοια", Active: true},
			{ID: ZoneIslands, Name: "Νησιά (Εξαιρουμένων Δυσπρόσιτων)", Active: true},
			{ID: ZoneRemote, Name: "Δυσπρόσιτες Περιοχές", Active: true},
			{ID: ZoneAthens, Name: "Αθήνα", Active: true},
			{ID: ZoneThessaloniki, Name: "Θεσσαλονίκη", Active: true},
		},
		PostalCodeZones: postalPrefixes(),
		WeightTiers: []domain.WeightTier{
			{ID: 1, Code: "TIER_2KG", Description: "Έως 2 κιλά", MinGrams: 0, MaxGrams: 2000},
			{ID: 2, Code: "TIER_5KG", Description: "2-5 κιλά", MinGrams: 2000, MaxGrams: 5000},
			{ID: 3, Code: "TIER_10KG", Description: "5-10 κιλά", MinGrams: 5000, MaxGrams: 10000},
			{ID: 4, Code: "TIER_BULKY", Description: "Άνω των 10 κιλών", MinGrams: 10000, MaxGrams: 50000},
		},
		DeliveryMethods: []domain.DeliveryMethod{
			{ID: MethodHome, Code: "HOME", Name: "Παράδοση στο σπίτι", SupportsCOD: true, SuitableForPerishable: true, SuitableForFragile: true, Active: true},
			{ID: MethodPickup, Code: "PICKUP", Name: "Παραλαβή από κατάστημα", MaxWeightGrams: 20000, MaxLengthCM: 100, MaxWidthCM: 60, MaxHeightCM: 60, SupportsCOD: true, SuitableForFragile: true, Active: true},
			{ID: MethodLocker, Code: "LOCKER", Name: "Θυρίδα παραλαβής", MaxWeightGrams: 10000, MaxLengthCM: 60, MaxWidthCM: 40, MaxHeightCM: 40, Active: true},
		},
		Producers: []domain.Producer{
			{ID: 1, Name: "Μελισσοκομία Κρήτης"},
			{ID: 2, Name: "Ελαιώνες Μεσσηνίας", UsesCustomShippingRates: true},
			{ID: 3, Name: "Τυροκομείο Ηπείρου"},
		},
		ProducerShippingMethods: []domain.ProducerShippingMethod{
			{ProducerID: 3, MethodID: MethodHome, Enabled: true},
			{ProducerID: 3, MethodID: MethodPickup, Enabled: true},
			{ProducerID: 3, MethodID: MethodLocker, Enabled: false},
		},
		ProducerShippingRates: []domain.ProducerShippingRate{
			{ProducerID: 2, ZoneID: ZoneAthens, WeightTierID: 1, MethodID: MethodHome, Price: decimal.RequireFromString("2.00")},
			{ProducerID: 2, ZoneID: ZoneAthens, WeightTierID: 2, MethodID: MethodHome, Price: decimal.RequireFromString("3.00")},
		},
		FreeShipping: []domain.ProducerFreeShipping{
			{ProducerID: 1, Threshold: decimal.NewFromInt(60)},
		},
		ExtraWeightCharges: []domain.ExtraWeightCharge{
			{ZoneID: ZoneIslands, RatePerKG: decimal.RequireFromString("1.20")},
			{ZoneID: ZoneRemote, RatePerKG: decimal.RequireFromString("1.50")},
		},
	}

	discount := decimal.NewFromInt(10)
	for zoneID := ZoneUrban; zoneID <= ZoneThessaloniki; zoneID++ {
		for methodID := MethodHome; methodID <= MethodLocker; methodID++ {
			prices := seedPrices[zoneID][methodID]
			for tier := int64(1); tier <= 4; tier++ {
				price := prices[min(tier, 3)-1]
				rate := domain.ShippingRate{
					ZoneID:       zoneID,
					WeightTierID: tier,
					MethodID:     methodID,
					Price:        decimal.RequireFromString(price),
				}
				if methodID == MethodHome {
					rate.MultiProducerDiscount = &discount
					rate.MinProducersForDiscount = 2
				}
				data.Rates = append(data.Rates, rate)
			}
		}
	}
	return data
}

func postalPrefixes() []domain.PostalCodeZone {
	byZone := map[int64][]string{
		ZoneMainland:     {"2", "3", "4", "5", "6"},
		ZoneCapitals:     {"262", "351", "383", "412", "452", "601"},
		ZoneUrban:        {"185", "264"},
		ZoneAthens:       {"10", "11", "12", "13", "14", "15", "16", "17", "18", "19"},
		ZoneThessaloniki: {"54", "55", "56", "570"},
		ZoneIslands:      {"7", "8", "491", "681", "811", "821"},
		ZoneRemote:       {"8400", "8500", "8180"},
	}

	var out []domain.PostalCodeZone
	for zoneID := ZoneUrban; zoneID <= ZoneThessaloniki; zoneID++ {
		for _, p := range byZone[zoneID] {
			out = append(out, domain.PostalCodeZone{Prefix: p, ZoneID: zoneID})
		}
	}
	return out
}

// SampleOrders returns a few orders for local runs of the CLI and API.
func SampleOrders(tenant domain.TenantID) []domain.Order {
	created := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	athens := domain.Address{
		Name:         "Μαρία Παπαδοπούλου",
		AddressLine1: "Πανεπιστημίου 30",
		City:         "Αθήνα",
		PostalCode:   "10679",
		Phone:        "6912345678",
		Email:        "maria@example.gr",
	}
	heraklion := domain.Address{
		Name:         "Γιάννης Μαρκάκης",
		AddressLine1: "Λεωφόρος Κνωσού 12",
		City:         "Ηράκλειο",
		PostalCode:   "71202",
		Phone:        "2810123456",
	}

	return []domain.Order{
		{
			ID: 1001, TenantID: tenant, Number: "ORD-1001", Status: domain.OrderConfirmed,
			PaymentMethod: domain.PaymentCard, TotalAmount: decimal.RequireFromString("42.50"),
			Address: athens, CreatedAt: created,
			Items: []domain.OrderItem{
				{ID: 1, ProducerID: 1, Name: "Θυμαρίσιο μέλι 1kg", WeightGrams: 1100, Quantity: 1, UnitPrice: decimal.RequireFromString("14.50")},
				{ID: 2, ProducerID: 2, Name: "Ελαιόλαδο 1L", WeightGrams: 1000, Quantity: 2, UnitPrice: decimal.RequireFromString("14.00")},
			},
		},
		{
			ID: 1002, TenantID: tenant, Number: "ORD-1002", Status: domain.OrderConfirmed,
			PaymentMethod: domain.PaymentCOD, TotalAmount: decimal.RequireFromString("118.00"),
			Address: heraklion, CreatedAt: created,
			Items: []domain.OrderItem{
				{ID: 3, ProducerID: 3, Name: "Φέτα ΠΟΠ 2kg", WeightGrams: 2100, Quantity: 2, UnitPrice: decimal.RequireFromString("24.00"), Perishable: true},
				{ID: 4, ProducerID: 1, Name: "Μέλι ερείκης", WeightGrams: 500, Quantity: 5, UnitPrice: decimal.RequireFromString("14.00")},
			},
		},
	}
}
