package postgres

import (
	"github.com/dixis/shipping/internal/domain"
	"gorm.io/datatypes"
)

func toOrder(m *OrderModel, shipment *ShipmentModel) *domain.Order {
	o := &domain.Order{
		ID:            m.ID,
		TenantID:      domain.TenantID(m.TenantID),
		Number:        m.Number,
		Status:        domain.OrderStatus(m.Status),
		PaymentMethod: m.PaymentMethod,
		TotalAmount:   m.TotalAmount,
		Address:       m.ShippingAddress.Data(),
		Items:         make([]domain.OrderItem, 0, len(m.Items)),
		CreatedAt:     m.CreatedAt,
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:          it.ID,
			ProducerID:  it.ProducerID,
			Name:        it.Name,
			WeightGrams: it.WeightGrams,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LengthCM:    it.LengthCM,
			WidthCM:     it.WidthCM,
			HeightCM:    it.HeightCM,
			Perishable:  it.Perishable,
			Fragile:     it.Fragile,
		})
	}
	if shipment != nil {
		o.Shipment = toShipment(shipment)
	}
	return o
}

func fromOrder(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:              o.ID,
		TenantID:        int64(o.TenantID),
		Number:          o.Number,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: datatypes.NewJSONType(o.Address),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:          it.ID,
			OrderID:     o.ID,
			ProducerID:  it.ProducerID,
			Name:        it.Name,
			WeightGrams: it.WeightGrams,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LengthCM:    it.LengthCM,
			WidthCM:     it.WidthCM,
			HeightCM:    it.HeightCM,
			Perishable:  it.Perishable,
			Fragile:     it.Fragile,
		})
	}
	return m
}

func toShipment(m *ShipmentModel) *domain.Shipment {
	return &domain.Shipment{
		ID:                m.ID,
		TenantID:          domain.TenantID(m.TenantID),
		OrderID:           m.OrderID,
		Carrier:           m.Carrier,
		TrackingNumber:    m.TrackingNumber,
		LabelURL:          m.LabelURL,
		Status:            domain.OrderStatus(m.Status),
		CarrierStatus:     m.CarrierStatus,
		Location:          m.Location,
		EstimatedDelivery: m.EstimatedDelivery,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func fromShipment(s *domain.Shipment) *ShipmentModel {
	return &ShipmentModel{
		ID:                s.ID,
		TenantID:          int64(s.TenantID),
		OrderID:           s.OrderID,
		Carrier:           s.Carrier,
		TrackingNumber:    s.TrackingNumber,
		LabelURL:          s.LabelURL,
		Status:            string(s.Status),
		CarrierStatus:     s.CarrierStatus,
		Location:          s.Location,
		EstimatedDelivery: s.EstimatedDelivery,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toIntegrationSetting(m *IntegrationSettingModel) domain.IntegrationSetting {
	creds := m.Settings.Data()
	return domain.IntegrationSetting{
		TenantID:  domain.TenantID(m.TenantID),
		Service:   m.Service,
		Active:    m.Active,
		BaseURL:   creds.BaseURL,
		APIKey:    creds.APIKey,
		Endpoints: creds.Endpoints,
	}
}

func fromIntegrationSetting(s domain.IntegrationSetting) *IntegrationSettingModel {
	return &IntegrationSettingModel{
		TenantID: int64(s.TenantID),
		Service:  s.Service,
		Active:   s.Active,
		Settings: datatypes.NewJSONType(integrationCredentials{
			BaseURL:   s.BaseURL,
			APIKey:    s.APIKey,
			Endpoints: s.Endpoints,
		}),
	}
}

// referenceRows holds every reference table as loaded from the database.
type referenceRows struct {
	zones         []ZoneModel
	prefixes      []PostalCodeZoneModel
	tiers         []WeightTierModel
	methods       []DeliveryMethodModel
	rates         []ShippingRateModel
	producers     []ProducerModel
	producerMeths []ProducerShippingMethodModel
	producerRates []ProducerShippingRateModel
	freeShipping  []ProducerFreeShippingModel
	extraWeight   []ExtraWeightChargeModel
}

func (r *referenceRows) toDomain() *domain.ReferenceData {
	data := &domain.ReferenceData{}
	for _, z := range r.zones {
		data.Zones = append(data.Zones, domain.ShippingZone{ID: z.ID, Name: z.Name, Boundary: z.Boundary, Active: z.Active})
	}
	for _, p := range r.prefixes {
		data.PostalCodeZones = append(data.PostalCodeZones, domain.PostalCodeZone{Prefix: p.Prefix, ZoneID: p.ZoneID})
	}
	for _, t := range r.tiers {
		data.WeightTiers = append(data.WeightTiers, domain.WeightTier{ID: t.ID, Code: t.Code, Description: t.Description, MinGrams: t.MinGrams, MaxGrams: t.MaxGrams})
	}
	for _, m := range r.methods {
		data.DeliveryMethods = append(data.DeliveryMethods, domain.DeliveryMethod{
			ID:                    m.ID,
			Code:                  m.Code,
			Name:                  m.Name,
			MaxWeightGrams:        m.MaxWeightGrams,
			MaxLengthCM:           m.MaxLengthCM,
			MaxWidthCM:            m.MaxWidthCM,
			MaxHeightCM:           m.MaxHeightCM,
			SupportsCOD:           m.SupportsCOD,
			SuitableForPerishable: m.SuitableForPerishable,
			SuitableForFragile:    m.SuitableForFragile,
			Active:                m.Active,
		})
	}
	for _, rt := range r.rates {
		data.Rates = append(data.Rates, domain.ShippingRate{
			ZoneID:                  rt.ZoneID,
			WeightTierID:            rt.WeightTierID,
			MethodID:                rt.MethodID,
			Price:                   rt.Price,
			MultiProducerDiscount:   rt.MultiProducerDiscount,
			MinProducersForDiscount: rt.MinProducersForDiscount,
		})
	}
	for _, p := range r.producers {
		data.Producers = append(data.Producers, domain.Producer{ID: p.ID, Name: p.Name, UsesCustomShippingRates: p.UsesCustomShippingRates})
	}
	for _, pm := range r.producerMeths {
		data.ProducerShippingMethods = append(data.ProducerShippingMethods, domain.ProducerShippingMethod{ProducerID: pm.ProducerID, MethodID: pm.MethodID, Enabled: pm.Enabled})
	}
	for _, pr := range r.producerRates {
		data.ProducerShippingRates = append(data.ProducerShippingRates, domain.ProducerShippingRate{
			ProducerID:   pr.ProducerID,
			ZoneID:       pr.ZoneID,
			WeightTierID: pr.WeightTierID,
			MethodID:     pr.MethodID,
			Price:        pr.Price,
		})
	}
	for _, f := range r.freeShipping {
		data.FreeShipping = append(data.FreeShipping, domain.ProducerFreeShipping{ProducerID: f.ProducerID, ZoneID: f.ZoneID, MethodID: f.MethodID, Threshold: f.Threshold})
	}
	for _, e := range r.extraWeight {
		data.ExtraWeightCharges = append(data.ExtraWeightCharges, domain.ExtraWeightCharge{ZoneID: e.ZoneID, MethodID: e.MethodID, RatePerKG: e.RatePerKG})
	}
	return data
}

func fromReference(data *domain.ReferenceData) *referenceRows {
	r := &referenceRows{}
	for _, z := range data.Zones {
		r.zones = append(r.zones, ZoneModel{ID: z.ID, Name: z.Name, Boundary: z.Boundary, Active: z.Active})
	}
	for _, p := range data.PostalCodeZones {
		r.prefixes = append(r.prefixes, PostalCodeZoneModel{Prefix: p.Prefix, ZoneID: p.ZoneID})
	}
	for _, t := range data.WeightTiers {
		r.tiers = append(r.tiers, WeightTierModel{ID: t.ID, Code: t.Code, Description: t.Description, MinGrams: t.MinGrams, MaxGrams: t.MaxGrams})
	}
	for _, m := range data.DeliveryMethods {
		r.methods = append(r.methods, DeliveryMethodModel{
			ID:                    m.ID,
			Code:                  m.Code,
			Name:                  m.Name,
			MaxWeightGrams:        m.MaxWeightGrams,
			MaxLengthCM:           m.MaxLengthCM,
			MaxWidthCM:            m.MaxWidthCM,
			MaxHeightCM:           m.MaxHeightCM,
			SupportsCOD:           m.SupportsCOD,
			SuitableForPerishable: m.SuitableForPerishable,
			SuitableForFragile:    m.SuitableForFragile,
			Active:                m.Active,
		})
	}
	for _, rt := range data.Rates {
		r.rates = append(r.rates, ShippingRateModel{
			ZoneID:                  rt.ZoneID,
			WeightTierID:            rt.WeightTierID,
			MethodID:                rt.MethodID,
			Price:                   rt.Price,
			MultiProducerDiscount:   rt.MultiProducerDiscount,
			MinProducersForDiscount: rt.MinProducersForDiscount,
		})
	}
	for _, p := range data.Producers {
		r.producers = append(r.producers, ProducerModel{ID: p.ID, Name: p.Name, UsesCustomShippingRates: p.UsesCustomShippingRates})
	}
	for _, pm := range data.ProducerShippingMethods {
		r.producerMeths = append(r.producerMeths, ProducerShippingMethodModel{ProducerID: pm.ProducerID, MethodID: pm.MethodID, Enabled: pm.Enabled})
	}
	for _, pr := range data.ProducerShippingRates {
		r.producerRates = append(r.producerRates, ProducerShippingRateModel{
			ProducerID:   pr.ProducerID,
			ZoneID:       pr.ZoneID,
			WeightTierID: pr.WeightTierID,
			MethodID:     pr.MethodID,
			Price:        pr.Price,
		})
	}
	for _, f := range data.FreeShipping {
		r.freeShipping = append(r.freeShipping, ProducerFreeShippingModel{ProducerID: f.ProducerID, ZoneID: f.ZoneID, MethodID: f.MethodID, Threshold: f.Threshold})
	}
	for _, e := range data.ExtraWeightCharges {
		r.extraWeight = append(r.extraWeight, ExtraWeightChargeModel{ZoneID: e.ZoneID, MethodID: e.MethodID, RatePerKG: e.RatePerKG})
	}
	return r
}
