// Package memory is an in-process implementation of the engine's repositories,
// used by tests and by the CLI when no database is configured.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dixis/shipping/internal/domain"
)

type orderKey struct {
	tenant domain.TenantID
	id     int64
}

// Store holds reference data, orders, shipments, integration settings and logs.
type Store struct {
	mu        sync.RWMutex
	reference *domain.ReferenceData
	orders    map[orderKey]*domain.Order
	tracking  map[string]orderKey
	settings  map[domain.TenantID]map[string]domain.IntegrationSetting
	logs      []domain.IntegrationLog
	lastID    int64
	now       func() time.Time
}

// New creates a Store serving ref. A nil ref means an empty reference set.
func New(ref *domain.ReferenceData) *Store {
	if ref == nil {
		ref = &domain.ReferenceData{}
	}
	return &Store{
		reference: ref,
		orders:    make(map[orderKey]*domain.Order),
		tracking:  make(map[string]orderKey),
		settings:  make(map[domain.TenantID]map[string]domain.IntegrationSetting),
		now:       time.Now,
	}
}

// LoadReferenceData implements domain.ReferenceSource.
func (s *Store) LoadReferenceData(ctx context.Context) (*domain.ReferenceData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref := *s.reference
	return &ref, nil
}

// PutOrder inserts or replaces an order.
func (s *Store) PutOrder(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := orderKey{order.TenantID, order.ID}
	stored := cloneOrder(&order)
	s.orders[key] = stored
	if stored.Shipment != nil && stored.Shipment.TrackingNumber != "" {
		s.tracking[trackingKey(stored.Shipment.Carrier, stored.Shipment.TrackingNumber)] = key
	}
}

// GetOrder implements domain.OrderRepository. The returned order is a copy.
func (s *Store) GetOrder(ctx context.Context, tenant domain.TenantID, orderID int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderKey{tenant, orderID}]
	if !ok {
		return nil, domain.NewError(domain.KindOrderNotFound, "order %d not found", orderID)
	}
	return cloneOrder(order), nil
}

// RecordShipment implements domain.ShipmentRepository.
func (s *Store) RecordShipment(ctx context.Context, sh *domain.Shipment, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := orderKey{sh.TenantID, sh.OrderID}
	order, ok := s.orders[key]
	if !ok {
		return domain.NewError(domain.KindOrderNotFound, "order %d not found", sh.OrderID)
	}
	if order.Shipment != nil {
		return domain.NewError(domain.KindDuplicateShipment, "order %d already has a shipment", sh.OrderID)
	}
	tk := trackingKey(sh.Carrier, sh.TrackingNumber)
	if _, taken := s.tracking[tk]; taken {
		return domain.NewError(domain.KindDuplicateShipment, "tracking number %s already recorded for %s", sh.TrackingNumber, sh.Carrier)
	}

	s.lastID++
	now := s.now()
	stored := *sh
	stored.ID = s.lastID
	stored.Status = status
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	order.Shipment = &stored
	order.Status = status
	s.tracking[tk] = key

	sh.ID = stored.ID
	sh.Status = status
	sh.CreatedAt = stored.CreatedAt
	sh.UpdatedAt = stored.UpdatedAt
	return nil
}

// UpdateStatus implements domain.ShipmentRepository.
func (s *Store) UpdateStatus(ctx context.Context, tenant domain.TenantID, orderID int64, status domain.OrderStatus, carrierStatus, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderKey{tenant, orderID}]
	if !ok {
		return domain.NewError(domain.KindOrderNotFound, "order %d not found", orderID)
	}
	if order.Shipment == nil {
		return domain.NewError(domain.KindNoShipment, "order %d has no shipment", orderID)
	}
	order.Status = status
	order.Shipment.Status = status
	order.Shipment.CarrierStatus = carrierStatus
	order.Shipment.Location = location
	order.Shipment.UpdatedAt = s.now()
	return nil
}

// PutIntegrationSetting stores a tenant's credentials for one carrier.
func (s *Store) PutIntegrationSetting(setting domain.IntegrationSetting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byService, ok := s.settings[setting.TenantID]
	if !ok {
		byService = make(map[string]domain.IntegrationSetting)
		s.settings[setting.TenantID] = byService
	}
	byService[setting.Service] = setting
}

// IntegrationSettings implements domain.SettingsProvider.
func (s *Store) IntegrationSettings(ctx context.Context, tenant domain.TenantID) (map[string]domain.IntegrationSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.settings[tenant]), nil
}

// Append implements domain.IntegrationLogSink.
func (s *Store) Append(ctx context.Context, entry domain.IntegrationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.logs = append(s.logs, entry)
	return nil
}

// Logs returns the tenant's audit entries in insertion order.
func (s *Store) Logs(tenant domain.TenantID) []domain.IntegrationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.IntegrationLog
	for _, l := range s.logs {
		if l.TenantID == tenant {
			out = append(out, l)
		}
	}
	return out
}

func trackingKey(carrierName, number string) string {
	return carrierName + "/" + number
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	if o.Shipment != nil {
		sh := *o.Shipment
		c.Shipment = &sh
	}
	return &c
}

var (
	_ domain.OrderRepository    = (*Store)(nil)
	_ domain.ShipmentRepository = (*Store)(nil)
	_ domain.ReferenceSource    = (*Store)(nil)
	_ domain.SettingsProvider   = (*Store)(nil)
	_ domain.IntegrationLogSink = (*Store)(nil)
)
