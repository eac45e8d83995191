package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dixis/shipping/internal/domain"
	"gorm.io/gorm"
)

// Store implements the engine repositories on PostgreSQL.
type Store struct {
	db  *DB
	now func() time.Time
}

// NewStore creates a Store.
func NewStore(db *DB) *Store {
	return &Store{db: db, now: time.Now}
}

// GetOrder implements domain.OrderRepository.
func (s *Store) GetOrder(ctx context.Context, tenant domain.TenantID, orderID int64) (*domain.Order, error) {
	var order OrderModel
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("tenant_id = ? AND id = ?", int64(tenant), orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewError(domain.KindOrderNotFound, "order %d not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var shipment ShipmentModel
	err = s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&shipment).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return toOrder(&order, nil), nil
	case err != nil:
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	default:
		return toOrder(&order, &shipment), nil
	}
}

// RecordShipment implements domain.ShipmentRepository. The shipment insert and
// the order update commit together.
func (s *Store) RecordShipment(ctx context.Context, sh *domain.Shipment, status domain.OrderStatus) error {
	now := s.now()
	model := fromShipment(sh)
	model.Status = string(status)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if IsUniqueViolation(err) {
				return domain.NewError(domain.KindDuplicateShipment, "order %d already has a shipment", sh.OrderID).WithCause(err)
			}
			return fmt.Errorf("failed to create shipment: %w", err)
		}

		result := tx.Model(&OrderModel{}).
			Where("tenant_id = ? AND id = ?", int64(sh.TenantID), sh.OrderID).
			Updates(map[string]any{"status": string(status), "updated_at": now})
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewError(domain.KindOrderNotFound, "order %d not found", sh.OrderID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sh.ID = model.ID
	sh.Status = status
	sh.CreatedAt = model.CreatedAt
	sh.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateStatus implements domain.ShipmentRepository.
func (s *Store) UpdateStatus(ctx context.Context, tenant domain.TenantID, orderID int64, status domain.OrderStatus, carrierStatus, location string) error {
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ShipmentModel{}).
			Where("tenant_id = ? AND order_id = ?", int64(tenant), orderID).
			Updates(map[string]any{
				"status":         string(status),
				"carrier_status": carrierStatus,
				"location":       location,
				"updated_at":     now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewError(domain.KindNoShipment, "order %d has no shipment", orderID)
		}

		result = tx.Model(&OrderModel{}).
			Where("tenant_id = ? AND id = ?", int64(tenant), orderID).
			Updates(map[string]any{"status": string(status), "updated_at": now})
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		return nil
	})
}

// LoadReferenceData implements domain.ReferenceSource. All tables are read in
// one repeatable-read transaction.
func (s *Store) LoadReferenceData(ctx context.Context) (*domain.ReferenceData, error) {
	var rows referenceRows
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ").Error; err != nil {
			return err
		}
		loads := []struct {
			table string
			dest  any
		}{
			{"shipping_zones", &rows.zones},
			{"postal_code_zones", &rows.prefixes},
			{"weight_tiers", &rows.tiers},
			{"delivery_methods", &rows.methods},
			{"shipping_rates", &rows.rates},
			{"producers", &rows.producers},
			{"producer_shipping_methods", &rows.producerMeths},
			{"producer_shipping_rates", &rows.producerRates},
			{"producer_free_shipping", &rows.freeShipping},
			{"extra_weight_charges", &rows.extraWeight},
		}
		for _, l := range loads {
			if err := tx.Order("id").Find(l.dest).Error; err != nil {
				return fmt.Errorf("load %s: %w", l.table, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	return rows.toDomain(), nil
}

// IntegrationSettings implements domain.SettingsProvider.
func (s *Store) IntegrationSettings(ctx context.Context, tenant domain.TenantID) (map[string]domain.IntegrationSetting, error) {
	var models []IntegrationSettingModel
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", int64(tenant)).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load integration settings: %w", err)
	}
	out := make(map[string]domain.IntegrationSetting, len(models))
	for i := range models {
		out[models[i].Service] = toIntegrationSetting(&models[i])
	}
	return out, nil
}

// Append implements domain.IntegrationLogSink.
func (s *Store) Append(ctx context.Context, entry domain.IntegrationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	model := &IntegrationLogModel{
		ID:        entry.ID,
		TenantID:  int64(entry.TenantID),
		Service:   entry.Service,
		Action:    entry.Action,
		Payload:   []byte(entry.Payload),
		Outcome:   entry.Outcome,
		CreatedAt: entry.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append integration log: %w", err)
	}
	return nil
}

var (
	_ domain.OrderRepository    = (*Store)(nil)
	_ domain.ShipmentRepository = (*Store)(nil)
	_ domain.ReferenceSource    = (*Store)(nil)
	_ domain.SettingsProvider   = (*Store)(nil)
	_ domain.IntegrationLogSink = (*Store)(nil)
)
