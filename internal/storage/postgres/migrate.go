package postgres

import (
	"context"
	"fmt"

	"github.com/dixis/shipping/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migrate creates or updates every table.
func (d *DB) Migrate(ctx context.Context) error {
	if err := d.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedData is what Seed inserts. Existing rows are left untouched.
type SeedData struct {
	Reference *domain.ReferenceData
	Orders    []domain.Order
	Settings  []domain.IntegrationSetting
}

// Seed inserts reference data, orders and integration settings in one
// transaction.
func (d *DB) Seed(ctx context.Context, data SeedData) error {
	return d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})

		if data.Reference != nil {
			rows := fromReference(data.Reference)
			batches := []struct {
				table string
				rows  any
				n     int
			}{
				{"shipping_zones", &rows.zones, len(rows.zones)},
				{"postal_code_zones", &rows.prefixes, len(rows.prefixes)},
				{"weight_tiers", &rows.tiers, len(rows.tiers)},
				{"delivery_methods", &rows.methods, len(rows.methods)},
				{"shipping_rates", &rows.rates, len(rows.rates)},
				{"producers", &rows.producers, len(rows.producers)},
				{"producer_shipping_methods", &rows.producerMeths, len(rows.producerMeths)},
				{"producer_shipping_rates", &rows.producerRates, len(rows.producerRates)},
				{"producer_free_shipping", &rows.freeShipping, len(rows.freeShipping)},
				{"extra_weight_charges", &rows.extraWeight, len(rows.extraWeight)},
			}
			for _, b := range batches {
				if b.n == 0 {
					continue
				}
				if err := tx.CreateInBatches(b.rows, 100).Error; err != nil {
					return fmt.Errorf("seed %s: %w", b.table, err)
				}
			}
		}

		for i := range data.Orders {
			if err := tx.Create(fromOrder(&data.Orders[i])).Error; err != nil {
				return fmt.Errorf("seed order %d: %w", data.Orders[i].ID, err)
			}
		}
		for _, s := range data.Settings {
			if err := tx.Create(fromIntegrationSetting(s)).Error; err != nil {
				return fmt.Errorf("seed %s settings: %w", s.Service, err)
			}
		}
		return nil
	})
}
