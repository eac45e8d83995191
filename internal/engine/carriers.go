package engine

import (
	"github.com/dixis/shipping/internal/config"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/dixis/shipping/pkg/carrier/acs"
	"github.com/dixis/shipping/pkg/carrier/couriercenter"
	"github.com/dixis/shipping/pkg/carrier/elta"
	"github.com/dixis/shipping/pkg/carrier/speedex"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

// Carriers returns the known carriers in registration order with their
// environment settings.
func Carriers(cfg *config.Config) []CarrierDefinition {
	return []CarrierDefinition{
		{
			Key:      config.CarrierELTA,
			Enabled:  cfg.ELTA.Enabled,
			Settings: cfg.ELTA.Settings(cfg.CarrierTimeout),
			New: func(s carrier.Settings, l *otelzap.Logger, t trace.Tracer) (carrier.Adapter, error) {
				return elta.New(s, l, t)
			},
		},
		{
			Key:      config.CarrierACS,
			Enabled:  cfg.ACS.Enabled,
			Settings: cfg.ACS.Settings(cfg.CarrierTimeout),
			New: func(s carrier.Settings, l *otelzap.Logger, t trace.Tracer) (carrier.Adapter, error) {
				return acs.New(s, l, t)
			},
		},
		{
			Key:      config.CarrierSpeedex,
			Enabled:  cfg.Speedex.Enabled,
			Settings: cfg.Speedex.Settings(cfg.CarrierTimeout),
			New: func(s carrier.Settings, l *otelzap.Logger, t trace.Tracer) (carrier.Adapter, error) {
				return speedex.New(s, l, t)
			},
		},
		{
			Key:      config.CarrierCourierCenter,
			Enabled:  cfg.CourierCenter.Enabled,
			Settings: cfg.CourierCenter.Settings(cfg.CarrierTimeout),
			New: func(s carrier.Settings, l *otelzap.Logger, t trace.Tracer) (carrier.Adapter, error) {
				return couriercenter.New(s, l, t)
			},
		},
	}
}
