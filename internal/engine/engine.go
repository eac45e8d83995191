// Package engine is the tenant-scoped entry point to quoting, carrier
// selection and shipment handling.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/dixis/shipping/internal/address"
	"github.com/dixis/shipping/internal/bulk"
	"github.com/dixis/shipping/internal/cache"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/lifecycle"
	"github.com/dixis/shipping/internal/orchestrator"
	"github.com/dixis/shipping/internal/rating"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Factory builds an adapter from resolved settings.
type Factory func(settings carrier.Settings, logger *otelzap.Logger, tracer trace.Tracer) (carrier.Adapter, error)

// CarrierDefinition is one known carrier with its environment settings.
type CarrierDefinition struct {
	Key      string
	Enabled  bool
	Settings carrier.Settings
	New      Factory
}

// Deps are the engine's collaborators. Notifier and Cache may be nil.
type Deps struct {
	Orders    domain.OrderRepository
	Shipments domain.ShipmentRepository
	Settings  domain.SettingsProvider
	Logs      domain.IntegrationLogSink
	Notifier  domain.Notifier
	Cache     cache.Cache
	Snapshots *rating.Store
	Quotes    *rating.QuoteEngine
}

// Options configures the engine.
type Options struct {
	// Carriers in registration order.
	Carriers           []CarrierDefinition
	Reliability        map[string]float64
	DefaultReliability float64
	CarrierTimeout     time.Duration
	BulkConcurrency    int
	DefaultItemGrams   int64
	TrackingCacheTTL   time.Duration
	// RegistryTTL is how long a tenant's carrier registry is reused.
	RegistryTTL time.Duration
}

type tenantRegistry struct {
	registry *carrier.Registry
	expires  time.Time
}

// Engine serves every tenant.
type Engine struct {
	deps    Deps
	opts    Options
	manager *lifecycle.Manager
	bulk    *bulk.Processor
	metrics *telemetry.Metrics
	logger  *otelzap.Logger
	tracer  trace.Tracer
	now     func() time.Time

	mu         sync.Mutex
	registries map[domain.TenantID]tenantRegistry
}

// New creates an Engine.
func New(deps Deps, opts Options, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *Engine {
	if opts.DefaultItemGrams <= 0 {
		opts.DefaultItemGrams = 500
	}
	if opts.RegistryTTL <= 0 {
		opts.RegistryTTL = 5 * time.Minute
	}
	tracer = telemetry.TracerOrNoop(tracer)

	manager := lifecycle.NewManager(lifecycle.Deps{
		Orders:    deps.Orders,
		Shipments: deps.Shipments,
		Logs:      deps.Logs,
		Notifier:  deps.Notifier,
		Cache:     deps.Cache,
	}, lifecycle.Options{
		DefaultItemGrams: opts.DefaultItemGrams,
		CarrierTimeout:   opts.CarrierTimeout,
		TrackingCacheTTL: opts.TrackingCacheTTL,
	}, metrics, logger, tracer)

	return &Engine{
		deps:       deps,
		opts:       opts,
		manager:    manager,
		bulk:       bulk.NewProcessor(manager, opts.BulkConcurrency, metrics, logger, tracer),
		metrics:    metrics,
		logger:     logger,
		tracer:     tracer,
		now:        time.Now,
		registries: make(map[domain.TenantID]tenantRegistry),
	}
}

// Registry returns the tenant's enabled carriers in registration order. Tenant
// integration settings override the environment credentials, and an inactive
// tenant setting removes the carrier.
func (e *Engine) Registry(ctx context.Context, tenant domain.TenantID) (*carrier.Registry, error) {
	e.mu.Lock()
	cached, ok := e.registries[tenant]
	e.mu.Unlock()
	if ok && e.now().Before(cached.expires) {
		return cached.registry, nil
	}

	overrides, err := e.deps.Settings.IntegrationSettings(ctx, tenant)
	if err != nil {
		return nil, err
	}

	entries := make([]carrier.Entry, 0, len(e.opts.Carriers))
	for _, def := range e.opts.Carriers {
		settings := def.Settings
		enabled := def.Enabled
		if o, ok := overrides[def.Key]; ok {
			enabled = enabled && o.Active
			settings = applyOverride(settings, o)
		}
		entries = append(entries, carrier.Entry{
			Key:     def.Key,
			Enabled: enabled,
			New: func() (carrier.Adapter, error) {
				return def.New(settings, e.logger, e.tracer)
			},
		})
	}
	registry := carrier.BuildRegistry(entries, e.logger)

	e.mu.Lock()
	e.registries[tenant] = tenantRegistry{registry: registry, expires: e.now().Add(e.opts.RegistryTTL)}
	e.mu.Unlock()
	return registry, nil
}

// InvalidateRegistry forces the tenant's registry to be rebuilt on next use.
func (e *Engine) InvalidateRegistry(tenant domain.TenantID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.registries, tenant)
}

func applyOverride(s carrier.Settings, o domain.IntegrationSetting) carrier.Settings {
	if o.BaseURL != "" {
		s.BaseURL = o.BaseURL
	}
	if o.APIKey != "" {
		s.APIKey = o.APIKey
	}
	if len(o.Endpoints) > 0 {
		merged := make(map[string]string, len(s.Endpoints)+len(o.Endpoints))
		for k, v := range s.Endpoints {
			merged[k] = v
		}
		for k, v := range o.Endpoints {
			merged[k] = v
		}
		s.Endpoints = merged
	}
	return s
}

func (e *Engine) orchestrator(registry *carrier.Registry) *orchestrator.Orchestrator {
	return orchestrator.New(registry, orchestrator.Options{
		Reliability:        e.opts.Reliability,
		DefaultReliability: e.opts.DefaultReliability,
		Timeout:            e.opts.CarrierTimeout,
	}, e.metrics, e.logger, e.tracer)
}

// GetQuote prices the order for a delivery method against the current
// reference snapshot.
func (e *Engine) GetQuote(ctx context.Context, tenant domain.TenantID, orderID int64, method string) (*rating.Quote, error) {
	ctx, span := e.tracer.Start(ctx, "engine.GetQuote")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID), attribute.String("method", method))

	quote, err := e.getQuote(ctx, tenant, orderID, method)
	if err != nil {
		e.metrics.RecordQuote(method, string(domain.KindOf(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	e.metrics.RecordQuote(method, "success")
	return quote, nil
}

func (e *Engine) getQuote(ctx context.Context, tenant domain.TenantID, orderID int64, method string) (*rating.Quote, error) {
	order, err := e.deps.Orders.GetOrder(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	snap, err := e.deps.Snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	return e.deps.Quotes.Quote(ctx, snap, order, method)
}

// ProviderRate is one carrier's answer in RateAllProviders.
type ProviderRate struct {
	Provider     string           `json:"provider"`
	Success      bool             `json:"success"`
	ServiceCode  string           `json:"service_code,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	DeliveryDays int              `json:"delivery_time,omitempty"`
	Error        *ProviderError   `json:"error,omitempty"`
}

// ProviderError describes a failed carrier call.
type ProviderError struct {
	Kind      domain.ErrorKind `json:"kind"`
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
}

// RateAllProviders asks every enabled carrier for a price. A failing carrier
// only marks its own entry; the call itself fails only when the order cannot
// be loaded.
func (e *Engine) RateAllProviders(ctx context.Context, tenant domain.TenantID, orderID int64) ([]ProviderRate, error) {
	order, err := e.deps.Orders.GetOrder(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}

	results := e.orchestrator(registry).RateAll(ctx, orchestrator.RateRequestFromOrder(order, e.opts.DefaultItemGrams))
	rates := make([]ProviderRate, len(results))
	for i, r := range results {
		rates[i] = toProviderRate(r)
	}
	return rates, nil
}

func toProviderRate(r carrier.Result[*carrier.RateQuote]) ProviderRate {
	if !r.OK() {
		return ProviderRate{
			Provider: r.Provider,
			Error: &ProviderError{
				Kind:      domain.KindProviderUnavailable,
				Code:      r.Err.Code,
				Message:   r.Err.Message,
				Retryable: carrier.IsRetryable(r.Err),
			},
		}
	}
	cost := r.Value.Cost
	return ProviderRate{
		Provider:     r.Provider,
		Success:      true,
		ServiceCode:  r.Value.ServiceCode,
		Cost:         &cost,
		Currency:     r.Value.Currency,
		DeliveryDays: r.Value.DeliveryDays,
	}
}

// GetBestCarrier rates every carrier and picks one by criteria.
func (e *Engine) GetBestCarrier(ctx context.Context, tenant domain.TenantID, orderID int64, criteria orchestrator.Criteria) (*orchestrator.Selection, error) {
	order, err := e.deps.Orders.GetOrder(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return e.orchestrator(registry).BestCarrier(ctx, orchestrator.RateRequestFromOrder(order, e.opts.DefaultItemGrams), criteria)
}

// CreateShipment books the order with the named carrier.
func (e *Engine) CreateShipment(ctx context.Context, tenant domain.TenantID, orderID int64, carrierName string) (*domain.Shipment, error) {
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}
	adapter, err := registry.Get(carrierName)
	if err != nil {
		return nil, domain.NewError(domain.KindCarrierNotFound, "carrier %q is not enabled", carrierName).WithCause(err)
	}
	return e.manager.CreateShipment(ctx, tenant, orderID, adapter)
}

// RefreshTracking polls the order's carrier and applies the mapped status.
func (e *Engine) RefreshTracking(ctx context.Context, tenant domain.TenantID, orderID int64) (*lifecycle.TrackingUpdate, error) {
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return e.manager.RefreshTracking(ctx, tenant, orderID, registry)
}

// ProcessBulkShipping ships a batch of orders with one carrier.
func (e *Engine) ProcessBulkShipping(ctx context.Context, tenant domain.TenantID, orderIDs []int64, carrierName string) (*bulk.Summary, error) {
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}
	summary, err := e.bulk.Process(ctx, tenant, orderIDs, registry, carrierName)
	if err != nil {
		return nil, err
	}
	if pf := summary.PartialFailure(); pf != nil {
		e.logger.Ctx(ctx).Warn("Bulk shipping partially failed",
			zap.Int64("tenant_id", int64(tenant)),
			zap.Error(pf),
		)
	}
	return summary, nil
}

// ProviderStatistics describes the tenant's enabled carriers.
func (e *Engine) ProviderStatistics(ctx context.Context, tenant domain.TenantID, testConnection bool) ([]orchestrator.ProviderStats, error) {
	registry, err := e.Registry(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return e.orchestrator(registry).ProviderStatistics(ctx, testConnection), nil
}

// ValidateAddress normalises addr and checks it can be shipped to.
func (e *Engine) ValidateAddress(addr domain.Address) (domain.Address, error) {
	normalized := address.Normalize(addr)
	if err := address.Validate(normalized); err != nil {
		return normalized, err
	}
	return normalized, nil
}
