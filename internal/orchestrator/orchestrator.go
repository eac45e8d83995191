// Package orchestrator fans rate requests out to every registered carrier and
// picks the best one.
package orchestrator

import (
	"context"
	"time"

	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures scoring and timeouts.
type Options struct {
	// Reliability is the static 0-10 score per carrier key.
	Reliability        map[string]float64
	DefaultReliability float64
	// Timeout bounds every adapter call. Zero means no extra bound.
	Timeout time.Duration
}

// Orchestrator queries the carriers of one tenant's registry.
type Orchestrator struct {
	registry *carrier.Registry
	opts     Options
	metrics  *telemetry.Metrics
	logger   *otelzap.Logger
	tracer   trace.Tracer
}

// New creates an Orchestrator over registry. metrics may be nil.
func New(registry *carrier.Registry, opts Options, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
		tracer:   telemetry.TracerOrNoop(tracer),
	}
}

// Registry returns the carriers this orchestrator fans out to.
func (o *Orchestrator) Registry() *carrier.Registry {
	return o.registry
}

// Reliability returns the configured reliability of a carrier.
func (o *Orchestrator) Reliability(name string) float64 {
	if r, ok := o.opts.Reliability[name]; ok {
		return r
	}
	return o.opts.DefaultReliability
}

// RateAll asks every registered carrier for a price concurrently. The result
// has one entry per carrier in registration order; a failing carrier only
// affects its own entry.
func (o *Orchestrator) RateAll(ctx context.Context, req *carrier.RateRequest) []carrier.Result[*carrier.RateQuote] {
	ctx, span := o.tracer.Start(ctx, "orchestrator.RateAll")
	defer span.End()

	adapters := o.registry.All()
	span.SetAttributes(attribute.Int("carrier.count", len(adapters)))
	results := make([]carrier.Result[*carrier.RateQuote], len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		g.Go(func() error {
			start := time.Now()
			res := carrier.Invoke(ctx, a.Name(), o.opts.Timeout, func(ctx context.Context) (*carrier.RateQuote, error) {
				return a.CalculateRate(ctx, req)
			})
			o.observe("calculate_rate", a.Name(), res.Err, time.Since(start))
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// BestCarrier rates every carrier and selects one according to criteria.
func (o *Orchestrator) BestCarrier(ctx context.Context, req *carrier.RateRequest, criteria Criteria) (*Selection, error) {
	return o.SelectBest(o.RateAll(ctx, req), criteria)
}

// ProviderStats describes one registered carrier.
type ProviderStats struct {
	Key               string   `json:"key"`
	DisplayName       string   `json:"display_name"`
	SupportedServices []string `json:"supported_services"`
	CoverageAreas     []string `json:"coverage_areas"`
	Features          []string `json:"features"`
	Reliability       float64  `json:"reliability"`
	Connected         *bool    `json:"connection_status,omitempty"`
}

// ProviderStatistics describes the registered carriers in registration order.
// When testConnection is set every carrier is pinged concurrently.
func (o *Orchestrator) ProviderStatistics(ctx context.Context, testConnection bool) []ProviderStats {
	adapters := o.registry.All()
	stats := make([]ProviderStats, len(adapters))

	var g errgroup.Group
	for i, a := range adapters {
		d := carrier.Describe(a)
		stats[i] = ProviderStats{
			Key:               d.Key,
			DisplayName:       d.DisplayName,
			SupportedServices: d.SupportedServices,
			CoverageAreas:     d.CoverageAreas,
			Features:          d.Features,
			Reliability:       o.Reliability(d.Key),
		}
		if !testConnection {
			continue
		}
		g.Go(func() error {
			res := carrier.Invoke(ctx, a.Name(), o.opts.Timeout, func(ctx context.Context) (bool, error) {
				return a.TestConnection(ctx), nil
			})
			connected := res.OK() && res.Value
			stats[i].Connected = &connected
			return nil
		})
	}
	_ = g.Wait()

	return stats
}

func (o *Orchestrator) observe(operation, name string, err *carrier.Error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
		o.logger.Warn("Carrier call failed",
			zap.String("operation", operation),
			zap.String("carrier", name),
			zap.String("code", err.Code),
			zap.Bool("retryable", carrier.IsRetryable(err)),
			zap.Error(err),
		)
		o.metrics.RecordError(name, err.Code)
	}
	o.metrics.RecordRequest(operation, name, status, d.Seconds())
}
