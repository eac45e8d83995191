// Package bulk ships batches of orders with one carrier.
package bulk

import (
	"context"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/lifecycle"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Shipper creates one shipment and records audit entries. *lifecycle.Manager
// implements it.
type Shipper interface {
	CreateShipment(ctx context.Context, tenant domain.TenantID, orderID int64, adapter carrier.Adapter) (*domain.Shipment, error)
	Audit(ctx context.Context, tenant domain.TenantID, action, outcome string, payload any)
}

// ItemResult is the outcome for one order of a batch.
type ItemResult struct {
	OrderID        int64            `json:"order_id"`
	Success        bool             `json:"success"`
	TrackingNumber string           `json:"tracking_number,omitempty"`
	ErrorKind      domain.ErrorKind `json:"error_kind,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// Summary aggregates a batch. Results follow the order of the input IDs.
type Summary struct {
	Carrier      string       `json:"carrier"`
	Total        int          `json:"total"`
	SuccessCount int          `json:"success_count"`
	FailureCount int          `json:"failure_count"`
	Results      []ItemResult `json:"results"`
}

// PartialFailure returns an ErrBulkPartialFailure describing the failed items,
// or nil when every item succeeded. It is informational: the batch itself
// completed.
func (s *Summary) PartialFailure() error {
	if s.FailureCount == 0 {
		return nil
	}
	return domain.NewError(domain.KindBulkPartialFailure, "%d of %d orders failed", s.FailureCount, s.Total)
}

// Processor runs CreateShipment over many orders with bounded concurrency.
type Processor struct {
	shipper     Shipper
	concurrency int
	metrics     *telemetry.Metrics
	logger      *otelzap.Logger
	tracer      trace.Tracer
}

// NewProcessor creates a Processor. A concurrency below 1 processes orders one
// at a time.
func NewProcessor(shipper Shipper, concurrency int, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		shipper:     shipper,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
		tracer:      telemetry.TracerOrNoop(tracer),
	}
}

// Process ships every order with the named carrier. Individual failures,
// including unknown or non-positive IDs, are reported in the summary and never
// stop the batch; only an empty or duplicated ID list returns an error.
func (p *Processor) Process(ctx context.Context, tenant domain.TenantID, orderIDs []int64, registry *carrier.Registry, carrierName string) (*Summary, error) {
	ctx, span := p.tracer.Start(ctx, "bulk.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("carrier", carrierName),
		attribute.Int("orders", len(orderIDs)),
	)

	if err := validateIDs(orderIDs); err != nil {
		return nil, err
	}
	adapter, err := registry.Get(carrierName)
	if err != nil {
		return nil, domain.NewError(domain.KindCarrierNotFound, "carrier %q is not enabled", carrierName).WithCause(err)
	}

	results := make([]ItemResult, len(orderIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, id := range orderIDs {
		g.Go(func() error {
			results[i] = p.processOne(gctx, tenant, id, adapter)
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{
		Carrier: adapter.Name(),
		Total:   len(orderIDs),
		Results: results,
	}
	for _, r := range results {
		if r.Success {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}
	}

	outcome := domain.OutcomeSuccess
	if summary.SuccessCount == 0 {
		outcome = domain.OutcomeFailed
	}
	p.shipper.Audit(ctx, tenant, lifecycle.ActionBulkShipping, outcome, summary)

	p.logger.Ctx(ctx).Info("Bulk shipping finished",
		zap.String("carrier", summary.Carrier),
		zap.Int("total", summary.Total),
		zap.Int("success", summary.SuccessCount),
		zap.Int("failed", summary.FailureCount),
	)
	return summary, nil
}

func (p *Processor) processOne(ctx context.Context, tenant domain.TenantID, orderID int64, adapter carrier.Adapter) ItemResult {
	var (
		shipment *domain.Shipment
		err      error
	)
	if orderID <= 0 {
		err = domain.NewError(domain.KindInvalidInput, "invalid order id %d", orderID)
	} else {
		shipment, err = p.shipper.CreateShipment(ctx, tenant, orderID, adapter)
	}
	if err != nil {
		p.metrics.RecordBulkItem(adapter.Name(), "failed")
		return ItemResult{
			OrderID:   orderID,
			ErrorKind: domain.KindOf(err),
			Error:     err.Error(),
		}
	}
	p.metrics.RecordBulkItem(adapter.Name(), "success")
	return ItemResult{
		OrderID:        orderID,
		Success:        true,
		TrackingNumber: shipment.TrackingNumber,
	}
}

func validateIDs(ids []int64) error {
	if len(ids) == 0 {
		return domain.NewError(domain.KindInvalidInput, "no order ids given")
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return domain.NewError(domain.KindInvalidInput, "order %d listed twice", id)
		}
		seen[id] = true
	}
	return nil
}
