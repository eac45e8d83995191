// Package lifecycle creates carrier shipments for orders and follows them to
// delivery.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dixis/shipping/internal/cache"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Integration log service and actions.
const (
	LogService            = "shipping_automation"
	ActionCreateShipment  = "create_shipment"
	ActionRefreshTracking = "refresh_tracking"
	ActionBulkShipping    = "bulk_shipping"
)

// Deps are the collaborators of a Manager. Notifier and Cache may be nil.
type Deps struct {
	Orders    domain.OrderRepository
	Shipments domain.ShipmentRepository
	Logs      domain.IntegrationLogSink
	Notifier  domain.Notifier
	Cache     cache.Cache
}

// Options tunes a Manager.
type Options struct {
	DefaultItemGrams int64
	CarrierTimeout   time.Duration
	TrackingCacheTTL time.Duration
}

// Manager drives the shipment side of the order lifecycle.
type Manager struct {
	deps    Deps
	opts    Options
	metrics *telemetry.Metrics
	logger  *otelzap.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewManager creates a Manager.
func NewManager(deps Deps, opts Options, metrics *telemetry.Metrics, logger *otelzap.Logger, tracer trace.Tracer) *Manager {
	if opts.DefaultItemGrams <= 0 {
		opts.DefaultItemGrams = 500
	}
	return &Manager{
		deps:    deps,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		tracer:  telemetry.TracerOrNoop(tracer),
		now:     time.Now,
	}
}

// CreateShipment books the order with adapter, records the shipment and moves
// the order to shipped. Nothing is persisted when the carrier call fails.
func (m *Manager) CreateShipment(ctx context.Context, tenant domain.TenantID, orderID int64, adapter carrier.Adapter) (*domain.Shipment, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.CreateShipment")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("carrier", adapter.Name()),
	)

	shipment, err := m.createShipment(ctx, tenant, orderID, adapter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.audit(ctx, tenant, ActionCreateShipment, domain.OutcomeFailed, map[string]any{
			"order_id": orderID,
			"carrier":  adapter.Name(),
			"error":    err.Error(),
		})
		return nil, err
	}

	m.metrics.RecordShipment(adapter.Name())
	m.audit(ctx, tenant, ActionCreateShipment, domain.OutcomeSuccess, map[string]any{
		"order_id":        orderID,
		"carrier":         shipment.Carrier,
		"tracking_number": shipment.TrackingNumber,
	})
	return shipment, nil
}

func (m *Manager) createShipment(ctx context.Context, tenant domain.TenantID, orderID int64, adapter carrier.Adapter) (*domain.Shipment, error) {
	order, err := m.deps.Orders.GetOrder(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	if order.HasShipment() {
		return nil, domain.NewError(domain.KindDuplicateShipment, "order %s already shipped with %s (%s)",
			order.Number, order.Shipment.Carrier, order.Shipment.TrackingNumber)
	}
	if !CanShip(order.Status) {
		return nil, domain.NewError(domain.KindInvalidTransition, "order %s is %s", order.Number, order.Status)
	}

	req, err := BuildShipmentRequest(order, m.opts.DefaultItemGrams)
	if err != nil {
		return nil, err
	}

	start := m.now()
	res := carrier.Invoke(ctx, adapter.Name(), m.opts.CarrierTimeout, func(ctx context.Context) (*carrier.ShipmentResponse, error) {
		return adapter.CreateShipment(ctx, req)
	})
	m.observe("create_shipment", adapter.Name(), res.Err, m.now().Sub(start))
	if !res.OK() {
		return nil, providerError(res.Err)
	}
	if res.Value.TrackingNumber == "" {
		return nil, providerError(carrier.NewError(adapter.Name(), carrier.CodeAPIError, "shipment confirmed without tracking number"))
	}

	now := m.now()
	shipment := &domain.Shipment{
		TenantID:          tenant,
		OrderID:           order.ID,
		Carrier:           adapter.Name(),
		TrackingNumber:    res.Value.TrackingNumber,
		LabelURL:          res.Value.LabelURL,
		Status:            domain.OrderShipped,
		EstimatedDelivery: res.Value.EstimatedDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := m.deps.Shipments.RecordShipment(ctx, shipment, domain.OrderShipped); err != nil {
		m.logger.Ctx(ctx).Error("Carrier voucher created but shipment not recorded",
			zap.Int64("order_id", order.ID),
			zap.String("carrier", shipment.Carrier),
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Ctx(ctx).Info("Shipment created",
		zap.Int64("order_id", order.ID),
		zap.String("carrier", shipment.Carrier),
		zap.String("tracking_number", shipment.TrackingNumber),
	)
	return shipment, nil
}

// TrackingUpdate is the outcome of a tracking refresh.
type TrackingUpdate struct {
	OrderID        int64              `json:"order_id"`
	Carrier        string             `json:"carrier"`
	TrackingNumber string             `json:"tracking_number"`
	CarrierStatus  carrier.Status     `json:"carrier_status"`
	RawStatus      string             `json:"raw_status"`
	Location       string             `json:"location,omitempty"`
	PreviousStatus domain.OrderStatus `json:"previous_status"`
	Status         domain.OrderStatus `json:"status"`
	Changed        bool               `json:"changed"`
}

// RefreshTracking asks the order's carrier for the latest status and applies
// the mapped order status. Unmapped carrier statuses and terminal orders leave
// the order unchanged; a change emits one notification.
func (m *Manager) RefreshTracking(ctx context.Context, tenant domain.TenantID, orderID int64, registry *carrier.Registry) (*TrackingUpdate, error) {
	ctx, span := m.tracer.Start(ctx, "lifecycle.RefreshTracking")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	update, err := m.refreshTracking(ctx, tenant, orderID, registry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.audit(ctx, tenant, ActionRefreshTracking, domain.OutcomeFailed, map[string]any{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return nil, err
	}

	m.audit(ctx, tenant, ActionRefreshTracking, domain.OutcomeSuccess, update)
	return update, nil
}

func (m *Manager) refreshTracking(ctx context.Context, tenant domain.TenantID, orderID int64, registry *carrier.Registry) (*TrackingUpdate, error) {
	order, err := m.deps.Orders.GetOrder(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasShipment() {
		return nil, domain.NewError(domain.KindNoShipment, "order %s has no tracking number", order.Number)
	}

	adapter, err := registry.Get(order.Shipment.Carrier)
	if err != nil {
		return nil, domain.NewError(domain.KindCarrierNotFound, "carrier %q is not enabled", order.Shipment.Carrier).WithCause(err)
	}

	status, err := m.trackingStatus(ctx, tenant, adapter, order.Shipment.TrackingNumber)
	if err != nil {
		return nil, err
	}

	update := &TrackingUpdate{
		OrderID:        order.ID,
		Carrier:        adapter.Name(),
		TrackingNumber: order.Shipment.TrackingNumber,
		CarrierStatus:  status.Status,
		RawStatus:      status.RawStatus,
		Location:       status.Location,
		PreviousStatus: order.Status,
		Status:         order.Status,
	}

	if next, ok := MapCarrierStatus(status.Status); ok && next != order.Status {
		if CanTransition(order.Status, next) {
			update.Status = next
			update.Changed = true
		} else {
			m.logger.Ctx(ctx).Info("Ignoring carrier status for order",
				zap.Int64("order_id", order.ID),
				zap.String("order_status", string(order.Status)),
				zap.String("carrier_status", string(status.Status)),
			)
		}
	}

	if err := m.deps.Shipments.UpdateStatus(ctx, tenant, order.ID, update.Status, update.RawStatus, update.Location); err != nil {
		return nil, err
	}

	if update.Changed {
		m.metrics.RecordTransition(string(update.PreviousStatus), string(update.Status))
		m.notify(ctx, domain.StatusChange{
			TenantID:       tenant,
			OrderID:        order.ID,
			OrderNumber:    order.Number,
			From:           update.PreviousStatus,
			To:             update.Status,
			Carrier:        update.Carrier,
			TrackingNumber: update.TrackingNumber,
			CarrierStatus:  update.RawStatus,
			Location:       update.Location,
			At:             m.now(),
		})
	}
	return update, nil
}

func (m *Manager) trackingStatus(ctx context.Context, tenant domain.TenantID, adapter carrier.Adapter, trackingNumber string) (*carrier.TrackingStatus, error) {
	key := TrackingCacheKey(tenant, adapter.Name(), trackingNumber)
	if m.deps.Cache != nil && m.opts.TrackingCacheTTL > 0 {
		if raw, err := m.deps.Cache.Get(ctx, key); err == nil {
			var cached carrier.TrackingStatus
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			m.logger.Ctx(ctx).Warn("Tracking cache read failed", zap.Error(err))
		}
	}

	start := m.now()
	res := carrier.Invoke(ctx, adapter.Name(), m.opts.CarrierTimeout, func(ctx context.Context) (*carrier.TrackingStatus, error) {
		return adapter.GetTrackingStatus(ctx, trackingNumber)
	})
	m.observe("get_tracking_status", adapter.Name(), res.Err, m.now().Sub(start))
	if !res.OK() {
		return nil, providerError(res.Err)
	}

	if m.deps.Cache != nil && m.opts.TrackingCacheTTL > 0 {
		if raw, err := json.Marshal(res.Value); err == nil {
			if err := m.deps.Cache.Set(ctx, key, raw, m.opts.TrackingCacheTTL); err != nil {
				m.logger.Ctx(ctx).Warn("Tracking cache write failed", zap.Error(err))
			}
		}
	}
	return res.Value, nil
}

// TrackingCacheKey is the cache key of a shipment's last carrier status.
func TrackingCacheKey(tenant domain.TenantID, carrierName, trackingNumber string) string {
	return fmt.Sprintf("tracking:%d:%s:%s", tenant, carrierName, trackingNumber)
}

func (m *Manager) notify(ctx context.Context, change domain.StatusChange) {
	if m.deps.Notifier == nil {
		return
	}
	if err := m.deps.Notifier.NotifyStatusChange(ctx, change); err != nil {
		m.logger.Ctx(ctx).Warn("Status notification failed",
			zap.Int64("order_id", change.OrderID),
			zap.Error(err),
		)
	}
}

// Audit appends an integration log entry. Sink failures are logged, never returned.
func (m *Manager) Audit(ctx context.Context, tenant domain.TenantID, action, outcome string, payload any) {
	m.audit(ctx, tenant, action, outcome, payload)
}

func (m *Manager) audit(ctx context.Context, tenant domain.TenantID, action, outcome string, payload any) {
	if m.deps.Logs == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte(`{}`)
	}
	entry := domain.IntegrationLog{
		ID:        uuid.NewString(),
		TenantID:  tenant,
		Service:   LogService,
		Action:    action,
		Payload:   raw,
		Outcome:   outcome,
		CreatedAt: m.now(),
	}
	if err := m.deps.Logs.Append(ctx, entry); err != nil {
		m.logger.Ctx(ctx).Warn("Integration log append failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (m *Manager) observe(operation, name string, err *carrier.Error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
		m.metrics.RecordError(name, err.Code)
	}
	m.metrics.RecordRequest(operation, name, status, d.Seconds())
}

// providerError converts a carrier failure into the engine taxonomy.
func providerError(err *carrier.Error) error {
	return domain.NewError(domain.KindProviderUnavailable, "%s: %s", err.Carrier, err.Message).WithCause(err)
}
