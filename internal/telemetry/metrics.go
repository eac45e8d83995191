package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	CarrierErrors     *prometheus.CounterVec
	QuotesTotal       *prometheus.CounterVec
	ShipmentsCreated  *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	BulkItems         *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg. Tests pass a
// fresh prometheus.NewRegistry() so repeated construction never collides.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shipping_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error code",
			},
			[]string{"carrier", "error_type"},
		),
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_quotes_total",
				Help: "Quotes computed by delivery method and outcome",
			},
			[]string{"method", "outcome"},
		),
		ShipmentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_shipments_created_total",
				Help: "Shipments created by carrier",
			},
			[]string{"carrier"},
		),
		StatusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_order_status_transitions_total",
				Help: "Order status changes driven by carrier tracking",
			},
			[]string{"from", "to"},
		),
		BulkItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_bulk_items_total",
				Help: "Bulk shipping items by carrier and outcome",
			},
			[]string{"carrier", "outcome"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	if m == nil {
		return
	}
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordQuote records a quote outcome.
func (m *Metrics) RecordQuote(method, outcome string) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(method, outcome).Inc()
}

// RecordShipment records a created shipment.
func (m *Metrics) RecordShipment(carrier string) {
	if m == nil {
		return
	}
	m.ShipmentsCreated.WithLabelValues(carrier).Inc()
}

// RecordTransition records an order status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

// RecordBulkItem records one processed bulk item.
func (m *Metrics) RecordBulkItem(carrier, outcome string) {
	if m == nil {
		return
	}
	m.BulkItems.WithLabelValues(carrier, outcome).Inc()
}
