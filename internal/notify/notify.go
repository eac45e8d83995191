// Package notify delivers order status changes produced by tracking refreshes.
package notify

import (
	"context"
	"errors"

	"github.com/dixis/shipping/internal/domain"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// LogNotifier writes status changes to the log.
type LogNotifier struct {
	logger *otelzap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *otelzap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyStatusChange implements domain.Notifier.
func (n *LogNotifier) NotifyStatusChange(ctx context.Context, change domain.StatusChange) error {
	n.logger.Ctx(ctx).Info("Order status changed",
		zap.Int64("tenant_id", int64(change.TenantID)),
		zap.Int64("order_id", change.OrderID),
		zap.String("order_number", change.OrderNumber),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
		zap.String("carrier", change.Carrier),
		zap.String("tracking_number", change.TrackingNumber),
	)
	return nil
}

// Multi fans a change out to several notifiers. Every notifier is called even
// when an earlier one fails.
type Multi []domain.Notifier

// NotifyStatusChange implements domain.Notifier.
func (m Multi) NotifyStatusChange(ctx context.Context, change domain.StatusChange) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyStatusChange(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ domain.Notifier = (*LogNotifier)(nil)
	_ domain.Notifier = Multi(nil)
)
