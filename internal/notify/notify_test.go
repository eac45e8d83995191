package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type message struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	messages []message
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message{topic, payload})
	return nil
}

func change() domain.StatusChange {
	return domain.StatusChange{
		TenantID:       3,
		OrderID:        1001,
		OrderNumber:    "ORD-1001",
		From:           domain.OrderShipped,
		To:             domain.OrderDelivered,
		Carrier:        "acs",
		TrackingNumber: "7200000001",
		CarrierStatus:  "DELIVERED",
		At:             time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestMQTTNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := notify.NewMQTTNotifier(pub, "")

	require.NoError(t, n.NotifyStatusChange(context.Background(), change()))
	require.Len(t, pub.messages, 1)
	assert.Equal(t, "shipping/3/orders/1001/status", pub.messages[0].topic)

	var got domain.StatusChange
	require.NoError(t, json.Unmarshal(pub.messages[0].payload, &got))
	assert.Equal(t, domain.OrderDelivered, got.To)
	assert.Equal(t, "7200000001", got.TrackingNumber)
}

func TestMQTTNotifier_PublishError(t *testing.T) {
	boom := errors.New("not connected")
	n := notify.NewMQTTNotifier(&fakePublisher{err: boom}, "market")

	err := n.NotifyStatusChange(context.Background(), change())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "market/3/orders/1001/status", n.Topic(change()))
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := notify.NewLogNotifier(otelzap.New(zap.New(core)))

	require.NoError(t, n.NotifyStatusChange(context.Background(), change()))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Order status changed", entry.Message)
	assert.Equal(t, "delivered", entry.ContextMap()["to"])
}

func TestMulti_CallsEveryNotifier(t *testing.T) {
	boom := errors.New("down")
	failing := notify.NewMQTTNotifier(&fakePublisher{err: boom}, "")
	ok := &fakePublisher{}

	m := notify.Multi{failing, notify.NewMQTTNotifier(ok, "")}
	err := m.NotifyStatusChange(context.Background(), change())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.messages, 1)
}
