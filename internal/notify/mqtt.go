package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dixis/shipping/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Publisher sends one message to a broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	ConnectTimeout time.Duration
}

// MQTTClient publishes through an eclipse paho client.
type MQTTClient struct {
	client mqtt.Client
	qos    byte
	logger *otelzap.Logger
}

// NewMQTTClient creates a client and connects to the broker.
func NewMQTTClient(cfg MQTTConfig, logger *otelzap.Logger) (*MQTTClient, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("MQTT client connected", zap.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	return &MQTTClient{client: client, qos: cfg.QoS, logger: logger}, nil
}

// Publish sends payload and waits for the broker acknowledgement or ctx.
func (c *MQTTClient) Publish(ctx context.Context, topic string, payload []byte) error {
	token := c.client.Publish(topic, c.qos, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (c *MQTTClient) Close() {
	c.client.Disconnect(250)
}

// MQTTNotifier publishes each change as JSON to
// <prefix>/<tenant>/orders/<order id>/status.
type MQTTNotifier struct {
	publisher Publisher
	prefix    string
}

// NewMQTTNotifier creates an MQTTNotifier. An empty prefix defaults to "shipping".
func NewMQTTNotifier(publisher Publisher, prefix string) *MQTTNotifier {
	if prefix == "" {
		prefix = "shipping"
	}
	return &MQTTNotifier{publisher: publisher, prefix: prefix}
}

// Topic returns the topic a change is published to.
func (n *MQTTNotifier) Topic(change domain.StatusChange) string {
	return fmt.Sprintf("%s/%d/orders/%d/status", n.prefix, change.TenantID, change.OrderID)
}

// NotifyStatusChange implements domain.Notifier.
func (n *MQTTNotifier) NotifyStatusChange(ctx context.Context, change domain.StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal status change: %w", err)
	}
	if err := n.publisher.Publish(ctx, n.Topic(change), payload); err != nil {
		return fmt.Errorf("publish status change for order %d: %w", change.OrderID, err)
	}
	return nil
}

var (
	_ Publisher       = (*MQTTClient)(nil)
	_ domain.Notifier = (*MQTTNotifier)(nil)
)
