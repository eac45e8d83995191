package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Carrier keys in registration order.
const (
	CarrierELTA          = "elta"
	CarrierACS           = "acs"
	CarrierSpeedex       = "speedex"
	CarrierCourierCenter = "courier_center"
)

// CarrierConfig is the environment configuration of one carrier. Tenants can
// override the credentials through their integration settings.
type CarrierConfig struct {
	Enabled           bool              `envconfig:"ENABLED" default:"true"`
	UseMock           bool              `envconfig:"USE_MOCK" default:"true"`
	BaseURL           string            `envconfig:"BASE_URL"`
	APIKey            string            `envconfig:"API_KEY"`
	Endpoints         map[string]string `envconfig:"ENDPOINTS"`
	RequestsPerSecond float64           `envconfig:"REQUESTS_PER_SECOND" default:"5"`
	Burst             int               `envconfig:"BURST" default:"10"`
}

// Settings converts the configuration to adapter settings.
func (c CarrierConfig) Settings(timeout time.Duration) carrier.Settings {
	return carrier.Settings{
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Endpoints:         c.Endpoints,
		Timeout:           timeout,
		UseMock:           c.UseMock,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
	}
}

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`
	CachePrefix string `envconfig:"CACHE_PREFIX" default:"shipping:"`

	// Notifications
	MQTTBroker      string `envconfig:"MQTT_BROKER"`
	MQTTClientID    string `envconfig:"MQTT_CLIENT_ID" default:"dixis-shipping"`
	MQTTUsername    string `envconfig:"MQTT_USERNAME"`
	MQTTPassword    string `envconfig:"MQTT_PASSWORD"`
	MQTTTopicPrefix string `envconfig:"MQTT_TOPIC_PREFIX" default:"shipping"`

	// Carriers
	ELTA          CarrierConfig `envconfig:"ELTA"`
	ACS           CarrierConfig `envconfig:"ACS"`
	Speedex       CarrierConfig `envconfig:"SPEEDEX"`
	CourierCenter CarrierConfig `envconfig:"COURIER_CENTER"`

	CarrierReliability map[string]float64 `envconfig:"CARRIER_RELIABILITY" default:"acs:8.5,elta:7.0,speedex:8.0,courier_center:7.5"`
	DefaultReliability float64            `envconfig:"DEFAULT_RELIABILITY" default:"5.0"`
	CarrierTimeout     time.Duration      `envconfig:"CARRIER_TIMEOUT" default:"10s"`
	BulkConcurrency    int                `envconfig:"BULK_CONCURRENCY" default:"4"`

	// Rating
	DefaultZoneID        int64           `envconfig:"DEFAULT_ZONE_ID" default:"0"`
	DefaultItemGrams     int64           `envconfig:"DEFAULT_ITEM_GRAMS" default:"500"`
	CODFee               decimal.Decimal `envconfig:"COD_FEE" default:"2.00"`
	ExtraWeightRatePerKG decimal.Decimal `envconfig:"EXTRA_WEIGHT_RATE_PER_KG" default:"0.90"`
	SnapshotTTL          time.Duration   `envconfig:"SNAPSHOT_TTL" default:"5m"`
	TrackingCacheTTL     time.Duration   `envconfig:"TRACKING_CACHE_TTL" default:"5m"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"dixis-shipping"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

var defaultBaseURLs = map[string]string{
	CarrierELTA:          "https://api.elta-courier.gr",
	CarrierACS:           "https://webservices.acscourier.net/ACSRestServices/api",
	CarrierSpeedex:       "https://spdxws.gr",
	CarrierCourierCenter: "https://api.courier.gr",
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	for key, c := range cfg.Carriers() {
		if c.BaseURL == "" {
			c.BaseURL = defaultBaseURLs[key]
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Carriers returns the carrier configurations by key.
func (c *Config) Carriers() map[string]*CarrierConfig {
	return map[string]*CarrierConfig{
		CarrierELTA:          &c.ELTA,
		CarrierACS:           &c.ACS,
		CarrierSpeedex:       &c.Speedex,
		CarrierCourierCenter: &c.CourierCenter,
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.CarrierTimeout < 0 {
		errs = append(errs, errors.New("CARRIER_TIMEOUT must not be negative"))
	}
	if c.BulkConcurrency < 1 {
		errs = append(errs, errors.New("BULK_CONCURRENCY must be at least 1"))
	}
	if c.SnapshotTTL < 0 || c.TrackingCacheTTL < 0 {
		errs = append(errs, errors.New("cache TTLs must not be negative"))
	}
	if c.DefaultZoneID < 0 {
		errs = append(errs, errors.New("DEFAULT_ZONE_ID must not be negative"))
	}
	if c.CODFee.IsNegative() || c.ExtraWeightRatePerKG.IsNegative() {
		errs = append(errs, errors.New("fees must not be negative"))
	}
	if c.DefaultReliability < 0 || c.DefaultReliability > 10 {
		errs = append(errs, fmt.Errorf("DEFAULT_RELIABILITY %.1f outside 0-10", c.DefaultReliability))
	}
	for key, r := range c.CarrierReliability {
		if r < 0 || r > 10 {
			errs = append(errs, fmt.Errorf("reliability of %s %.1f outside 0-10", key, r))
		}
	}
	return errors.Join(errs...)
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("elta.enabled", c.ELTA.Enabled),
		attribute.Bool("acs.enabled", c.ACS.Enabled),
		attribute.Bool("speedex.enabled", c.Speedex.Enabled),
		attribute.Bool("courier_center.enabled", c.CourierCenter.Enabled),
		attribute.Bool("database.enabled", c.DatabaseURL != ""),
		attribute.Bool("redis.enabled", c.RedisURL != ""),
	}
}
