package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/shipping/internal/cache"
	"github.com/dixis/shipping/internal/config"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/engine"
	"github.com/dixis/shipping/internal/notify"
	"github.com/dixis/shipping/internal/rating"
	"github.com/dixis/shipping/internal/storage/memory"
	"github.com/dixis/shipping/internal/storage/postgres"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// sampleTenant owns the demo orders of the in-memory store and the seed.
const sampleTenant domain.TenantID = 1

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}
	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

// storage is the set of repositories the engine runs on.
type storage struct {
	orders    domain.OrderRepository
	shipments domain.ShipmentRepository
	reference domain.ReferenceSource
	settings  domain.SettingsProvider
	logs      domain.IntegrationLogSink
	close     func() error
}

// initStorage uses PostgreSQL when DATABASE_URL is set, and otherwise an
// in-memory store holding the Greek reference data and two sample orders.
func initStorage(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (*storage, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory sample data")
		store := memory.New(memory.GreekReferenceData())
		for _, o := range memory.SampleOrders(sampleTenant) {
			store.PutOrder(o)
		}
		return &storage{
			orders:    store,
			shipments: store,
			reference: store,
			settings:  store,
			logs:      store,
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(db)
	return &storage{
		orders:    store,
		shipments: store,
		reference: store,
		settings:  store,
		logs:      store,
		close:     db.Close,
	}, nil
}

func initCache(ctx context.Context, cfg *config.Config, logger *otelzap.Logger) (cache.Cache, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	adapter, err := cache.NewRedisAdapter(cfg.RedisURL, cfg.CachePrefix)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := adapter.Ping(pingCtx); err != nil {
		_ = adapter.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	logger.Info("Redis cache enabled", zap.String("prefix", cfg.CachePrefix))
	return adapter, nil
}

// initNotifier always logs status changes and also publishes them over MQTT
// when a broker is configured.
func initNotifier(cfg *config.Config, logger *otelzap.Logger) (domain.Notifier, func(), error) {
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.MQTTBroker == "" {
		return notifiers, func() {}, nil
	}

	client, err := notify.NewMQTTClient(notify.MQTTConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		QoS:      1,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	notifiers = append(notifiers, notify.NewMQTTNotifier(client, cfg.MQTTTopicPrefix))
	return notifiers, client.Close, nil
}

// app is a fully wired engine plus everything that must be released with it.
type app struct {
	engine  *engine.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func initApp(ctx context.Context, cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := store.close(); err != nil {
			logger.Warn("Closing storage failed", zap.Error(err))
		}
	})

	c, err := initCache(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c != nil {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	notifier, closeNotifier, err := initNotifier(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeNotifier)

	quoteOpts := rating.DefaultOptions()
	quoteOpts.DefaultZoneID = cfg.DefaultZoneID
	quoteOpts.DefaultItemWeightGrams = cfg.DefaultItemGrams
	quoteOpts.CODFee = cfg.CODFee
	quoteOpts.ExtraWeightRatePerKG = cfg.ExtraWeightRatePerKG

	a.engine = engine.New(engine.Deps{
		Orders:    store.orders,
		Shipments: store.shipments,
		Settings:  store.settings,
		Logs:      store.logs,
		Notifier:  notifier,
		Cache:     c,
		Snapshots: rating.NewStore(store.reference, c, cfg.SnapshotTTL, logger),
		Quotes:    rating.NewQuoteEngine(quoteOpts, logger, tracer),
	}, engine.Options{
		Carriers:           engine.Carriers(cfg),
		Reliability:        cfg.CarrierReliability,
		DefaultReliability: cfg.DefaultReliability,
		CarrierTimeout:     cfg.CarrierTimeout,
		BulkConcurrency:    cfg.BulkConcurrency,
		DefaultItemGrams:   cfg.DefaultItemGrams,
		TrackingCacheTTL:   cfg.TrackingCacheTTL,
	}, telemetry.NewMetrics(reg), logger, tracer)

	return a, nil
}
