package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dixis/shipping/internal/config"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/server"
	"github.com/dixis/shipping/internal/storage/memory"
	"github.com/dixis/shipping/internal/storage/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shipping",
	Short:   "Dixis shipping - zone rates, carrier selection and shipment tracking",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var bulkShipCmd = &cobra.Command{
	Use:   "bulk-ship [order-id...]",
	Short: "Create shipments for several orders with one carrier",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBulkShip,
}

var quoteCmd = &cobra.Command{
	Use:   "quote [order-id]",
	Short: "Print the shipping quote of an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuote,
}

func init() {
	migrateCmd.Flags().Bool("seed", false, "insert the Greek reference data and sample orders")

	bulkShipCmd.Flags().Int64("tenant", int64(sampleTenant), "tenant id")
	bulkShipCmd.Flags().String("carrier", "", "carrier key")
	_ = bulkShipCmd.MarkFlagRequired("carrier")

	quoteCmd.Flags().Int64("tenant", int64(sampleTenant), "tenant id")
	quoteCmd.Flags().String("method", "HOME", "delivery method code")

	rootCmd.AddCommand(serveCmd, migrateCmd, bulkShipCmd, quoteCmd)
}

// setup loads configuration and telemetry shared by every command. The
// returned cleanup flushes the logger and the tracer.
func setup(ctx context.Context) (*config.Config, *otelzap.Logger, trace.Tracer, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tracer, tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracerShutdown = func(context.Context) error { return nil }
	}

	cleanup := func() {
		_ = tracerShutdown(context.Background())
		_ = logger.Sync()
	}
	return cfg, logger, tracer, cleanup, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, tracer, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	a, err := initApp(ctx, cfg, logger, tracer, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("Starting Dixis shipping",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
	)

	srv := server.New(server.Config{Port: cfg.Port, Gatherer: reg}, a.engine, logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, logger, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.DatabaseURL == "" {
		return errors.New("migrate needs DATABASE_URL")
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("Schema migrated")

	if seed, _ := cmd.Flags().GetBool("seed"); seed {
		if err := db.Seed(ctx, postgres.SeedData{
			Reference: memory.GreekReferenceData(),
			Orders:    memory.SampleOrders(sampleTenant),
		}); err != nil {
			return err
		}
		logger.Info("Reference data seeded")
	}
	return nil
}

func runBulkShip(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("order id %q: %w", a, err)
		}
		ids[i] = id
	}
	tenant, _ := cmd.Flags().GetInt64("tenant")
	carrierName, _ := cmd.Flags().GetString("carrier")

	cfg, logger, tracer, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := initApp(ctx, cfg, logger, tracer, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.engine.ProcessBulkShipping(ctx, domain.TenantID(tenant), ids, carrierName)
	if err != nil {
		return err
	}
	return printJSON(cmd, summary)
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	orderID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("order id %q: %w", args[0], err)
	}
	tenant, _ := cmd.Flags().GetInt64("tenant")
	method, _ := cmd.Flags().GetString("method")

	cfg, logger, tracer, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	a, err := initApp(ctx, cfg, logger, tracer, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	quote, err := a.engine.GetQuote(ctx, domain.TenantID(tenant), orderID, method)
	if err != nil {
		return err
	}
	return printJSON(cmd, quote)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
