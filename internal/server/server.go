// Package server exposes the shipping engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dixis/shipping/internal/bulk"
	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/engine"
	"github.com/dixis/shipping/internal/lifecycle"
	"github.com/dixis/shipping/internal/orchestrator"
	"github.com/dixis/shipping/internal/rating"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// TenantHeader carries the tenant of every /v1 request.
const TenantHeader = "X-Tenant-ID"

// Engine is the part of *engine.Engine the HTTP API uses.
type Engine interface {
	GetQuote(ctx context.Context, tenant domain.TenantID, orderID int64, method string) (*rating.Quote, error)
	RateAllProviders(ctx context.Context, tenant domain.TenantID, orderID int64) ([]engine.ProviderRate, error)
	GetBestCarrier(ctx context.Context, tenant domain.TenantID, orderID int64, criteria orchestrator.Criteria) (*orchestrator.Selection, error)
	CreateShipment(ctx context.Context, tenant domain.TenantID, orderID int64, carrierName string) (*domain.Shipment, error)
	RefreshTracking(ctx context.Context, tenant domain.TenantID, orderID int64) (*lifecycle.TrackingUpdate, error)
	ProcessBulkShipping(ctx context.Context, tenant domain.TenantID, orderIDs []int64, carrierName string) (*bulk.Summary, error)
	ProviderStatistics(ctx context.Context, tenant domain.TenantID, testConnection bool) ([]orchestrator.ProviderStats, error)
	ValidateAddress(addr domain.Address) (domain.Address, error)
}

// Server is the HTTP server for the shipping service.
type Server struct {
	port     int
	engine   Engine
	gatherer prometheus.Gatherer
	logger   *otelzap.Logger
}

// Config holds server configuration.
type Config struct {
	Port int
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// New creates a new server instance.
func New(cfg Config, eng Engine, logger *otelzap.Logger) *Server {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		port:     cfg.Port,
		engine:   eng,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the routes of the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /v1/orders/{id}/quote", s.withOrder(s.handleQuote))
	mux.HandleFunc("GET /v1/orders/{id}/rates", s.withOrder(s.handleRates))
	mux.HandleFunc("POST /v1/orders/{id}/best-carrier", s.withOrder(s.handleBestCarrier))
	mux.HandleFunc("POST /v1/orders/{id}/shipment", s.withOrder(s.handleCreateShipment))
	mux.HandleFunc("POST /v1/orders/{id}/tracking/refresh", s.withOrder(s.handleRefreshTracking))
	mux.HandleFunc("POST /v1/shipments/bulk", s.withTenant(s.handleBulk))
	mux.HandleFunc("GET /v1/carriers", s.withTenant(s.handleCarriers))
	mux.HandleFunc("POST /v1/addresses/validate", s.handleValidateAddress)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type tenantHandler func(w http.ResponseWriter, r *http.Request, tenant domain.TenantID)

type orderHandler func(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64)

func (s *Server) withTenant(next tenantHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := domain.ParseTenantID(r.Header.Get(TenantHeader))
		if err != nil {
			s.writeError(w, r, domain.NewError(domain.KindInvalidInput, "missing or invalid %s header", TenantHeader))
			return
		}
		next(w, r, tenant)
	}
}

func (s *Server) withOrder(next orderHandler) http.HandlerFunc {
	return s.withTenant(func(w http.ResponseWriter, r *http.Request, tenant domain.TenantID) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			s.writeError(w, r, domain.NewError(domain.KindInvalidInput, "invalid order id %q", r.PathValue("id")))
			return
		}
		next(w, r, tenant, id)
	})
}

type quoteRequest struct {
	Method string `json:"method"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64) {
	var req quoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	quote, err := s.engine.GetQuote(r.Context(), tenant, orderID, req.Method)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64) {
	rates, err := s.engine.RateAllProviders(r.Context(), tenant, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "rates": rates})
}

func (s *Server) handleBestCarrier(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64) {
	var criteria orchestrator.Criteria
	if !s.decode(w, r, &criteria) {
		return
	}
	sel, err := s.engine.GetBestCarrier(r.Context(), tenant, orderID, criteria)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

type shipmentRequest struct {
	Carrier string `json:"carrier"`
}

func (s *Server) handleCreateShipment(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64) {
	var req shipmentRequest
	if !s.decode(w, r, &req) {
		return
	}
	sh, err := s.engine.CreateShipment(r.Context(), tenant, orderID, req.Carrier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleRefreshTracking(w http.ResponseWriter, r *http.Request, tenant domain.TenantID, orderID int64) {
	update, err := s.engine.RefreshTracking(r.Context(), tenant, orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

type bulkRequest struct {
	OrderIDs []int64 `json:"order_ids"`
	Carrier  string  `json:"carrier"`
}

// handleBulk answers 200 whenever the batch ran, even if every item failed.
func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, tenant domain.TenantID) {
	var req bulkRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.engine.ProcessBulkShipping(r.Context(), tenant, req.OrderIDs, req.Carrier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request, tenant domain.TenantID) {
	test, _ := strconv.ParseBool(r.URL.Query().Get("test_connection"))
	stats, err := s.engine.ProviderStatistics(r.Context(), tenant, test)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"carriers": stats})
}

func (s *Server) handleValidateAddress(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if !s.decode(w, r, &addr) {
		return
	}
	normalized, err := s.engine.ValidateAddress(addr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "address": normalized})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, domain.NewError(domain.KindInvalidInput, "invalid JSON body").WithCause(err))
		return false
	}
	return true
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := StatusCode(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Ctx(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: err.Error()}})
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindOrderNotFound, domain.KindCarrierNotFound, domain.KindNoShipment:
		return http.StatusNotFound
	case domain.KindDuplicateShipment, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindInvalidAddress, domain.KindMethodNotAvailable, domain.KindZoneNotFound,
		domain.KindWeightTierNotFound, domain.KindRateNotConfigured:
		return http.StatusUnprocessableEntity
	case domain.KindProviderUnavailable:
		return http.StatusBadGateway
	case domain.KindNoCarrierAvailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
