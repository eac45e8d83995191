// Package elta provides integration with the ELTA Courier XML API.
package elta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dixis/shipping/internal/httpclient"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName    = "elta"
	defaultService = "STANDARD"
)

var statusMap = map[string]carrier.Status{
	"COLLECTED":          carrier.StatusPickedUp,
	"ACCEPTED":           carrier.StatusPickedUp,
	"IN_TRANSIT":         carrier.StatusInTransit,
	"ARRIVED_AT_HUB":     carrier.StatusInTransit,
	"OUT_FOR_DELIVERY":   carrier.StatusOutForDelivery,
	"DELIVERED":          carrier.StatusDelivered,
	"DELIVERY_FAILED":    carrier.StatusFailedDelivery,
	"RECIPIENT_ABSENT":   carrier.StatusFailedDelivery,
	"RETURNED_TO_SENDER": carrier.StatusReturned,
}

// Client is the ELTA Courier adapter.
type Client struct {
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates an ELTA adapter from tenant settings.
func New(settings carrier.Settings, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("elta settings: %w", err)
	}

	var apiClient APIClient
	if settings.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(settings, httpclient.NewClient(httpclient.Options{
			Carrier:           carrierName,
			Timeout:           settings.Timeout,
			RequestsPerSecond: settings.RequestsPerSecond,
			Burst:             settings.Burst,
		}, logger))
	}

	return NewWithAPIClient(apiClient, logger, tracer), nil
}

// NewWithAPIClient creates an ELTA adapter with a custom API client.
func NewWithAPIClient(apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		apiClient: apiClient,
		logger:    logger,
		tracer:    telemetry.TracerOrNoop(tracer),
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// DisplayName returns the carrier's public name.
func (c *Client) DisplayName() string {
	return "ΕΛΤΑ Courier"
}

// SupportedServices lists ELTA services.
func (c *Client) SupportedServices() []string {
	return []string{"standard", "express", "post_office_pickup"}
}

// CoverageAreas lists the regions ELTA serves.
func (c *Client) CoverageAreas() []string {
	return []string{"Ηπειρωτική Ελλάδα", "Νησιά", "Απομακρυσμένες περιοχές"}
}

// Features lists optional ELTA capabilities.
func (c *Client) Features() []string {
	return []string{"cod", "insurance", "tracking", "post_office_network"}
}

// CalculateRate prices a parcel.
func (c *Client) CalculateRate(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "elta.CalculateRate")
	defer span.End()
	span.SetAttributes(attribute.String("postal_code", req.Recipient.PostalCode))

	c.logger.Ctx(ctx).Info("Getting ELTA rate",
		zap.String("postal_code", req.Recipient.PostalCode),
		zap.Float64("weight_kg", req.Parcel.WeightKG),
	)

	apiReq := &RateRequest{
		Service:       defaultService,
		DestPostcode:  req.Recipient.PostalCode,
		DestCountry:   countryOrGR(req.Recipient.CountryCode),
		WeightKG:      req.Parcel.WeightKG,
		LengthCM:      req.Parcel.LengthCM,
		WidthCM:       req.Parcel.WidthCM,
		HeightCM:      req.Parcel.HeightCM,
		DeclaredValue: req.Parcel.DeclaredValue.StringFixed(2),
	}
	if req.Parcel.CODAmount.IsPositive() {
		apiReq.CODAmount = req.Parcel.CODAmount.StringFixed(2)
	}

	apiResp, err := c.apiClient.GetRate(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	cost, err := decimal.NewFromString(strings.TrimSpace(apiResp.Total))
	if err != nil {
		return nil, c.fail(ctx, span, carrier.NewError(carrierName, carrier.CodeAPIError, "unparseable price "+apiResp.Total).WithCause(err))
	}

	return &carrier.RateQuote{
		Carrier:      carrierName,
		ServiceCode:  strings.ToLower(apiResp.Service),
		Cost:         cost.Round(2),
		Currency:     carrier.Currency,
		DeliveryDays: apiResp.TransitDays,
	}, nil
}

// CreateShipment registers a shipment and returns its voucher.
func (c *Client) CreateShipment(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "elta.CreateShipment")
	defer span.End()
	span.SetAttributes(attribute.String("reference", req.Reference))

	c.logger.Ctx(ctx).Info("Creating ELTA shipment",
		zap.String("reference", req.Reference),
		zap.String("recipient", req.Recipient.Name),
	)

	apiReq := &ShipmentRequest{
		Reference: req.Reference,
		Service:   defaultService,
		Recipient: Recipient{
			Name:     req.Recipient.Name,
			Street:   strings.TrimSpace(req.Recipient.AddressLine1 + " " + req.Recipient.AddressLine2),
			City:     req.Recipient.City,
			Postcode: req.Recipient.PostalCode,
			Country:  countryOrGR(req.Recipient.CountryCode),
			Phone:    req.Recipient.Phone,
			Email:    req.Recipient.Email,
		},
		WeightKG:      req.Parcel.WeightKG,
		Description:   req.Parcel.Description,
		DeclaredValue: req.Parcel.DeclaredValue.StringFixed(2),
		Signature:     req.Options.SignatureRequired,
		Insurance:     req.Options.Insurance,
		Saturday:      req.Options.SaturdayDelivery,
	}
	if req.Parcel.CODAmount.IsPositive() {
		apiReq.CODAmount = req.Parcel.CODAmount.StringFixed(2)
	}

	apiResp, err := c.apiClient.CreateShipment(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	var eta *time.Time
	if t, err := time.Parse("2006-01-02", apiResp.ExpectedDelivery); err == nil {
		eta = &t
	}
	return &carrier.ShipmentResponse{
		Carrier:           carrierName,
		TrackingNumber:    apiResp.Voucher,
		LabelURL:          apiResp.LabelURL,
		EstimatedDelivery: eta,
	}, nil
}

// GetTrackingStatus returns the status of the latest tracking event.
func (c *Client) GetTrackingStatus(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error) {
	ctx, span := c.tracer.Start(ctx, "elta.GetTrackingStatus")
	defer span.End()
	span.SetAttributes(attribute.String("tracking_number", trackingNumber))

	apiResp, err := c.apiClient.GetTracking(ctx, trackingNumber)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	if len(apiResp.Events) == 0 {
		return nil, c.fail(ctx, span, fmt.Errorf("voucher %s has no events: %w", trackingNumber, carrier.ErrTrackingNotFound))
	}

	last := apiResp.Events[len(apiResp.Events)-1]
	status := &carrier.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         statusMap[strings.ToUpper(last.Code)],
		RawStatus:      last.Code,
		Location:       last.Station,
		Description:    last.Description,
	}
	if t, err := time.Parse(time.RFC3339, last.Timestamp); err == nil {
		status.UpdatedAt = t
	}
	return status, nil
}

// TestConnection pings the ELTA API.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.apiClient.Ping(ctx); err != nil {
		c.logger.Ctx(ctx).Warn("ELTA connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	c.logger.Ctx(ctx).Error("ELTA API error", zap.Error(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return carrier.NewError(carrierName, carrier.CodeAPIError, apiErr.Description).WithCause(err)
	}
	return err
}

func countryOrGR(code string) string {
	if code == "" {
		return "GR"
	}
	return code
}
