// Package couriercenter provides integration with the Courier Center REST API.
package couriercenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dixis/shipping/internal/httpclient"
	"github.com/dixis/shipping/internal/telemetry"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	carrierName    = "courier_center"
	defaultService = "standard"
)

var statusMap = map[string]carrier.Status{
	"collected":        carrier.StatusPickedUp,
	"in_transit":       carrier.StatusInTransit,
	"out_for_delivery": carrier.StatusOutForDelivery,
	"delivered":        carrier.StatusDelivered,
	"undelivered":      carrier.StatusFailedDelivery,
	"returned":         carrier.StatusReturned,
}

// Client is the Courier Center adapter.
type Client struct {
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a Courier Center adapter from tenant settings.
func New(settings carrier.Settings, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("courier center settings: %w", err)
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

// NewWithAPIClient creates a Courier Center adapter with a custom API client.
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
	return "Courier Center"
}

// SupportedServices lists Courier Center services.
func (c *Client) SupportedServices() []string {
	return []string{"standard", "next_day"}
}

// CoverageAreas lists the regions Courier Center serves.
func (c *Client) CoverageAreas() []string {
	return []string{"Ηπειρωτική Ελλάδα", "Κρήτη", "Νησιά"}
}

// Features lists optional Courier Center capabilities.
func (c *Client) Features() []string {
	return []string{"cod", "tracking", "signature"}
}

// CalculateRate prices a parcel.
func (c *Client) CalculateRate(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "couriercenter.CalculateRate")
	defer span.End()
	span.SetAttributes(attribute.String("postal_code", req.Recipient.PostalCode))

	c.logger.Ctx(ctx).Info("Getting Courier Center rate",
		zap.String("postal_code", req.Recipient.PostalCode),
		zap.Float64("weight_kg", req.Parcel.WeightKG),
	)

	apiReq := &RateRequest{
		Service:       defaultService,
		Postcode:      req.Recipient.PostalCode,
		Country:       countryOrGR(req.Recipient.CountryCode),
		WeightKG:      req.Parcel.WeightKG,
		DeclaredValue: req.Parcel.DeclaredValue,
		CODAmount:     req.Parcel.CODAmount,
	}
	if req.Parcel.LengthCM > 0 && req.Parcel.WidthCM > 0 && req.Parcel.HeightCM > 0 {
		apiReq.Dimensions = &Dimensions{Length: req.Parcel.LengthCM, Width: req.Parcel.WidthCM, Height: req.Parcel.HeightCM}
	}

	apiResp, err := c.apiClient.GetRate(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	return &carrier.RateQuote{
		Carrier:      carrierName,
		ServiceCode:  apiResp.Service,
		Cost:         apiResp.Amount.Round(2),
		Currency:     carrier.Currency,
		DeliveryDays: apiResp.TransitDays,
	}, nil
}

// CreateShipment creates an airway bill.
func (c *Client) CreateShipment(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "couriercenter.CreateShipment")
	defer span.End()
	span.SetAttributes(attribute.String("reference", req.Reference))

	c.logger.Ctx(ctx).Info("Creating Courier Center shipment",
		zap.String("reference", req.Reference),
		zap.String("recipient", req.Recipient.Name),
	)

	apiResp, err := c.apiClient.CreateShipment(ctx, &ShipmentRequest{
		Reference: req.Reference,
		Service:   defaultService,
		Consignee: Consignee{
			Name:     req.Recipient.Name,
			Address:  strings.TrimSpace(req.Recipient.AddressLine1 + " " + req.Recipient.AddressLine2),
			City:     req.Recipient.City,
			Postcode: req.Recipient.PostalCode,
			Country:  countryOrGR(req.Recipient.CountryCode),
			Phone:    req.Recipient.Phone,
			Email:    req.Recipient.Email,
		},
		WeightKG:      req.Parcel.WeightKG,
		Contents:      req.Parcel.Description,
		DeclaredValue: req.Parcel.DeclaredValue,
		CODAmount:     req.Parcel.CODAmount,
		Extras:        extras(req.Options),
	})
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	var eta *time.Time
	if t, err := time.Parse("2006-01-02", apiResp.EstimatedDelivery); err == nil {
		eta = &t
	}
	return &carrier.ShipmentResponse{
		Carrier:           carrierName,
		TrackingNumber:    apiResp.AWB,
		LabelURL:          apiResp.LabelURL,
		EstimatedDelivery: eta,
	}, nil
}

// GetTrackingStatus returns the current state of an airway bill.
func (c *Client) GetTrackingStatus(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error) {
	ctx, span := c.tracer.Start(ctx, "couriercenter.GetTrackingStatus")
	defer span.End()
	span.SetAttributes(attribute.String("tracking_number", trackingNumber))

	apiResp, err := c.apiClient.GetTracking(ctx, trackingNumber)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	return &carrier.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         statusMap[strings.ToLower(apiResp.Status)],
		RawStatus:      apiResp.Status,
		Location:       apiResp.Location,
		Description:    apiResp.StatusText,
		UpdatedAt:      apiResp.UpdatedAt,
	}, nil
}

// TestConnection calls the health endpoint.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.apiClient.Health(ctx); err != nil {
		c.logger.Ctx(ctx).Warn("Courier Center connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	c.logger.Ctx(ctx).Error("Courier Center API error", zap.Error(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return carrier.NewError(carrierName, carrier.CodeInvalidInput, apiErr.Message).WithCause(err)
	}
	return err
}

func extras(opts carrier.ServiceOptions) []string {
	var out []string
	if opts.SignatureRequired {
		out = append(out, "signature")
	}
	if opts.Insurance {
		out = append(out, "insurance")
	}
	if opts.SaturdayDelivery {
		out = append(out, "saturday")
	}
	return out
}

func countryOrGR(code string) string {
	if code == "" {
		return "GR"
	}
	return code
}
