// Package speedex provides integration with the Speedex SOAP access point.
package speedex

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
	carrierName    = "speedex"
	defaultService = "ECONOMY"
	timeLayout     = "2006-01-02T15:04:05"
)

var statusMap = map[string]carrier.Status{
	"PICKED":       carrier.StatusPickedUp,
	"TRANSIT":      carrier.StatusInTransit,
	"DELIVERY":     carrier.StatusOutForDelivery,
	"DELIVERED":    carrier.StatusDelivered,
	"NOTDELIVERED": carrier.StatusFailedDelivery,
	"RETURN":       carrier.StatusReturned,
}

// Client is the Speedex adapter.
type Client struct {
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a Speedex adapter from tenant settings. The API key is the
// access point session id.
func New(settings carrier.Settings, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("speedex settings: %w", err)
	}

	var apiClient APIClient
	if settings.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewSOAPAPIClient(settings, httpclient.NewClient(httpclient.Options{
			Carrier:           carrierName,
			Timeout:           settings.Timeout,
			RequestsPerSecond: settings.RequestsPerSecond,
			Burst:             settings.Burst,
		}, logger))
	}

	return NewWithAPIClient(apiClient, logger, tracer), nil
}

// NewWithAPIClient creates a Speedex adapter with a custom API client.
func NewWithAPIClient(apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		apiClient: apiClient,
		logger:    logger,
		tracer:    telemetry.TracerOrNoop(tracer),
	}
}

func (c *Client) Name() string        { return carrierName }
func (c *Client) DisplayName() string { return "Speedex" }

func (c *Client) SupportedServices() []string {
	return []string{"economy", "express", "same_day"}
}

func (c *Client) CoverageAreas() []string {
	return []string{"Ηπειρωτική Ελλάδα", "Νησιά"}
}

func (c *Client) Features() []string {
	return []string{"cod", "insurance", "tracking", "saturday_delivery"}
}

// CalculateRate prices a parcel.
func (c *Client) CalculateRate(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "speedex.CalculateRate")
	defer span.End()
	span.SetAttributes(attribute.String("postal_code", req.Recipient.PostalCode))

	c.logger.Ctx(ctx).Info("Getting Speedex price",
		zap.String("postal_code", req.Recipient.PostalCode),
		zap.Float64("weight_kg", req.Parcel.WeightKG),
	)

	apiResp, err := c.apiClient.CalculatePrice(ctx, &PriceRequest{
		Service:       defaultService,
		PostalCode:    req.Recipient.PostalCode,
		WeightKG:      req.Parcel.WeightKG,
		DeclaredValue: req.Parcel.DeclaredValue,
		CODAmount:     req.Parcel.CODAmount,
	})
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	return &carrier.RateQuote{
		Carrier:      carrierName,
		ServiceCode:  strings.ToLower(defaultService),
		Cost:         apiResp.TotalPrice.Round(2),
		Currency:     carrier.Currency,
		DeliveryDays: apiResp.DeliveryDays,
	}, nil
}

// CreateShipment books a bill of lading.
func (c *Client) CreateShipment(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "speedex.CreateShipment")
	defer span.End()
	span.SetAttributes(attribute.String("reference", req.Reference))

	c.logger.Ctx(ctx).Info("Creating Speedex BOL",
		zap.String("reference", req.Reference),
		zap.String("recipient", req.Recipient.Name),
	)

	bol := &BOLRequest{
		CustomerReference: req.Reference,
		Service:           defaultService,
		RecipientName:     req.Recipient.Name,
		RecipientAddress:  strings.TrimSpace(req.Recipient.AddressLine1 + " " + req.Recipient.AddressLine2),
		RecipientCity:     req.Recipient.City,
		RecipientZip:      req.Recipient.PostalCode,
		RecipientPhone:    req.Recipient.Phone,
		RecipientEmail:    req.Recipient.Email,
		WeightKG:          req.Parcel.WeightKG,
		ItemsDescription:  req.Parcel.Description,
		CODAmount:         req.Parcel.CODAmount,
		Saturday:          req.Options.SaturdayDelivery,
		Signature:         req.Options.SignatureRequired,
	}
	if req.Options.Insurance {
		bol.InsuranceAmount = req.Parcel.DeclaredValue
	} else {
		bol.InsuranceAmount = decimal.Zero
	}

	apiResp, err := c.apiClient.CreateBOL(ctx, bol)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	var eta *time.Time
	if t, err := time.Parse("2006-01-02", apiResp.DeliveryDate); err == nil {
		eta = &t
	}
	return &carrier.ShipmentResponse{
		Carrier:           carrierName,
		TrackingNumber:    apiResp.VoucherCode,
		LabelURL:          apiResp.LabelURL,
		EstimatedDelivery: eta,
	}, nil
}

// GetTrackingStatus returns the status of the latest checkpoint.
func (c *Client) GetTrackingStatus(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error) {
	ctx, span := c.tracer.Start(ctx, "speedex.GetTrackingStatus")
	defer span.End()
	span.SetAttributes(attribute.String("tracking_number", trackingNumber))

	apiResp, err := c.apiClient.GetTraceByVoucher(ctx, trackingNumber)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}
	if len(apiResp.Checkpoints) == 0 {
		return nil, c.fail(ctx, span, fmt.Errorf("voucher %s has no checkpoints: %w", trackingNumber, carrier.ErrTrackingNotFound))
	}

	last := apiResp.Checkpoints[len(apiResp.Checkpoints)-1]
	status := &carrier.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         statusMap[strings.ToUpper(strings.TrimSpace(last.Status))],
		RawStatus:      last.Status,
		Location:       last.Branch,
		Description:    last.Description,
	}
	if t, err := time.ParseInLocation(timeLayout, last.Date, athens); err == nil {
		status.UpdatedAt = t
	}
	return status, nil
}

// TestConnection validates the session against the access point.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.apiClient.Ping(ctx); err != nil {
		c.logger.Ctx(ctx).Warn("Speedex connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	c.logger.Ctx(ctx).Error("Speedex API error", zap.Error(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code := carrier.CodeAPIError
	switch {
	case errors.Is(err, carrier.ErrAuthenticationFailed):
		code = carrier.CodeAuthFailed
	case errors.Is(err, carrier.ErrTrackingNotFound):
		code = carrier.CodeNotFound
	}
	return carrier.NewError(carrierName, code, apiErr.Message).WithCause(err)
}

var athens = loadAthens()

func loadAthens() *time.Location {
	loc, err := time.LoadLocation("Europe/Athens")
	if err != nil {
		return time.UTC
	}
	return loc
}
