// Package acs provides integration with the ACS Courier web services.
package acs

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
	carrierName = "acs"
	timeLayout  = "2006-01-02T15:04:05"
)

var statusMap = map[string]carrier.Status{
	"ΠΑΡΑΛΑΒΗ":           carrier.StatusPickedUp,
	"ΜΕΤΑΦΟΡΑ":           carrier.StatusInTransit,
	"ΔΙΑΝΟΜΗ":            carrier.StatusOutForDelivery,
	"ΠΑΡΑΔΟΘΗΚΕ":         carrier.StatusDelivered,
	"ΑΝΕΠΙΤΥΧΗΣ ΕΠΙΔΟΣΗ": carrier.StatusFailedDelivery,
	"ΕΠΙΣΤΡΟΦΗ":          carrier.StatusReturned,
}

// Client is the ACS Courier adapter.
type Client struct {
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates an ACS adapter from tenant settings.
func New(settings carrier.Settings, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("acs settings: %w", err)
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

// NewWithAPIClient creates an ACS adapter with a custom API client.
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
	return "ACS Courier"
}

// SupportedServices lists ACS delivery products.
func (c *Client) SupportedServices() []string {
	return []string{"standard", "next_day", "same_day", "store_pickup"}
}

// CoverageAreas lists the regions ACS serves.
func (c *Client) CoverageAreas() []string {
	return []string{"Ηπειρωτική Ελλάδα", "Νησιά", "Κύπρος"}
}

// Features lists optional ACS capabilities.
func (c *Client) Features() []string {
	return []string{"cod", "insurance", "signature", "saturday_delivery", "tracking", "pickup_points"}
}

// CalculateRate prices a parcel with ACS_Price_Calculation.
func (c *Client) CalculateRate(ctx context.Context, req *carrier.RateRequest) (*carrier.RateQuote, error) {
	ctx, span := c.tracer.Start(ctx, "acs.CalculateRate")
	defer span.End()
	span.SetAttributes(attribute.String("postal_code", req.Recipient.PostalCode))

	c.logger.Ctx(ctx).Info("Getting ACS price",
		zap.String("postal_code", req.Recipient.PostalCode),
		zap.Float64("weight_kg", req.Parcel.WeightKG),
	)

	apiResp, err := c.apiClient.CalculatePrice(ctx, &PriceRequest{
		RecipientZipcode: req.Recipient.PostalCode,
		RecipientCountry: countryOrGR(req.Recipient.CountryCode),
		Weight:           req.Parcel.WeightKG,
		CodAmount:        req.Parcel.CODAmount,
		InsuranceAmount:  req.Parcel.DeclaredValue,
		ChargeType:       ChargeSender,
	})
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	return &carrier.RateQuote{
		Carrier:      carrierName,
		ServiceCode:  "standard",
		Cost:         apiResp.TotalAmount.Round(2),
		Currency:     carrier.Currency,
		DeliveryDays: apiResp.TransitDays,
	}, nil
}

// CreateShipment books a voucher with ACS_Create_Voucher.
func (c *Client) CreateShipment(ctx context.Context, req *carrier.ShipmentRequest) (*carrier.ShipmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "acs.CreateShipment")
	defer span.End()
	span.SetAttributes(attribute.String("reference", req.Reference))

	c.logger.Ctx(ctx).Info("Creating ACS voucher",
		zap.String("reference", req.Reference),
		zap.String("recipient", req.Recipient.Name),
	)

	apiResp, err := c.apiClient.CreateVoucher(ctx, &VoucherRequest{
		RecipientName:    req.Recipient.Name,
		RecipientAddress: joinLines(req.Recipient.AddressLine1, req.Recipient.AddressLine2),
		RecipientZipcode: req.Recipient.PostalCode,
		RecipientRegion:  req.Recipient.City,
		RecipientCountry: countryOrGR(req.Recipient.CountryCode),
		RecipientPhone:   req.Recipient.Phone,
		RecipientEmail:   req.Recipient.Email,
		Weight:           req.Parcel.WeightKG,
		ItemQuantity:     1,
		CodAmount:        req.Parcel.CODAmount,
		InsuranceAmount:  insuredValue(req),
		DeliveryProducts: deliveryProducts(req),
		ReferenceKey:     req.Reference,
		DeliveryNotes:    req.Parcel.Description,
		ChargeType:       ChargeSender,
	})
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	var eta *time.Time
	if t, err := time.Parse("2006-01-02", apiResp.EstimatedDeliveryDate); err == nil {
		eta = &t
	}
	return &carrier.ShipmentResponse{
		Carrier:           carrierName,
		TrackingNumber:    apiResp.VoucherNo,
		LabelURL:          apiResp.VoucherPrintURL,
		EstimatedDelivery: eta,
	}, nil
}

// GetTrackingStatus reads ACS_Trackingsummary and normalizes the status.
func (c *Client) GetTrackingStatus(ctx context.Context, trackingNumber string) (*carrier.TrackingStatus, error) {
	ctx, span := c.tracer.Start(ctx, "acs.GetTrackingStatus")
	defer span.End()
	span.SetAttributes(attribute.String("tracking_number", trackingNumber))

	apiResp, err := c.apiClient.TrackingSummary(ctx, trackingNumber)
	if err != nil {
		return nil, c.fail(ctx, span, err)
	}

	status := &carrier.TrackingStatus{
		TrackingNumber: trackingNumber,
		Status:         normalizeStatus(apiResp),
		RawStatus:      apiResp.ShipmentStatus,
		Location:       apiResp.LastCheckpointPlace,
		Description:    apiResp.LastCheckpoint,
	}
	if t, err := time.Parse(timeLayout, apiResp.LastCheckpointTime); err == nil {
		status.UpdatedAt = t
	}
	return status, nil
}

// TestConnection pings the ACS service.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.apiClient.Ping(ctx); err != nil {
		c.logger.Ctx(ctx).Warn("ACS connection test failed", zap.Error(err))
		return false
	}
	return true
}

func (c *Client) fail(ctx context.Context, span trace.Span, err error) error {
	c.logger.Ctx(ctx).Error("ACS API error", zap.Error(err))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return carrier.NewError(carrierName, carrier.CodeAPIError, apiErr.Description).WithCause(err)
	}
	return err
}

// ============================================================================
// Conversion helpers
// ============================================================================

func normalizeStatus(resp *TrackingResponse) carrier.Status {
	switch {
	case resp.ReturnedFlag == 1:
		return carrier.StatusReturned
	case resp.DeliveryFlag == 1:
		return carrier.StatusDelivered
	}
	return statusMap[strings.ToUpper(strings.TrimSpace(resp.ShipmentStatus))]
}

func deliveryProducts(req *carrier.ShipmentRequest) string {
	var products []string
	if req.Parcel.CODAmount.IsPositive() {
		products = append(products, "COD")
	}
	if req.Options.Insurance {
		products = append(products, "INS")
	}
	if req.Options.SignatureRequired {
		products = append(products, "SIG")
	}
	if req.Options.SaturdayDelivery {
		products = append(products, "SAT")
	}
	return strings.Join(products, ",")
}

func insuredValue(req *carrier.ShipmentRequest) decimal.Decimal {
	if req.Options.Insurance {
		return req.Parcel.DeclaredValue
	}
	return decimal.Zero
}

func joinLines(lines ...string) string {
	var parts []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, ", ")
}

func countryOrGR(code string) string {
	if code == "" {
		return "GR"
	}
	return code
}
