package elta

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dixis/shipping/pkg/carrier"
)

const (
	defaultRatesPath     = "/api/v1/rates"
	defaultShipmentsPath = "/api/v1/shipments"
	defaultTrackingPath  = "/api/v1/tracking"
	defaultPingPath      = "/api/v1/ping"

	contentTypeXML = "application/xml; charset=utf-8"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP/XML.
type HTTPAPIClient struct {
	settings   carrier.Settings
	httpClient *http.Client
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(settings carrier.Settings, httpClient *http.Client) *HTTPAPIClient {
	return &HTTPAPIClient{
		settings:   settings,
		httpClient: httpClient,
	}
}

// GetRate prices a parcel.
func (c *HTTPAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var out RateResponse
	if err := c.exchange(ctx, http.MethodPost, c.settings.URL(carrier.ActionCalculateRate, defaultRatesPath), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateShipment registers a shipment.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	var out ShipmentResponse
	if err := c.exchange(ctx, http.MethodPost, c.settings.URL(carrier.ActionCreateShipment, defaultShipmentsPath), req, &out); err != nil {
		return nil, err
	}
	if out.Voucher == "" {
		return nil, &APIError{Code: "NO_VOUCHER", Description: "voucher missing from shipment confirmation"}
	}
	return &out, nil
}

// GetTracking returns the events of a voucher.
func (c *HTTPAPIClient) GetTracking(ctx context.Context, voucher string) (*TrackingResponse, error) {
	endpoint := c.settings.URL(carrier.ActionTrackShipment, defaultTrackingPath) + "/" + url.PathEscape(voucher)

	var out TrackingResponse
	if err := c.exchange(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the API.
func (c *HTTPAPIClient) Ping(ctx context.Context) error {
	return c.exchange(ctx, http.MethodGet, c.settings.URL(carrier.ActionPing, defaultPingPath), nil, nil)
}

// ============================================================================
// HTTP Helpers
// ============================================================================

func (c *HTTPAPIClient) exchange(ctx context.Context, method, endpoint string, in, out any) error {
	var bodyReader io.Reader
	if in != nil {
		body, err := xml.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(append([]byte(xml.Header), body...))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.settings.APIKey)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Accept-Language", "el-GR")
	if in != nil {
		req.Header.Set("Content-Type", contentTypeXML)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr APIError
	if err := xml.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
			return carrier.HTTPError(carrierName, resp.StatusCode, apiErr.Code+": "+apiErr.Description)
		}
		return &apiErr
	}
	return carrier.HTTPError(carrierName, resp.StatusCode, string(body))
}

var _ APIClient = (*HTTPAPIClient)(nil)
