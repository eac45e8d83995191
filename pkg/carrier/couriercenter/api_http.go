package couriercenter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dixis/shipping/pkg/carrier"
)

const (
	defaultRatesPath     = "/api/v2/rates"
	defaultShipmentsPath = "/api/v2/shipments"
	defaultHealthPath    = "/api/v2/health"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	settings   carrier.Settings
	httpClient *http.Client
}

// NewHTTPAPIClient creates a Courier Center client sending requests through httpClient.
func NewHTTPAPIClient(settings carrier.Settings, httpClient *http.Client) *HTTPAPIClient {
	return &HTTPAPIClient{
		settings:   settings,
		httpClient: httpClient,
	}
}

func (c *HTTPAPIClient) GetRate(ctx context.Context, req *RateRequest) (*RateResponse, error) {
	var out RateResponse
	if err := c.do(ctx, http.MethodPost, c.settings.URL(carrier.ActionCalculateRate, defaultRatesPath), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	var out ShipmentResponse
	if err := c.do(ctx, http.MethodPost, c.settings.URL(carrier.ActionCreateShipment, defaultShipmentsPath), req, &out); err != nil {
		return nil, err
	}
	if out.AWB == "" {
		return nil, &APIError{Code: "missing_awb", Message: "awb missing from shipment response"}
	}
	return &out, nil
}

func (c *HTTPAPIClient) GetTracking(ctx context.Context, awb string) (*TrackingResponse, error) {
	endpoint := c.settings.URL(carrier.ActionTrackShipment, defaultShipmentsPath) + "/" + url.PathEscape(awb) + "/tracking"

	var out TrackingResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPAPIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.settings.URL(carrier.ActionPing, defaultHealthPath), nil, nil)
}

func (c *HTTPAPIClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return envelope.Error
		}
		return carrier.HTTPError(carrierName, resp.StatusCode, envelope.Error.Error())
	}
	return carrier.HTTPError(carrierName, resp.StatusCode, string(body))
}

var _ APIClient = (*HTTPAPIClient)(nil)
