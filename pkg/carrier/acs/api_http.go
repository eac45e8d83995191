package acs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dixis/shipping/pkg/carrier"
)

// ACS aliases.
const (
	AliasPriceCalculation = "ACS_Price_Calculation"
	AliasCreateVoucher    = "ACS_Create_Voucher"
	AliasTrackingSummary  = "ACS_Trackingsummary"
)

const (
	defaultAutoRestPath = "/ACSRestServices/api/ACSAutoRest"
	defaultPingPath     = "/ACSRestServices/api/ping"
)

// HTTPAPIClient is the production implementation of APIClient.
type HTTPAPIClient struct {
	settings   carrier.Settings
	httpClient *http.Client
}

// NewHTTPAPIClient creates an ACS client sending requests through httpClient.
func NewHTTPAPIClient(settings carrier.Settings, httpClient *http.Client) *HTTPAPIClient {
	return &HTTPAPIClient{
		settings:   settings,
		httpClient: httpClient,
	}
}

type aliasRequest struct {
	Alias  string `json:"ACSAlias"`
	Params any    `json:"ACSInputParameters"`
}

type aliasResponse struct {
	HasError     bool   `json:"ACSExecution_HasError"`
	ErrorMessage string `json:"ACSExecutionErrorMessage"`
	Output       struct {
		ValueOutput []json.RawMessage `json:"ACSValueOutput"`
	} `json:"ACSOutputResponce"`
}

// valueError is embedded in every ACSValueOutput row.
type valueError struct {
	Message string `json:"Error_Message"`
}

// CalculatePrice prices a parcel.
func (c *HTTPAPIClient) CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error) {
	var out PriceResponse
	if err := c.call(ctx, carrier.ActionCalculateRate, AliasPriceCalculation, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateVoucher books a shipment.
func (c *HTTPAPIClient) CreateVoucher(ctx context.Context, req *VoucherRequest) (*VoucherResponse, error) {
	var out VoucherResponse
	if err := c.call(ctx, carrier.ActionCreateShipment, AliasCreateVoucher, req, &out); err != nil {
		return nil, err
	}
	if out.VoucherNo == "" {
		return nil, &APIError{Code: "NO_VOUCHER", Description: "voucher number missing from response"}
	}
	return &out, nil
}

// TrackingSummary returns the latest checkpoint of a voucher.
func (c *HTTPAPIClient) TrackingSummary(ctx context.Context, voucherNo string) (*TrackingResponse, error) {
	params := struct {
		VoucherNo string `json:"Voucher_No"`
	}{VoucherNo: voucherNo}

	var out TrackingResponse
	if err := c.call(ctx, carrier.ActionTrackShipment, AliasTrackingSummary, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks the service.
func (c *HTTPAPIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.URL(carrier.ActionPing, defaultPingPath), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("AcsApiKey", c.settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return carrier.HTTPError(carrierName, resp.StatusCode, string(body))
	}
	return nil
}

func (c *HTTPAPIClient) call(ctx context.Context, action, alias string, params, out any) error {
	body, err := json.Marshal(aliasRequest{Alias: alias, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.URL(action, defaultAutoRestPath), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("AcsApiKey", c.settings.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return carrier.HTTPError(carrierName, resp.StatusCode, string(raw))
	}

	var envelope aliasResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.HasError {
		return &APIError{Code: alias, Description: envelope.ErrorMessage}
	}
	if len(envelope.Output.ValueOutput) == 0 {
		return &APIError{Code: alias, Description: "empty ACSValueOutput"}
	}

	row := envelope.Output.ValueOutput[0]
	var rowErr valueError
	if err := json.Unmarshal(row, &rowErr); err == nil && rowErr.Message != "" {
		return &APIError{Code: alias, Description: rowErr.Message}
	}
	if err := json.Unmarshal(row, out); err != nil {
		return fmt.Errorf("failed to decode %s output: %w", alias, err)
	}
	return nil
}

var _ APIClient = (*HTTPAPIClient)(nil)
