package acs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/dixis/shipping/pkg/carrier/acs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient acs.APIClient) *acs.Client {
	return acs.NewWithAPIClient(mockClient, otelzap.New(zap.NewNop()), nil)
}

func rateRequest(kg float64, value string) *carrier.RateRequest {
	return &carrier.RateRequest{
		Reference: "ORD-1001",
		Recipient: carrier.Address{City: "Αθήνα", PostalCode: "10679", CountryCode: "GR"},
		Parcel:    carrier.Parcel{WeightKG: kg, DeclaredValue: decimal.RequireFromString(value)},
	}
}

func TestClient_Descriptor(t *testing.T) {
	client := newTestClient(acs.NewMockAPIClient())

	assert.Equal(t, "acs", client.Name())
	assert.Equal(t, "ACS Courier", client.DisplayName())
	assert.Contains(t, client.Features(), "cod")
	assert.NotEmpty(t, client.SupportedServices())
	assert.NotEmpty(t, client.CoverageAreas())
}

func TestClient_CalculateRate_Mock(t *testing.T) {
	client := newTestClient(acs.NewMockAPIClient())

	quote, err := client.CalculateRate(context.Background(), rateRequest(2, "40"))
	require.NoError(t, err)
	assert.Equal(t, "6.00", quote.Cost.StringFixed(2))
	assert.Equal(t, 2, quote.DeliveryDays)
	assert.Equal(t, "EUR", quote.Currency)

	quote, err = client.CalculateRate(context.Background(), rateRequest(2, "150"))
	require.NoError(t, err)
	assert.Equal(t, "8.00", quote.Cost.StringFixed(2))
}

func TestClient_CalculateRate_APIError(t *testing.T) {
	mockAPI := acs.NewMockAPIClient()
	mockAPI.SimulateErrors = true

	_, err := newTestClient(mockAPI).CalculateRate(context.Background(), rateRequest(1, "10"))

	var carrierErr *carrier.Error
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, "acs", carrierErr.Carrier)
	assert.Equal(t, carrier.CodeAPIError, carrierErr.Code)
}

func TestClient_CreateShipment_Products(t *testing.T) {
	mockAPI := acs.NewMockAPIClient()
	var got *acs.VoucherRequest
	mockAPI.OnCreateVoucher = func(ctx context.Context, req *acs.VoucherRequest) (*acs.VoucherResponse, error) {
		got = req
		return &acs.VoucherResponse{VoucherNo: "7212345678", VoucherPrintURL: "https://x/7212345678.pdf", EstimatedDeliveryDate: "2026-10-17"}, nil
	}

	resp, err := newTestClient(mockAPI).CreateShipment(context.Background(), &carrier.ShipmentRequest{
		Reference: "ORD-1001",
		Recipient: carrier.Address{Name: "Μαρία Παπαδοπούλου", AddressLine1: "Πανεπιστημίου 30", City: "Αθήνα", PostalCode: "10679", Phone: "+302101234567"},
		Parcel:    carrier.Parcel{WeightKG: 1.2, DeclaredValue: decimal.NewFromInt(120), CODAmount: decimal.NewFromInt(120)},
		Options:   carrier.ServiceOptions{SignatureRequired: true, Insurance: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "7212345678", resp.TrackingNumber)
	require.NotNil(t, resp.EstimatedDelivery)
	assert.Equal(t, "2026-10-17", resp.EstimatedDelivery.Format("2006-01-02"))
	assert.Equal(t, "COD,INS,SIG", got.DeliveryProducts)
	assert.Equal(t, "GR", got.RecipientCountry)
	assert.Equal(t, "ORD-1001", got.ReferenceKey)
}

func TestClient_GetTrackingStatus_Normalizes(t *testing.T) {
	tests := []struct {
		name string
		resp acs.TrackingResponse
		want carrier.Status
	}{
		{"pickup", acs.TrackingResponse{ShipmentStatus: "ΠΑΡΑΛΑΒΗ"}, carrier.StatusPickedUp},
		{"transit", acs.TrackingResponse{ShipmentStatus: "ΜΕΤΑΦΟΡΑ"}, carrier.StatusInTransit},
		{"out for delivery", acs.TrackingResponse{ShipmentStatus: "ΔΙΑΝΟΜΗ"}, carrier.StatusOutForDelivery},
		{"failed", acs.TrackingResponse{ShipmentStatus: "ΑΝΕΠΙΤΥΧΗΣ ΕΠΙΔΟΣΗ"}, carrier.StatusFailedDelivery},
		{"delivered flag", acs.TrackingResponse{ShipmentStatus: "ΜΕΤΑΦΟΡΑ", DeliveryFlag: 1}, carrier.StatusDelivered},
		{"returned flag", acs.TrackingResponse{DeliveryFlag: 1, ReturnedFlag: 1}, carrier.StatusReturned},
		{"unknown", acs.TrackingResponse{ShipmentStatus: "ΑΓΝΩΣΤΟ"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := acs.NewMockAPIClient()
			mockAPI.OnTrackingSummary = func(ctx context.Context, voucherNo string) (*acs.TrackingResponse, error) {
				resp := tt.resp
				return &resp, nil
			}

			status, err := newTestClient(mockAPI).GetTrackingStatus(context.Background(), "7200000001")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
		})
	}
}

func TestNew_ValidatesSettings(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	_, err := acs.New(carrier.Settings{BaseURL: "https://webservices.acscourier.net"}, logger, nil)
	assert.Error(t, err)

	client, err := acs.New(carrier.Settings{UseMock: true}, logger, nil)
	require.NoError(t, err)
	assert.True(t, client.TestConnection(context.Background()))
}

func TestHTTPAPIClient_AliasEnvelope(t *testing.T) {
	var alias string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("AcsApiKey"))
		assert.Equal(t, "/ACSRestServices/api/ACSAutoRest", r.URL.Path)

		var body struct {
			Alias  string         `json:"ACSAlias"`
			Params map[string]any `json:"ACSInputParameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		alias = body.Alias
		assert.Equal(t, "10679", body.Params["Recipient_Zipcode"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ACSExecution_HasError": false,
			"ACSExecutionErrorMessage": "",
			"ACSOutputResponce": {"ACSValueOutput": [{"Total_Ammount": 6.2, "Transit_Days": 1, "Error_Message": null}]}
		}`))
	}))
	defer ts.Close()

	client := acs.NewWithAPIClient(
		acs.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "secret"}, &http.Client{Timeout: time.Second}),
		otelzap.New(zap.NewNop()), nil,
	)

	quote, err := client.CalculateRate(context.Background(), rateRequest(1, "10"))
	require.NoError(t, err)
	assert.Equal(t, acs.AliasPriceCalculation, alias)
	assert.Equal(t, "6.20", quote.Cost.StringFixed(2))
	assert.Equal(t, 1, quote.DeliveryDays)
}

func TestHTTPAPIClient_ExecutionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ACSExecution_HasError": true, "ACSExecutionErrorMessage": "Invalid Zipcode"}`))
	}))
	defer ts.Close()

	api := acs.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "k"}, &http.Client{Timeout: time.Second})
	_, err := api.CalculatePrice(context.Background(), &acs.PriceRequest{RecipientZipcode: "00000"})

	var apiErr *acs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid Zipcode", apiErr.Description)
}

func TestHTTPAPIClient_RowError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ACSExecution_HasError": false, "ACSOutputResponce": {"ACSValueOutput": [{"Error_Message": "Voucher not found"}]}}`))
	}))
	defer ts.Close()

	api := acs.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "k"}, &http.Client{Timeout: time.Second})
	_, err := api.TrackingSummary(context.Background(), "7200000001")
	assert.ErrorContains(t, err, "Voucher not found")
}

func TestHTTPAPIClient_HTTPStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	api := acs.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "wrong"}, &http.Client{Timeout: time.Second})
	_, err := api.CalculatePrice(context.Background(), &acs.PriceRequest{})
	assert.ErrorIs(t, err, carrier.ErrAuthenticationFailed)

	assert.Error(t, api.Ping(context.Background()))
}
