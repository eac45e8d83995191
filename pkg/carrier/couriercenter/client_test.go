package couriercenter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/dixis/shipping/pkg/carrier/couriercenter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(api couriercenter.APIClient) *couriercenter.Client {
	return couriercenter.NewWithAPIClient(api, otelzap.New(zap.NewNop()), nil)
}

func TestClient_CalculateRate_Mock(t *testing.T) {
	client := newTestClient(couriercenter.NewMockAPIClient())

	quote, err := client.CalculateRate(context.Background(), &carrier.RateRequest{
		Recipient: carrier.Address{PostalCode: "26221"},
		Parcel:    carrier.Parcel{WeightKG: 4, DeclaredValue: decimal.NewFromInt(250)},
	})
	require.NoError(t, err)
	assert.Equal(t, "courier_center", quote.Carrier)
	assert.Equal(t, "8.00", quote.Cost.StringFixed(2))
	assert.Equal(t, 3, quote.DeliveryDays)
}

func TestClient_CreateShipment_SequentialAWB(t *testing.T) {
	client := newTestClient(couriercenter.NewMockAPIClient())
	req := &carrier.ShipmentRequest{Reference: "ORD-1", Recipient: carrier.Address{PostalCode: "26221"}}

	first, err := client.CreateShipment(context.Background(), req)
	require.NoError(t, err)
	second, err := client.CreateShipment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "CC0000000001", first.TrackingNumber)
	assert.Equal(t, "CC0000000002", second.TrackingNumber)
	assert.NotNil(t, first.EstimatedDelivery)
}

func TestClient_GetTrackingStatus(t *testing.T) {
	tests := map[string]carrier.Status{
		"collected":        carrier.StatusPickedUp,
		"IN_TRANSIT":       carrier.StatusInTransit,
		"out_for_delivery": carrier.StatusOutForDelivery,
		"delivered":        carrier.StatusDelivered,
		"undelivered":      carrier.StatusFailedDelivery,
		"returned":         carrier.StatusReturned,
		"on_hold":          "",
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			api := couriercenter.NewMockAPIClient()
			api.OnGetTracking = func(ctx context.Context, awb string) (*couriercenter.TrackingResponse, error) {
				return &couriercenter.TrackingResponse{AWB: awb, Status: raw}, nil
			}

			status, err := newTestClient(api).GetTrackingStatus(context.Background(), "CC1")
			require.NoError(t, err)
			assert.Equal(t, want, status.Status)
		})
	}
}

func TestClient_ValidationError(t *testing.T) {
	api := couriercenter.NewMockAPIClient()
	api.SimulateErrors = true

	client := newTestClient(api)
	_, err := client.CalculateRate(context.Background(), &carrier.RateRequest{})

	var carrierErr *carrier.Error
	require.ErrorAs(t, err, &carrierErr)
	assert.Equal(t, carrier.CodeInvalidInput, carrierErr.Code)
	assert.False(t, client.TestConnection(context.Background()))
}

func TestHTTPAPIClient_BearerAndTracking(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-9", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v2/shipments/CC42/tracking", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"awb":         "CC42",
			"status":      "out_for_delivery",
			"status_text": "Σε διανομή",
			"location":    "Πάτρα",
			"updated_at":  "2026-10-15T08:00:00Z",
		})
	}))
	defer ts.Close()

	client := newTestClient(couriercenter.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "token-9"}, &http.Client{Timeout: time.Second}))
	status, err := client.GetTrackingStatus(context.Background(), "CC42")
	require.NoError(t, err)
	assert.Equal(t, carrier.StatusOutForDelivery, status.Status)
	assert.Equal(t, "Πάτρα", status.Location)
}

func TestHTTPAPIClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"validation", http.StatusUnprocessableEntity, `{"error":{"code":"invalid_postcode","message":"bad postcode"}}`, func(t *testing.T, err error) {
			var apiErr *couriercenter.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "invalid_postcode", apiErr.Code)
		}},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":"token_expired","message":"expired"}}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, carrier.ErrAuthenticationFailed)
		}},
		{"throttled", http.StatusTooManyRequests, `slow down`, func(t *testing.T, err error) {
			assert.True(t, carrier.IsRetryable(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			api := couriercenter.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "k"}, &http.Client{Timeout: time.Second})
			_, err := api.GetRate(context.Background(), &couriercenter.RateRequest{Postcode: "00000"})
			tt.check(t, err)
		})
	}
}

func TestHTTPAPIClient_CreateShipmentWithoutAWB(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"label_url":"https://x/label.pdf"}`))
	}))
	defer ts.Close()

	api := couriercenter.NewHTTPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "k"}, &http.Client{Timeout: time.Second})
	_, err := api.CreateShipment(context.Background(), &couriercenter.ShipmentRequest{Reference: "ORD-2001"})

	var apiErr *couriercenter.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "missing_awb", apiErr.Code)
}
