package speedex_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/dixis/shipping/pkg/carrier/speedex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(api speedex.APIClient) *speedex.Client {
	return speedex.NewWithAPIClient(api, otelzap.New(zap.NewNop()), nil)
}

func rateRequest(kg float64, value string) *carrier.RateRequest {
	return &carrier.RateRequest{
		Reference: "ORD-3001",
		Recipient: carrier.Address{City: "Ηράκλειο", PostalCode: "71201"},
		Parcel:    carrier.Parcel{WeightKG: kg, DeclaredValue: decimal.RequireFromString(value)},
	}
}

func TestClient_CalculateRate_Mock(t *testing.T) {
	client := newTestClient(speedex.NewMockAPIClient())

	quote, err := client.CalculateRate(context.Background(), rateRequest(1, "20"))
	require.NoError(t, err)
	assert.Equal(t, "speedex", quote.Carrier)
	assert.Equal(t, "5.00", quote.Cost.StringFixed(2))
	assert.Equal(t, 3, quote.DeliveryDays)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		wantCode string
		wantIs   error
	}{
		{"invalid session", speedex.ReturnInvalidSession, carrier.CodeAuthFailed, carrier.ErrAuthenticationFailed},
		{"unknown voucher", speedex.ReturnNotFound, carrier.CodeNotFound, carrier.ErrTrackingNotFound},
		{"other", -7, carrier.CodeAPIError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := speedex.NewMockAPIClient()
			api.OnGetTraceByVoucher = func(ctx context.Context, voucher string) (*speedex.TraceResponse, error) {
				return nil, &speedex.APIError{ReturnCode: tt.code, Message: "rejected"}
			}

			_, err := newTestClient(api).GetTrackingStatus(context.Background(), "SPX1")

			var carrierErr *carrier.Error
			require.ErrorAs(t, err, &carrierErr)
			assert.Equal(t, tt.wantCode, carrierErr.Code)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestClient_CreateShipment_Insurance(t *testing.T) {
	api := speedex.NewMockAPIClient()
	var got *speedex.BOLRequest
	api.OnCreateBOL = func(ctx context.Context, req *speedex.BOLRequest) (*speedex.BOLResponse, error) {
		got = req
		return &speedex.BOLResponse{VoucherCode: "SPX000000042", DeliveryDate: "2026-10-18"}, nil
	}

	resp, err := newTestClient(api).CreateShipment(context.Background(), &carrier.ShipmentRequest{
		Reference: "ORD-3001",
		Recipient: carrier.Address{Name: "Ελένη Κ.", AddressLine1: "Λ. Κνωσού 5", City: "Ηράκλειο", PostalCode: "71201"},
		Parcel:    carrier.Parcel{WeightKG: 0.8, DeclaredValue: decimal.NewFromInt(90)},
		Options:   carrier.ServiceOptions{Insurance: true, SaturdayDelivery: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "SPX000000042", resp.TrackingNumber)
	assert.True(t, got.InsuranceAmount.Equal(decimal.NewFromInt(90)))
	assert.True(t, got.Saturday)
}

func TestClient_GetTrackingStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want carrier.Status
	}{
		{"PICKED", carrier.StatusPickedUp},
		{"TRANSIT", carrier.StatusInTransit},
		{"DELIVERY", carrier.StatusOutForDelivery},
		{"DELIVERED", carrier.StatusDelivered},
		{"NOTDELIVERED", carrier.StatusFailedDelivery},
		{"RETURN", carrier.StatusReturned},
		{"HOLD", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			api := speedex.NewMockAPIClient()
			api.OnGetTraceByVoucher = func(ctx context.Context, voucher string) (*speedex.TraceResponse, error) {
				return &speedex.TraceResponse{VoucherCode: voucher, Checkpoints: []speedex.Checkpoint{
					{Status: "PICKED", Date: "2026-10-14T10:00:00"},
					{Status: tt.raw, Branch: "Ηράκλειο", Date: "2026-10-15T09:15:00"},
				}}, nil
			}

			status, err := newTestClient(api).GetTrackingStatus(context.Background(), "SPX1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.Status)
			assert.Equal(t, "Ηράκλειο", status.Location)
		})
	}
}

const priceResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <CalculatePriceResponse xmlns="http://www.speedex.gr/">
      <CalculatePriceResult>
        <returnCode>1</returnCode>
        <returnMessage>OK</returnMessage>
        <totalPrice>6.35</totalPrice>
        <deliveryDays>2</deliveryDays>
      </CalculatePriceResult>
    </CalculatePriceResponse>
  </soap:Body>
</soap:Envelope>`

func TestSOAPAPIClient_CalculatePrice(t *testing.T) {
	var body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "http://www.speedex.gr/CalculatePrice", r.Header.Get("SOAPAction"))
		assert.Equal(t, "/accesspoint.asmx", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(priceResponse))
	}))
	defer ts.Close()

	api := speedex.NewSOAPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "sess<1>"}, &http.Client{Timeout: time.Second})
	resp, err := api.CalculatePrice(context.Background(), &speedex.PriceRequest{
		Service:       "ECONOMY",
		PostalCode:    "71201",
		WeightKG:      1.25,
		DeclaredValue: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "6.35", resp.TotalPrice.StringFixed(2))
	assert.Equal(t, 2, resp.DeliveryDays)
	assert.Contains(t, body, "<sp:sessionID>sess&lt;1&gt;</sp:sessionID>")
	assert.Contains(t, body, "<sp:weight>1.250</sp:weight>")
	assert.Contains(t, body, "<sp:declaredValue>12.50</sp:declaredValue>")
}

func TestSOAPAPIClient_EscapesRecipient(t *testing.T) {
	var body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`<Envelope><Body><CreateBOLResponse><CreateBOLResult>
			<returnCode>1</returnCode>
			<outListPod><BOL><voucher_code>700012345</voucher_code><voucher_url>https://x/700012345</voucher_url></BOL></outListPod>
		</CreateBOLResult></CreateBOLResponse></Body></Envelope>`))
	}))
	defer ts.Close()

	api := speedex.NewSOAPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "s"}, &http.Client{Timeout: time.Second})
	resp, err := api.CreateBOL(context.Background(), &speedex.BOLRequest{RecipientName: "Μπάμπης & Σία"})
	require.NoError(t, err)

	assert.Equal(t, "700012345", resp.VoucherCode)
	assert.Contains(t, body, "Μπάμπης &amp; Σία")
	assert.False(t, strings.Contains(body, "Μπάμπης & Σία"))
}

func TestSOAPAPIClient_ReturnCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<Envelope><Body><GetTraceByVoucherResponse><GetTraceByVoucherResult>
			<returnCode>-2</returnCode><returnMessage>Invalid session</returnMessage>
		</GetTraceByVoucherResult></GetTraceByVoucherResponse></Body></Envelope>`))
	}))
	defer ts.Close()

	api := speedex.NewSOAPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "s"}, &http.Client{Timeout: time.Second})
	_, err := api.GetTraceByVoucher(context.Background(), "1")
	assert.ErrorIs(t, err, carrier.ErrAuthenticationFailed)
}

func TestSOAPAPIClient_Fault(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><soap:Fault><faultcode>soap:Server</faultcode><faultstring>boom</faultstring></soap:Fault></soap:Body></soap:Envelope>`))
	}))
	defer ts.Close()

	api := speedex.NewSOAPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "s"}, &http.Client{Timeout: time.Second})
	err := api.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, carrier.IsRetryable(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestSOAPAPIClient_CreateBOLWithoutVoucher(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<Envelope><Body><CreateBOLResponse><CreateBOLResult>
			<returnCode>1</returnCode>
			<outListPod><BOL><voucher_url>https://x/empty</voucher_url></BOL></outListPod>
		</CreateBOLResult></CreateBOLResponse></Body></Envelope>`))
	}))
	defer ts.Close()

	api := speedex.NewSOAPAPIClient(carrier.Settings{BaseURL: ts.URL, APIKey: "s"}, &http.Client{Timeout: time.Second})
	_, err := api.CreateBOL(context.Background(), &speedex.BOLRequest{RecipientName: "Νίκος"})

	var apiErr *speedex.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "voucher_code")
}
