package speedex

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/template"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

const (
	defaultAccessPointPath = "/accesspoint.asmx"
	soapActionNamespace    = "http://www.speedex.gr/"
)

// SOAPAPIClient is the production implementation of APIClient using SOAP.
type SOAPAPIClient struct {
	settings   carrier.Settings
	httpClient *http.Client
}

// NewSOAPAPIClient creates a new SOAP-based API client for production use.
func NewSOAPAPIClient(settings carrier.Settings, httpClient *http.Client) *SOAPAPIClient {
	return &SOAPAPIClient{
		settings:   settings,
		httpClient: httpClient,
	}
}

// CalculatePrice prices a parcel.
func (c *SOAPAPIClient) CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error) {
	var out soapBody
	if err := c.call(ctx, carrier.ActionCalculateRate, "CalculatePrice", calculatePriceTmpl, req, &out); err != nil {
		return nil, err
	}
	result := out.CalculatePrice
	if result == nil {
		return nil, errMissingResult("CalculatePrice")
	}
	if err := result.err(); err != nil {
		return nil, err
	}

	total, err := decimal.NewFromString(strings.TrimSpace(result.TotalPrice))
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", result.TotalPrice, err)
	}
	return &PriceResponse{TotalPrice: total, DeliveryDays: result.DeliveryDays}, nil
}

// CreateBOL books a shipment.
func (c *SOAPAPIClient) CreateBOL(ctx context.Context, req *BOLRequest) (*BOLResponse, error) {
	var out soapBody
	if err := c.call(ctx, carrier.ActionCreateShipment, "CreateBOL", createBOLTmpl, req, &out); err != nil {
		return nil, err
	}
	result := out.CreateBOL
	if result == nil {
		return nil, errMissingResult("CreateBOL")
	}
	if err := result.err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.VoucherCode) == "" {
		return nil, &APIError{ReturnCode: result.ReturnCode, Message: "voucher_code missing from CreateBOL result"}
	}
	return &BOLResponse{
		VoucherCode:  result.VoucherCode,
		LabelURL:     result.LabelURL,
		DeliveryDate: result.DeliveryDate,
	}, nil
}

// GetTraceByVoucher returns the checkpoints of a voucher.
func (c *SOAPAPIClient) GetTraceByVoucher(ctx context.Context, voucher string) (*TraceResponse, error) {
	data := struct{ Voucher string }{voucher}

	var out soapBody
	if err := c.call(ctx, carrier.ActionTrackShipment, "GetTraceByVoucher", traceTmpl, data, &out); err != nil {
		return nil, err
	}
	result := out.Trace
	if result == nil {
		return nil, errMissingResult("GetTraceByVoucher")
	}
	if err := result.err(); err != nil {
		return nil, err
	}

	resp := &TraceResponse{VoucherCode: voucher}
	for _, cp := range result.Checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, Checkpoint{
			Status:      cp.Status,
			Description: cp.StatusDesc,
			Branch:      cp.Branch,
			Date:        cp.CheckpointDate,
		})
	}
	return resp, nil
}

// Ping validates the session.
func (c *SOAPAPIClient) Ping(ctx context.Context) error {
	var out soapBody
	if err := c.call(ctx, carrier.ActionPing, "CheckSession", checkSessionTmpl, struct{}{}, &out); err != nil {
		return err
	}
	if out.CheckSession == nil {
		return errMissingResult("CheckSession")
	}
	return out.CheckSession.err()
}

// ============================================================================
// SOAP Request Helpers
// ============================================================================

func (c *SOAPAPIClient) call(ctx context.Context, action, soapAction string, body *template.Template, data any, out *soapBody) error {
	payload, err := c.buildEnvelope(body, data)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	endpoint := c.settings.URL(action, defaultAccessPointPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapActionNamespace+soapAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env soapEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return carrier.HTTPError(carrierName, resp.StatusCode, string(raw))
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Body.Fault != nil {
		return carrier.HTTPError(carrierName, resp.StatusCode, env.Body.Fault.Code+": "+env.Body.Fault.String)
	}
	if resp.StatusCode != http.StatusOK {
		return carrier.HTTPError(carrierName, resp.StatusCode, string(raw))
	}

	*out = env.Body
	return nil
}

func (c *SOAPAPIClient) buildEnvelope(body *template.Template, data any) ([]byte, error) {
	var bodyBuf bytes.Buffer
	if err := body.Execute(&bodyBuf, requestData{SessionID: c.settings.APIKey, R: data}); err != nil {
		return nil, err
	}

	var envBuf bytes.Buffer
	if err := envelopeTmpl.Execute(&envBuf, struct{ Body string }{bodyBuf.String()}); err != nil {
		return nil, err
	}
	return envBuf.Bytes(), nil
}

// ============================================================================
// SOAP Request Templates
// ============================================================================

// requestData is what every body template is executed with.
type requestData struct {
	SessionID string
	R         any
}

var funcs = template.FuncMap{
	"xml":   xmlEscape,
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"kg":    func(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) },
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

var envelopeTmpl = parse("envelope", `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/" xmlns:sp="http://www.speedex.gr/">
  <soap:Body>
    {{.Body}}
  </soap:Body>
</soap:Envelope>`)

var calculatePriceTmpl = parse("CalculatePrice", `<sp:CalculatePrice>
      <sp:sessionID>{{xml .SessionID}}</sp:sessionID>
      <sp:service>{{xml .R.Service}}</sp:service>
      <sp:destinationZip>{{xml .R.PostalCode}}</sp:destinationZip>
      <sp:weight>{{kg .R.WeightKG}}</sp:weight>
      <sp:declaredValue>{{money .R.DeclaredValue}}</sp:declaredValue>
      <sp:codAmount>{{money .R.CODAmount}}</sp:codAmount>
      <sp:insuranceAmount>{{money .R.InsuranceAmount}}</sp:insuranceAmount>
    </sp:CalculatePrice>`)

var createBOLTmpl = parse("CreateBOL", `<sp:CreateBOL>
      <sp:sessionID>{{xml .SessionID}}</sp:sessionID>
      <sp:inListPod>
        <sp:BOL>
          <sp:_cust_Flag>0</sp:_cust_Flag>
          <sp:CustomerReference>{{xml .R.CustomerReference}}</sp:CustomerReference>
          <sp:Service>{{xml .R.Service}}</sp:Service>
          <sp:RCV_Name>{{xml .R.RecipientName}}</sp:RCV_Name>
          <sp:RCV_Addr1>{{xml .R.RecipientAddress}}</sp:RCV_Addr1>
          <sp:RCV_City>{{xml .R.RecipientCity}}</sp:RCV_City>
          <sp:RCV_Zip_Code>{{xml .R.RecipientZip}}</sp:RCV_Zip_Code>
          <sp:RCV_Tel1>{{xml .R.RecipientPhone}}</sp:RCV_Tel1>
          <sp:RCV_Email>{{xml .R.RecipientEmail}}</sp:RCV_Email>
          <sp:Weight>{{kg .R.WeightKG}}</sp:Weight>
          <sp:Items_Description>{{xml .R.ItemsDescription}}</sp:Items_Description>
          <sp:Cod_Amount>{{money .R.CODAmount}}</sp:Cod_Amount>
          <sp:Insurance_Amount>{{money .R.InsuranceAmount}}</sp:Insurance_Amount>
          <sp:Saturday_Delivery>{{if .R.Saturday}}1{{else}}0{{end}}</sp:Saturday_Delivery>
          <sp:Signature>{{if .R.Signature}}1{{else}}0{{end}}</sp:Signature>
        </sp:BOL>
      </sp:inListPod>
    </sp:CreateBOL>`)

var traceTmpl = parse("GetTraceByVoucher", `<sp:GetTraceByVoucher>
      <sp:sessionID>{{xml .SessionID}}</sp:sessionID>
      <sp:VoucherID>{{xml .R.Voucher}}</sp:VoucherID>
    </sp:GetTraceByVoucher>`)

var checkSessionTmpl = parse("CheckSession", `<sp:CheckSession>
      <sp:sessionID>{{xml .SessionID}}</sp:sessionID>
    </sp:CheckSession>`)

// ============================================================================
// SOAP Response Parsers - XML Types
// ============================================================================

type soapEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    soapBody `xml:"Body"`
}

type soapBody struct {
	Fault          *soapFault      `xml:"Fault,omitempty"`
	CalculatePrice *priceResult    `xml:"CalculatePriceResponse>CalculatePriceResult,omitempty"`
	CreateBOL      *bolResult      `xml:"CreateBOLResponse>CreateBOLResult,omitempty"`
	Trace          *traceResult    `xml:"GetTraceByVoucherResponse>GetTraceByVoucherResult,omitempty"`
	CheckSession   *returnEnvelope `xml:"CheckSessionResponse>CheckSessionResult,omitempty"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type returnEnvelope struct {
	ReturnCode    int    `xml:"returnCode"`
	ReturnMessage string `xml:"returnMessage"`
}

func (r *returnEnvelope) err() error {
	if r.ReturnCode == ReturnOK {
		return nil
	}
	return &APIError{ReturnCode: r.ReturnCode, Message: r.ReturnMessage}
}

type priceResult struct {
	returnEnvelope
	TotalPrice   string `xml:"totalPrice"`
	DeliveryDays int    `xml:"deliveryDays"`
}

type bolResult struct {
	returnEnvelope
	VoucherCode  string `xml:"outListPod>BOL>voucher_code"`
	LabelURL     string `xml:"outListPod>BOL>voucher_url"`
	DeliveryDate string `xml:"outListPod>BOL>delivery_date"`
}

type traceResult struct {
	returnEnvelope
	Checkpoints []soapCheckpoint `xml:"checkpoints>Checkpoint"`
}

type soapCheckpoint struct {
	Status         string `xml:"Status"`
	StatusDesc     string `xml:"StatusDesc"`
	Branch         string `xml:"Branch"`
	CheckpointDate string `xml:"CheckpointDate"`
}

func errMissingResult(op string) error {
	return fmt.Errorf("%s: empty SOAP body: %w", op, carrier.ErrServiceUnavailable)
}

var _ APIClient = (*SOAPAPIClient)(nil)
