package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"hashhaven/logger"
)

// MPesaConfig is what the M-Pesa adapter needs for STK push.
type MPesaConfig struct {
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	Passkey         string
	BaseURL         string
	CallbackBaseURL string
}

// MPesaProvider implements Gateway against the Daraja STK push API.
type MPesaProvider struct {
	config     MPesaConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewMPesaProvider(config MPesaConfig, client *http.Client) *MPesaProvider {
	return &MPesaProvider{
		config:     config,
		httpClient: client,
		now:        time.Now,
	}
}

func (p *MPesaProvider) Method() Method {
	return MethodMPesa
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// NormalizePhone turns local or +-prefixed Kenyan numbers into 2547XXXXXXXX.
func NormalizePhone(phone string) string {
	phone = strings.TrimLeft(strings.TrimSpace(phone), "+")
	if strings.HasPrefix(phone, "0") {
		phone = "254" + phone[1:]
	}
	return phone
}

// IsDialable reports whether a normalized number is a plausible
// international number: digits only, 10 to 15 of them.
func IsDialable(phone string) bool {
	if len(phone) < 10 || len(phone) > 15 {
		return false
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Timestamp formats t as the 14-digit YYYYMMDDHHMMSS string Daraja expects.
func Timestamp(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

// Password is Base64(shortCode + passkey + timestamp).
func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

func (p *MPesaProvider) accessToken(ctx context.Context) (string, error) {
	endpoint := p.config.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", authError(MethodMPesa, "failed to build token request", err)
	}
	req.SetBasicAuth(p.config.ConsumerKey, p.config.ConsumerSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.Error("[M-Pesa] Token request failed: %v", err)
		return "", authError(MethodMPesa, "failed to get M-Pesa access token", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("[M-Pesa] Reading token response failed: %v", err)
		return "", authError(MethodMPesa, "failed to read M-Pesa token response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("[M-Pesa] Token endpoint returned %d: %s", resp.StatusCode, body)
		return "", authError(MethodMPesa, "failed to get M-Pesa access token", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", authError(MethodMPesa, "invalid M-Pesa token response", err)
	}
	return tok.AccessToken, nil
}

// Initiate sends an STK push to the customer's phone. The final result
// arrives later on the callback URL.
func (p *MPesaProvider) Initiate(ctx context.Context, req PaymentRequest) (*Result, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	phone := NormalizePhone(req.PhoneNumber)
	ts := Timestamp(p.now())
	amount := req.Amount.Round(0).IntPart()

	body, err := json.Marshal(map[string]interface{}{
		"BusinessShortCode": p.config.ShortCode,
		"Password":          Password(p.config.ShortCode, p.config.Passkey, ts),
		"Timestamp":         ts,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phone,
		"PartyB":            p.config.ShortCode,
		"PhoneNumber":       phone,
		"CallBackURL":       p.config.CallbackBaseURL + "/payment/callback",
		"AccountReference":  "HashHaven_" + req.Service,
		"TransactionDesc":   "Payment for " + req.Service + " - Hash Haven",
	})
	if err != nil {
		return nil, requestError(MethodMPesa, "failed to marshal STK push", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, requestError(MethodMPesa, "failed to build STK push request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Debug("[M-Pesa] Sending STK push: amount=%d, phone=%s", amount, phone)
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, requestError(MethodMPesa, "failed to initiate M-Pesa payment", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestError(MethodMPesa, "failed to read STK push response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, requestError(MethodMPesa, "failed to initiate M-Pesa payment",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody))
	}

	var stk stkPushResponse
	if err := json.Unmarshal(respBody, &stk); err != nil {
		return nil, requestError(MethodMPesa, "invalid STK push response", err)
	}
	if stk.ResponseCode != "0" {
		reason := stk.ErrorMessage
		if reason == "" {
			reason = stk.ResponseDescription
		}
		return nil, requestError(MethodMPesa, "M-Pesa payment initiation failed",
			fmt.Errorf("response code %q: %s", stk.ResponseCode, reason))
	}

	return &Result{
		Success:       true,
		PaymentMethod: MethodMPesa,
		Message:       "M-Pesa payment initiated. Please check your phone for the payment prompt.",
		PushCheckout: &PushCheckout{
			CheckoutRequestID: stk.CheckoutRequestID,
			MerchantRequestID: stk.MerchantRequestID,
		},
	}, nil
}

// Status never calls Daraja: STK results only arrive through the callback.
func (p *MPesaProvider) Status(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	return &StatusResult{
		Status:  "pending",
		Message: "M-Pesa status updates are handled via callbacks",
	}, nil
}
