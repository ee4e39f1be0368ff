package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"hashhaven/logger"
)

// PayPalConfig is what the PayPal adapter needs to talk to the Orders API.
type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	// ReturnBaseURL is the public site origin used for approval redirects.
	ReturnBaseURL string
}

// PayPalProvider implements Gateway against PayPal Orders v2.
type PayPalProvider struct {
	config     PayPalConfig
	httpClient *http.Client
	newID      func() string
}

func NewPayPalProvider(config PayPalConfig, client *http.Client) *PayPalProvider {
	return &PayPalProvider{
		config:     config,
		httpClient: client,
		newID:      uuid.NewString,
	}
}

func (p *PayPalProvider) Method() Method {
	return MethodPayPal
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrder struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Links         []paypalLink `json:"links"`
	PurchaseUnits []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"purchase_units"`
}

// accessToken runs the client-credentials grant. No caching: every call
// pays for a fresh token.
func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		TokenURL:     p.config.BaseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := cc.Token(ctx)
	if err != nil {
		logger.Error("[PayPal] Token request failed: %v", err)
		return "", authError(MethodPayPal, "failed to get PayPal access token", err)
	}
	return tok.AccessToken, nil
}

// Initiate creates a CAPTURE order and returns its approval link.
func (p *PayPalProvider) Initiate(ctx context.Context, req PaymentRequest) (*Result, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	given, surname := splitName(req.CustomerName)
	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"amount": paypalAmount{
				CurrencyCode: currency,
				Value:        req.Amount.StringFixed(2),
			},
			"description": "Hash Haven - " + req.Service,
			"custom_id":   req.Service + "_" + p.newID(),
		}},
		"payer": map[string]interface{}{
			"email_address": req.CustomerEmail,
			"name": map[string]string{
				"given_name": given,
				"surname":    surname,
			},
		},
		"application_context": map[string]string{
			"return_url":  p.config.ReturnBaseURL + "/payment/success",
			"cancel_url":  p.config.ReturnBaseURL + "/payment/cancel",
			"brand_name":  "Hash Haven",
			"user_action": "PAY_NOW",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, requestError(MethodPayPal, "failed to marshal order", err)
	}

	logger.Debug("[PayPal] Creating order: amount=%s %s, service=%s", req.Amount.StringFixed(2), currency, req.Service)
	var order paypalOrder
	if err := p.do(ctx, http.MethodPost, p.config.BaseURL+"/v2/checkout/orders", token, body, &order); err != nil {
		return nil, requestError(MethodPayPal, "failed to create PayPal order", err)
	}

	approval := approvalLink(order.Links)
	if approval == "" {
		return nil, requestError(MethodPayPal, "PayPal order has no approve link", fmt.Errorf("order %s", order.ID))
	}

	return &Result{
		Success:       true,
		PaymentMethod: MethodPayPal,
		Message:       "PayPal order created successfully",
		OrderCheckout: &OrderCheckout{
			OrderID:     order.ID,
			ApprovalURL: approval,
		},
	}, nil
}

// Status re-authenticates and reads the order back.
func (p *PayPalProvider) Status(ctx context.Context, orderID string) (*StatusResult, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var order paypalOrder
	endpoint := p.config.BaseURL + "/v2/checkout/orders/" + url.PathEscape(orderID)
	if err := p.do(ctx, http.MethodGet, endpoint, token, nil, &order); err != nil {
		return nil, requestError(MethodPayPal, "failed to fetch PayPal order", err)
	}

	res := &StatusResult{Status: order.Status}
	if len(order.PurchaseUnits) > 0 {
		res.Amount = order.PurchaseUnits[0].Amount.Value
		res.Currency = order.PurchaseUnits[0].Amount.CurrencyCode
	}
	return res, nil
}

func (p *PayPalProvider) do(ctx context.Context, method, endpoint, token string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func approvalLink(links []paypalLink) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

func splitName(full string) (given, surname string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "Customer", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
