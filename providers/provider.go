package providers

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Method is the paymentMethod discriminant used on the wire.
type Method string

const (
	MethodPayPal Method = "paypal"
	MethodMPesa  Method = "mpesa"
)

// DefaultCurrency applies when a request omits currency.
const DefaultCurrency = "USD"

// PaymentRequest is the normalized body of POST /payment.
type PaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Service       string          `json:"service"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerName  string          `json:"customerName"`
	PaymentMethod Method          `json:"paymentMethod"`
	PhoneNumber   string          `json:"phoneNumber,omitempty"`
}

// Validate enforces the request invariants before any adapter is touched.
func (r *PaymentRequest) Validate() error {
	if r.Amount.IsZero() || strings.TrimSpace(r.Service) == "" ||
		strings.TrimSpace(r.CustomerEmail) == "" || r.PaymentMethod == "" {
		return &PaymentError{Code: ErrValidation, Message: "Missing required payment details"}
	}
	if r.Amount.IsNegative() {
		return &PaymentError{Code: ErrValidation, Message: "Amount must be greater than zero"}
	}

	switch r.PaymentMethod {
	case MethodPayPal:
	case MethodMPesa:
		if strings.TrimSpace(r.PhoneNumber) == "" {
			return &PaymentError{Code: ErrValidation, Message: "Phone number required for M-Pesa payments"}
		}
		if !IsDialable(NormalizePhone(r.PhoneNumber)) {
			return &PaymentError{Code: ErrValidation, Message: "Phone number is not a valid mobile number"}
		}
	default:
		return &PaymentError{Code: ErrUnsupportedMethod, Message: "Unsupported payment method"}
	}

	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	return nil
}

// OrderCheckout is the PayPal half of a Result.
type OrderCheckout struct {
	OrderID     string `json:"orderId"`
	ApprovalURL string `json:"approvalUrl"`
}

// PushCheckout is the M-Pesa half of a Result.
type PushCheckout struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
	MerchantRequestID string `json:"merchantRequestId"`
}

// Result is the NormalizedPaymentResult. PaymentMethod selects which of the
// embedded payloads is set; the other stays nil and disappears from JSON.
type Result struct {
	Success       bool   `json:"success"`
	PaymentMethod Method `json:"paymentMethod"`
	Message       string `json:"message"`
	*OrderCheckout
	*PushCheckout
}

// StatusResult is what GET /payment returns for a transaction.
type StatusResult struct {
	Status   string `json:"status"`
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Gateway is implemented by every payment provider adapter.
type Gateway interface {
	Method() Method
	Initiate(ctx context.Context, req PaymentRequest) (*Result, error)
	Status(ctx context.Context, transactionID string) (*StatusResult, error)
}
