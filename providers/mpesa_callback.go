package providers

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
)

// Metadata item names sent in a successful STK callback.
const (
	ItemAmount          = "Amount"
	ItemReceiptNumber   = "MpesaReceiptNumber"
	ItemTransactionDate = "TransactionDate"
	ItemPhoneNumber     = "PhoneNumber"
)

// ItemValue keeps a metadata value as text whether it came in as a JSON
// number or a string, so 20191219102115 stays 20191219102115.
type ItemValue string

func (v *ItemValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*v = ItemValue(s)
		return nil
	}
	*v = ItemValue(data)
	return nil
}

type CallbackItem struct {
	Name  string    `json:"Name"`
	Value ItemValue `json:"Value"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackNotification is the envelope M-Pesa posts to the callback URL.
type CallbackNotification struct {
	Body struct {
		StkCallback *StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

var ErrMissingStkCallback = errors.New("callback has no Body.stkCallback")

// ParseCallback decodes a raw callback body.
func ParseCallback(data []byte) (*StkCallback, error) {
	var n CallbackNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	if n.Body.StkCallback == nil {
		return nil, ErrMissingStkCallback
	}
	return n.Body.StkCallback, nil
}

// Item returns the value of the named metadata item, or "" when absent.
func (c *StkCallback) Item(name string) string {
	if c.CallbackMetadata == nil {
		return ""
	}
	for _, it := range c.CallbackMetadata.Item {
		if it.Name == name {
			return string(it.Value)
		}
	}
	return ""
}
