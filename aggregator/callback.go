package aggregator

import (
	"hashhaven/logger"
	"hashhaven/providers"
)

// CallbackOutcome is what the receiver made of one M-Pesa notification.
type CallbackOutcome struct {
	CheckoutRequestID string
	Paid              bool
	ResultCode        int
	ResultDesc        string
	Amount            string
	ReceiptNumber     string
	TransactionDate   string
	PhoneNumber       string
	Err               error
}

// Receiver turns M-Pesa STK callbacks into log entries. It has no store to
// correlate against and does not verify the sender.
type Receiver struct{}

func NewReceiver() *Receiver {
	return &Receiver{}
}

// Handle parses and logs a raw callback body. It never fails; parse errors
// are reported in the outcome so the caller can still acknowledge.
func (r *Receiver) Handle(body []byte) CallbackOutcome {
	cb, err := providers.ParseCallback(body)
	if err != nil {
		logger.Error("M-Pesa callback error: %v", err)
		return CallbackOutcome{Err: err}
	}

	out := CallbackOutcome{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}
	if cb.ResultCode != 0 {
		logger.Warn("M-Pesa payment failed: checkoutRequestId=%s resultCode=%d desc=%q",
			cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc)
		return out
	}

	out.Paid = true
	out.Amount = cb.Item(providers.ItemAmount)
	out.ReceiptNumber = cb.Item(providers.ItemReceiptNumber)
	out.TransactionDate = cb.Item(providers.ItemTransactionDate)
	out.PhoneNumber = cb.Item(providers.ItemPhoneNumber)

	logger.Info("M-Pesa payment successful: checkoutRequestId=%s receipt=%s amount=%s transactionDate=%s phone=%s",
		out.CheckoutRequestID, out.ReceiptNumber, out.Amount, out.TransactionDate, out.PhoneNumber)
	return out
}
