package providers

import (
	"fmt"
	"net/http"
)

// Error codes shared by the adapters and the aggregator.
const (
	ErrValidation        = "VALIDATION_ERROR"
	ErrUnsupportedMethod = "UNSUPPORTED_METHOD"
	ErrUpstreamAuth      = "UPSTREAM_AUTH_ERROR"
	ErrUpstreamRequest   = "UPSTREAM_REQUEST_ERROR"
	ErrPaymentFailed     = "PAYMENT_FAILED"
)

// PaymentError carries a code, a caller-safe message and the upstream cause.
type PaymentError struct {
	Code       string
	Message    string
	Provider   Method
	HTTPStatus int
	Err        error
}

func (e *PaymentError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Provider != "" {
		msg = fmt.Sprintf("[%s] %s", e.Provider, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error to the HTTP status the caller should see.
func (e *PaymentError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	switch e.Code {
	case ErrValidation, ErrUnsupportedMethod:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func authError(p Method, msg string, err error) *PaymentError {
	return &PaymentError{Code: ErrUpstreamAuth, Message: msg, Provider: p, Err: err}
}

func requestError(p Method, msg string, err error) *PaymentError {
	return &PaymentError{Code: ErrUpstreamRequest, Message: msg, Provider: p, Err: err}
}
