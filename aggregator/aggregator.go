package aggregator

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"hashhaven/logger"
	"hashhaven/providers"
)

// Aggregator validates payment requests and routes them to the gateway
// registered for their payment method.
type Aggregator struct {
	gateways map[providers.Method]providers.Gateway
}

// New registers the given gateways by their Method.
func New(gateways ...providers.Gateway) *Aggregator {
	a := &Aggregator{gateways: make(map[providers.Method]providers.Gateway, len(gateways))}
	for _, g := range gateways {
		a.gateways[g.Method()] = g
		logger.Info("Registered payment gateway: %s", g.Method())
	}
	return a
}

// Pay validates req and initiates it with the matching gateway. Upstream
// failures are logged in full and replaced by a generic PAYMENT_FAILED error.
func (a *Aggregator) Pay(ctx context.Context, req providers.PaymentRequest) (*providers.Result, error) {
	if err := req.Validate(); err != nil {
		logger.Debug("Rejected payment request: %v", err)
		return nil, err
	}

	gateway, ok := a.gateways[req.PaymentMethod]
	if !ok {
		return nil, &providers.PaymentError{Code: providers.ErrUnsupportedMethod, Message: "Unsupported payment method"}
	}

	correlationID := uuid.NewString()
	logger.Info("Starting payment %s via %s: amount=%s %s, service=%s",
		correlationID, req.PaymentMethod, req.Amount.String(), req.Currency, req.Service)

	res, err := gateway.Initiate(ctx, req)
	if err != nil {
		logger.Error("Payment %s via %s failed: %v", correlationID, req.PaymentMethod, err)
		return nil, &providers.PaymentError{
			Code:       providers.ErrPaymentFailed,
			Message:    "Payment processing failed",
			Provider:   req.PaymentMethod,
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	}

	logger.Info("Payment %s via %s initiated", correlationID, req.PaymentMethod)
	return res, nil
}

// Status looks up a transaction with the gateway that created it.
func (a *Aggregator) Status(ctx context.Context, method providers.Method, transactionID string) (*providers.StatusResult, error) {
	if method == "" || transactionID == "" {
		return nil, &providers.PaymentError{Code: providers.ErrValidation, Message: "Payment method and transaction ID required"}
	}

	gateway, ok := a.gateways[method]
	if !ok {
		return nil, &providers.PaymentError{Code: providers.ErrUnsupportedMethod, Message: "Invalid payment method"}
	}

	res, err := gateway.Status(ctx, transactionID)
	if err != nil {
		logger.Error("Status lookup for %s via %s failed: %v", transactionID, method, err)
		var pe *providers.PaymentError
		if !errors.As(err, &pe) {
			pe = &providers.PaymentError{Code: providers.ErrUpstreamRequest, Provider: method, Err: err}
		}
		return nil, &providers.PaymentError{
			Code:       pe.Code,
			Message:    "Failed to get payment status",
			Provider:   method,
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	}
	return res, nil
}
