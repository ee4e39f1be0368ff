// Command paywatch polls a Hash Haven backend until a payment settles and
// prints where the customer would be sent next.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hashhaven/httpclient"
	"hashhaven/logger"
	"hashhaven/poller"
	"hashhaven/providers"
)

func main() {
	var (
		baseURL  = flag.String("base", "http://localhost:8080", "backend base URL")
		method   = flag.String("method", string(providers.MethodPayPal), "payment method (paypal or mpesa)")
		txID     = flag.String("id", "", "transaction id (PayPal order id or M-Pesa checkout request id)")
		attempts = flag.Int("attempts", poller.DefaultMaxAttempts, "maximum status checks")
		delay    = flag.Duration("delay", poller.DefaultDelay, "wait between status checks")
		success  = flag.String("success", "/payment/success", "redirect target on completion")
		cancel   = flag.String("cancel", "/payment/cancel", "redirect target on failure")
		level    = flag.String("log-level", "INFO", "log level")
	)
	flag.Parse()

	logger.SetLevel(logger.ParseLevel(*level))

	if *txID == "" {
		fmt.Fprintln(os.Stderr, "paywatch: -id is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q := &poller.HTTPQuerier{BaseURL: *baseURL, Client: httpclient.New(*delay)}
	p := poller.New(q, providers.Method(*method), *txID, poller.Options{
		MaxAttempts: *attempts,
		Delay:       *delay,
		SuccessURL:  *success,
		CancelURL:   *cancel,
	})

	logger.Info("Watching %s payment %s (up to %d checks every %s)", *method, *txID, *attempts, *delay)
	action, err := p.Run(ctx)
	if err != nil {
		logger.Error("Stopped after %d checks: %v", p.Attempts(), err)
		os.Exit(1)
	}

	switch action.State {
	case poller.StateCompleted, poller.StateFailed:
		fmt.Printf("%s -> %s\n", action.State, action.Redirect)
	default:
		fmt.Println("Payment status check timed out. Please contact support.")
		os.Exit(1)
	}
}
