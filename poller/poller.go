// Package poller drives the client side of payment confirmation: it asks the
// backend for a transaction's status until the payment settles, fails or the
// attempt budget runs out.
package poller

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"hashhaven/logger"
	"hashhaven/providers"
)

const (
	DefaultMaxAttempts = 30
	DefaultDelay       = 5 * time.Second
)

type State string

const (
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed-out"
)

// Terminal reports whether no further queries will be made.
func (s State) Terminal() bool {
	return s != StatePolling
}

// Action is what the caller should do after a step. Redirect is empty
// unless the payment reached completed or failed.
type Action struct {
	State    State
	Redirect string
}

// Querier fetches the current status string for a transaction.
type Querier interface {
	Query(ctx context.Context, method providers.Method, transactionID string) (string, error)
}

// Sleeper waits between attempts. Returning an error stops the run.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Options struct {
	MaxAttempts int
	Delay       time.Duration
	SuccessURL  string
	CancelURL   string
	Sleeper     Sleeper
}

// Poller tracks one transaction. It is not safe for concurrent use.
type Poller struct {
	querier       Querier
	method        providers.Method
	transactionID string

	maxAttempts int
	delay       time.Duration
	successURL  string
	cancelURL   string
	sleeper     Sleeper

	attempts int
	state    State
}

func New(q Querier, method providers.Method, transactionID string, opts Options) *Poller {
	p := &Poller{
		querier:       q,
		method:        method,
		transactionID: transactionID,
		maxAttempts:   opts.MaxAttempts,
		delay:         opts.Delay,
		successURL:    opts.SuccessURL,
		cancelURL:     opts.CancelURL,
		sleeper:       opts.Sleeper,
		state:         StatePolling,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.delay <= 0 {
		p.delay = DefaultDelay
	}
	if p.sleeper == nil {
		p.sleeper = timerSleeper{}
	}
	return p
}

func (p *Poller) State() State  { return p.state }
func (p *Poller) Attempts() int { return p.attempts }

// Step performs one status query. Query errors count as an attempt and keep
// the poller in the polling state.
func (p *Poller) Step(ctx context.Context) Action {
	if p.state.Terminal() {
		return Action{State: p.state}
	}

	p.attempts++
	status, err := p.querier.Query(ctx, p.method, p.transactionID)
	if err != nil {
		logger.Debug("Status check %d/%d for %s failed: %v", p.attempts, p.maxAttempts, p.transactionID, err)
		status = ""
	}

	switch strings.ToLower(status) {
	case "completed":
		p.state = StateCompleted
		return Action{State: p.state, Redirect: p.successURL}
	case "failed":
		p.state = StateFailed
		return Action{State: p.state, Redirect: p.cancelURL}
	}

	if p.attempts >= p.maxAttempts {
		p.state = StateTimedOut
		logger.Warn("Gave up on %s after %d status checks", p.transactionID, p.attempts)
	}
	return Action{State: p.state}
}

// Run steps immediately and then once per delay until a terminal state is
// reached or ctx is done.
func (p *Poller) Run(ctx context.Context) (Action, error) {
	for {
		action := p.Step(ctx)
		if action.State.Terminal() {
			return action, nil
		}
		if err := p.sleeper.Sleep(ctx, p.delay); err != nil {
			return action, err
		}
	}
}

// HTTPQuerier asks a running backend for status via GET /payment.
type HTTPQuerier struct {
	BaseURL string
	Client  *http.Client
}

func (h *HTTPQuerier) Query(ctx context.Context, method providers.Method, transactionID string) (string, error) {
	q := url.Values{}
	q.Set("method", string(method))
	q.Set("transaction_id", transactionID)
	endpoint := strings.TrimSuffix(h.BaseURL, "/") + "/payment?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	var body providers.StatusResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode status response: %w", err)
	}
	return body.Status, nil
}
