package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashhaven/providers"
)

type scriptedQuerier struct {
	statuses []string
	errs     map[int]error
	calls    int
}

func (s *scriptedQuerier) Query(ctx context.Context, method providers.Method, id string) (string, error) {
	i := s.calls
	s.calls++
	if err, ok := s.errs[i]; ok {
		return "", err
	}
	if i < len(s.statuses) {
		return s.statuses[i], nil
	}
	return "pending", nil
}

type countingSleeper struct {
	sleeps int
	last   time.Duration
}

func (c *countingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	c.last = d
	return ctx.Err()
}

func pending(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "pending"
	}
	return out
}

func newTestPoller(q Querier, s Sleeper) *Poller {
	return New(q, providers.MethodPayPal, "abc123", Options{
		SuccessURL: "/payment/success",
		CancelURL:  "/payment/cancel",
		Sleeper:    s,
	})
}

func TestPoller_CompletesOnLastAttempt(t *testing.T) {
	q := &scriptedQuerier{statuses: append(pending(29), "completed")}
	s := &countingSleeper{}
	p := newTestPoller(q, s)

	action, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, action.State)
	assert.Equal(t, "/payment/success", action.Redirect)
	assert.Equal(t, 30, q.calls)
	assert.Equal(t, 29, s.sleeps)
	assert.Equal(t, DefaultDelay, s.last)

	again := p.Step(context.Background())
	assert.Equal(t, StateCompleted, again.State)
	assert.Empty(t, again.Redirect, "a finished poller redirects only once")
	assert.Equal(t, 30, q.calls)
}

func TestPoller_TimesOutWithoutRedirect(t *testing.T) {
	q := &scriptedQuerier{statuses: pending(40)}
	p := newTestPoller(q, &countingSleeper{})

	action, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateTimedOut, action.State)
	assert.Empty(t, action.Redirect)
	assert.Equal(t, 30, q.calls)
	assert.Equal(t, 30, p.Attempts())
}

func TestPoller_FailedRedirectsToCancel(t *testing.T) {
	q := &scriptedQuerier{statuses: []string{"pending", "FAILED"}}
	p := newTestPoller(q, &countingSleeper{})

	action, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateFailed, action.State)
	assert.Equal(t, "/payment/cancel", action.Redirect)
}

func TestPoller_QueryErrorsKeepPolling(t *testing.T) {
	q := &scriptedQuerier{
		statuses: []string{"", "", "completed"},
		errs:     map[int]error{0: errors.New("connection refused"), 1: errors.New("503")},
	}
	p := newTestPoller(q, &countingSleeper{})

	assert.Equal(t, StatePolling, p.Step(context.Background()).State)
	assert.Equal(t, StatePolling, p.Step(context.Background()).State)
	assert.Equal(t, StateCompleted, p.Step(context.Background()).State)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := &scriptedQuerier{statuses: pending(5)}
	p := New(q, providers.MethodPayPal, "abc123", Options{Delay: time.Hour})

	action, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatePolling, action.State)
	assert.Equal(t, 1, q.calls)
}

func TestHTTPQuerier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "paypal", r.URL.Query().Get("method"))
		assert.Equal(t, "abc123", r.URL.Query().Get("transaction_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"completed","amount":"10.00","currency":"USD"}`))
	}))
	defer srv.Close()

	q := &HTTPQuerier{BaseURL: srv.URL + "/", Client: srv.Client()}
	status, err := q.Query(context.Background(), providers.MethodPayPal, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "completed", status)
}

func TestHTTPQuerier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := &HTTPQuerier{BaseURL: srv.URL}
	_, err := q.Query(context.Background(), providers.MethodPayPal, "abc123")
	assert.Error(t, err)
}
