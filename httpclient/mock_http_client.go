package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// MockTransport is a mock implementation of http.RoundTripper for testing
type MockTransport struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)

	mu       sync.Mutex
	requests []*http.Request
}

// RoundTrip implements the http.RoundTripper interface
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.RoundTripFunc(req)
}

// Calls reports how many requests went through the transport.
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the recorded requests in call order.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// NewMockClient creates a new http.Client with a mock transport
func NewMockClient(roundTripFunc func(req *http.Request) (*http.Response, error)) (*http.Client, *MockTransport) {
	transport := &MockTransport{RoundTripFunc: roundTripFunc}
	return &http.Client{Transport: transport}, transport
}

// NewMockResponse creates a mock JSON HTTP response
func NewMockResponse(statusCode int, body []byte) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     header,
	}
}

// TimeoutError simulates a network timeout
type TimeoutError struct{}

func (e *TimeoutError) Error() string   { return "mock timeout error" }
func (e *TimeoutError) Timeout() bool   { return true }
func (e *TimeoutError) Temporary() bool { return true }
