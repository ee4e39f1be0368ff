package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"

	"hashhaven/aggregator"
	"hashhaven/cms"
	"hashhaven/contact"
	"hashhaven/logger"
	"hashhaven/providers"
)

type fakeGateway struct {
	method providers.Method
	calls  int
	result *providers.Result
	status *providers.StatusResult
	err    error
}

func (f *fakeGateway) Method() providers.Method { return f.method }

func (f *fakeGateway) Initiate(ctx context.Context, req providers.PaymentRequest) (*providers.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeGateway) Status(ctx context.Context, id string) (*providers.StatusResult, error) {
	f.calls++
	return f.status, f.err
}

type fakeContacts struct {
	subs    []contact.Submission
	mailer  int
	failAck bool
	err     error
}

func (f *fakeContacts) Submit(ctx context.Context, s contact.Submission) (contact.Receipt, error) {
	f.subs = append(f.subs, s)
	if err := s.Validate(); err != nil {
		return contact.Receipt{}, err
	}
	f.mailer++
	if f.err != nil {
		return contact.Receipt{}, f.err
	}
	return contact.Receipt{TeamNotified: true, CustomerAcknowledged: !f.failAck}, nil
}

type fakeBlog struct {
	lastPage, lastPerPage int
	lastQuery             string
	lastCategory          int
}

func (f *fakeBlog) List(ctx context.Context, page, perPage int) cms.Listing {
	f.lastPage, f.lastPerPage = page, perPage
	return cms.Listing{Posts: []cms.PostSummary{{ID: 1, Slug: "a"}}, Fallback: true}
}

func (f *fakeBlog) Search(ctx context.Context, q string) cms.Listing {
	f.lastQuery = q
	return cms.Listing{Posts: []cms.PostSummary{}}
}

func (f *fakeBlog) Category(ctx context.Context, id int) cms.Listing {
	f.lastCategory = id
	return cms.Listing{Posts: []cms.PostSummary{}}
}

func (f *fakeBlog) Article(ctx context.Context, slug string) cms.Article {
	return cms.Article{Slug: slug, Title: "Welcome to Hash Haven Blog", Fallback: true}
}

func (f *fakeBlog) Status(ctx context.Context) cms.Status {
	return cms.Status{Connected: true}
}

type RouterSuite struct {
	suite.Suite
	paypal   *fakeGateway
	mpesa    *fakeGateway
	contacts *fakeContacts
	blog     *fakeBlog
	router   *Router
	logs     bytes.Buffer
}

func (s *RouterSuite) SetupTest() {
	s.logs.Reset()
	logger.SetOutput(&s.logs)

	s.paypal = &fakeGateway{method: providers.MethodPayPal}
	s.mpesa = &fakeGateway{method: providers.MethodMPesa}
	s.contacts = &fakeContacts{}
	s.blog = &fakeBlog{}
	s.router = NewRouter(Deps{
		Payments:  aggregator.New(s.paypal, s.mpesa),
		Callbacks: aggregator.NewReceiver(),
		Contacts:  s.contacts,
		Blog:      s.blog,
	})
	s.router.RegisterRoutes()
}

func (s *RouterSuite) TearDownTest() {
	logger.SetOutput(os.Stderr)
}

func (s *RouterSuite) do(method, target, body string) (int, map[string]interface{}) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.router.App.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *RouterSuite) TestHealth() {
	code, body := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, code)
	s.Equal("ok", body["status"])
}

func (s *RouterSuite) TestContactMissingMessage() {
	code, body := s.do(http.MethodPost, "/contact", `{"name":"Jo","email":"jo@example.com","service":"Chef"}`)
	s.Equal(http.StatusBadRequest, code)
	s.Equal(false, body["success"])
	s.Equal("Missing required fields", body["message"])
	s.Zero(s.contacts.mailer)
}

func (s *RouterSuite) TestContactSent() {
	code, body := s.do(http.MethodPost, "/contact", `{"name":"Jo","email":"jo@example.com","service":"Chef","message":"Dinner for 6"}`)
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal(true, body["confirmationEmailSent"])
}

func (s *RouterSuite) TestContactTeamFailure() {
	s.contacts.err = errors.New("sendgrid down")
	code, body := s.do(http.MethodPost, "/contact", `{"name":"Jo","email":"jo@example.com","service":"Chef","message":"Hi"}`)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal(false, body["success"])
}

func (s *RouterSuite) TestPaymentValidation() {
	cases := []string{
		`{"service":"Chef","customerEmail":"a@b","paymentMethod":"paypal"}`,
		`{"amount":10,"customerEmail":"a@b","paymentMethod":"paypal"}`,
		`{"amount":10,"service":"Chef","paymentMethod":"paypal"}`,
		`{"amount":10,"service":"Chef","customerEmail":"a@b"}`,
		`{"amount":10,"service":"Chef","customerEmail":"a@b","paymentMethod":"mpesa"}`,
		`{"amount":10,"service":"Chef","customerEmail":"a@b","paymentMethod":"bitcoin"}`,
		`not json`,
	}
	for _, body := range cases {
		code, resp := s.do(http.MethodPost, "/payment", body)
		s.Equal(http.StatusBadRequest, code, body)
		s.Equal(false, resp["success"], body)
		s.NotEmpty(resp["message"], body)
	}
	s.Zero(s.paypal.calls + s.mpesa.calls)
}

func (s *RouterSuite) TestPaymentPayPalSuccess() {
	s.paypal.result = &providers.Result{
		Success:       true,
		PaymentMethod: providers.MethodPayPal,
		Message:       "PayPal order created successfully",
		OrderCheckout: &providers.OrderCheckout{OrderID: "abc123", ApprovalURL: "https://paypal.test/approve"},
	}

	code, body := s.do(http.MethodPost, "/payment", `{"amount":"25.00","service":"Chef","customerEmail":"a@b","customerName":"Jo","paymentMethod":"paypal"}`)
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["success"])
	s.Equal("abc123", body["orderId"])
	s.Equal("https://paypal.test/approve", body["approvalUrl"])
}

func (s *RouterSuite) TestPaymentUpstreamFailureIsGeneric() {
	s.mpesa.err = &providers.PaymentError{Code: providers.ErrUpstreamAuth, Message: "Invalid Access Token 404.001.03", Provider: providers.MethodMPesa}

	code, body := s.do(http.MethodPost, "/payment", `{"amount":100,"service":"Chef","customerEmail":"a@b","paymentMethod":"mpesa","phoneNumber":"0712345678"}`)
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("Payment processing failed", body["error"])
	s.NotContains(body, "message")
	s.Contains(s.logs.String(), "404.001.03")
}

func (s *RouterSuite) TestPaymentStatus() {
	code, body := s.do(http.MethodGet, "/payment?method=paypal", "")
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Payment method and transaction ID required", body["error"])

	code, body = s.do(http.MethodGet, "/payment?method=crypto&transaction_id=1", "")
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid payment method", body["error"])

	s.mpesa.status = &providers.StatusResult{Status: "pending", Message: "M-Pesa status updates are handled via callbacks"}
	code, body = s.do(http.MethodGet, "/payment?method=mpesa&transaction_id=ws_CO_1", "")
	s.Equal(http.StatusOK, code)
	s.Equal("pending", body["status"])

	s.paypal.err = errors.New("connection reset")
	code, body = s.do(http.MethodGet, "/payment?method=paypal&transaction_id=abc123", "")
	s.Equal(http.StatusInternalServerError, code)
	s.Equal("Failed to get payment status", body["error"])
}

func (s *RouterSuite) TestCallbackAlwaysAcknowledges() {
	for _, body := range []string{
		`{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"ws_CO_1","ResultCode":0,"ResultDesc":"ok","CallbackMetadata":{"Item":[{"Name":"Amount","Value":500},{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"}]}}}}`,
		`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_2","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`,
		`garbage`,
		``,
	} {
		code, resp := s.do(http.MethodPost, "/payment/callback", body)
		s.Equal(http.StatusOK, code, body)
		s.Equal(float64(0), resp["ResultCode"], body)
		s.Equal("Success", resp["ResultDesc"], body)
	}
	s.Contains(s.logs.String(), "amount=500")
}

func (s *RouterSuite) TestOversizedCallbackIsAcknowledged() {
	padding := strings.Repeat("x", 300*1024)
	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_3","ResultCode":1,"ResultDesc":"` + padding + `"}}}`

	code, resp := s.do(http.MethodPost, "/payment/callback", body)
	s.Equal(http.StatusOK, code)
	s.Equal(float64(0), resp["ResultCode"])
	s.Equal("Success", resp["ResultDesc"])
}

func (s *RouterSuite) TestOversizedFormIsRejected() {
	padding := strings.Repeat("x", 300*1024)

	code, body := s.do(http.MethodPost, "/contact", `{"name":"Jo","email":"jo@example.com","service":"Chef","message":"`+padding+`"}`)
	s.Equal(http.StatusRequestEntityTooLarge, code)
	s.NotEmpty(body["error"])
	s.Empty(s.contacts.subs)

	code, _ = s.do(http.MethodPost, "/payment", `{"amount":10,"service":"`+padding+`","customerEmail":"a@b","paymentMethod":"paypal"}`)
	s.Equal(http.StatusRequestEntityTooLarge, code)
	s.Zero(s.paypal.calls)
}

func (s *RouterSuite) TestBlogRoutes() {
	code, body := s.do(http.MethodGet, "/blog?page=2&per_page=3", "")
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["fallback"])
	s.Len(body["posts"], 1)
	s.Equal(2, s.blog.lastPage)
	s.Equal(3, s.blog.lastPerPage)

	code, _ = s.do(http.MethodGet, "/blog/search", "")
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/blog/search?q=safari", "")
	s.Equal(http.StatusOK, code)
	s.Equal("safari", s.blog.lastQuery)

	code, _ = s.do(http.MethodGet, "/blog/category/7", "")
	s.Equal(http.StatusOK, code)
	s.Equal(7, s.blog.lastCategory)

	code, _ = s.do(http.MethodGet, "/blog/category/abc", "")
	s.Equal(http.StatusBadRequest, code)

	code, body = s.do(http.MethodGet, "/blog/no-such-post", "")
	s.Equal(http.StatusOK, code)
	s.Equal("no-such-post", body["slug"])
	s.Equal(true, body["fallback"])

	code, body = s.do(http.MethodGet, "/cms/status", "")
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["connected"])
	s.Equal(false, body["installed"])
}

func (s *RouterSuite) TestUnknownRoute() {
	code, body := s.do(http.MethodGet, "/nope", "")
	s.Equal(http.StatusNotFound, code)
	s.NotEmpty(body["error"])
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
