package contact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const DefaultSendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Email is one outgoing HTML message.
type Email struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To      []sendGridAddress `json:"to"`
	Subject string            `json:"subject"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMessage struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Content          []sendGridContent         `json:"content"`
}

// SendGridMailer posts to the SendGrid v3 mail/send API with a bearer key.
type SendGridMailer struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewSendGridMailer(apiKey, endpoint string, client *http.Client) *SendGridMailer {
	if endpoint == "" {
		endpoint = DefaultSendGridEndpoint
	}
	return &SendGridMailer{apiKey: apiKey, endpoint: endpoint, httpClient: client}
}

func (m *SendGridMailer) Send(ctx context.Context, e Email) error {
	payload, err := json.Marshal(sendGridMessage{
		Personalizations: []sendGridPersonalization{{
			To:      []sendGridAddress{{Email: e.To}},
			Subject: e.Subject,
		}},
		From:    sendGridAddress{Email: e.From},
		Content: []sendGridContent{{Type: "text/html", Value: e.HTML}},
	})
	if err != nil {
		return fmt.Errorf("encode sendgrid message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
