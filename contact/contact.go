// Package contact relays contact-form submissions to the Hash Haven team and
// sends the customer an acknowledgement.
package contact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"hashhaven/logger"
)

var ErrMissingFields = errors.New("missing required fields")

// Submission is the body of POST /contact.
type Submission struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Service       string `json:"service"`
	Message       string `json:"message"`
	PreferredDate string `json:"preferredDate"`
}

func (s Submission) Validate() error {
	for _, v := range []string{s.Name, s.Email, s.Service, s.Message} {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	return nil
}

// Receipt reports which emails went out. A failed acknowledgement does not
// fail the submission.
type Receipt struct {
	TeamNotified         bool
	CustomerAcknowledged bool
	AcknowledgementErr   error
}

var teamTemplate = template.Must(template.New("team").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ec4899;">New Service Request - Hash Haven</h2>
  <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #374151; margin-top: 0;">Contact Details</h3>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Phone:</strong> {{with .Phone}}{{.}}{{else}}Not provided{{end}}</p>
  </div>
  <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #374151; margin-top: 0;">Service Request</h3>
    <p><strong>Service:</strong> {{.Service}}</p>
    <p><strong>Preferred Date:</strong> {{with .PreferredDate}}{{.}}{{else}}Flexible{{end}}</p>
    <p><strong>Message:</strong></p>
    <p style="background: white; padding: 15px; border-radius: 4px;">{{.Message}}</p>
  </div>
  <p style="color: #6b7280; font-size: 14px;">This message was sent through the Hash Haven contact form.</p>
</div>`))

var customerTemplate = template.Must(template.New("customer").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ec4899;">Thank You, {{.Name}}!</h2>
  <p>We've received your request for <strong>{{.Service}}</strong> and will get back to you within 24 hours.</p>
  <div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #374151; margin-top: 0;">Your Request Summary</h3>
    <p><strong>Service:</strong> {{.Service}}</p>
    <p><strong>Preferred Date:</strong> {{with .PreferredDate}}{{.}}{{else}}Flexible{{end}}</p>
    <p><strong>Message:</strong> {{.Message}}</p>
  </div>
  <p>Best regards,<br>The Hash Haven Team</p>
</div>`))

type Service struct {
	mailer Mailer
	from   string
	team   string
}

func NewService(m Mailer, from, team string) *Service {
	if from == "" {
		from = "noreply@hashhavenltd.com"
	}
	if team == "" {
		team = "info@hashhavenltd.com"
	}
	return &Service{mailer: m, from: from, team: team}
}

// Submit validates s, notifies the team and then acknowledges the customer.
func (svc *Service) Submit(ctx context.Context, s Submission) (Receipt, error) {
	var receipt Receipt
	if err := s.Validate(); err != nil {
		return receipt, err
	}

	teamHTML, err := render(teamTemplate, s)
	if err != nil {
		return receipt, err
	}
	err = svc.mailer.Send(ctx, Email{
		To:      svc.team,
		From:    svc.from,
		Subject: fmt.Sprintf("New %s Booking Request from %s", s.Service, s.Name),
		HTML:    teamHTML,
	})
	if err != nil {
		return receipt, fmt.Errorf("send team notification: %w", err)
	}
	receipt.TeamNotified = true

	customerHTML, err := render(customerTemplate, s)
	if err == nil {
		err = svc.mailer.Send(ctx, Email{
			To:      s.Email,
			From:    svc.from,
			Subject: "Thank you for contacting Hash Haven",
			HTML:    customerHTML,
		})
	}
	if err != nil {
		logger.Warn("Failed to send customer confirmation to %s: %v", s.Email, err)
		receipt.AcknowledgementErr = err
		return receipt, nil
	}
	receipt.CustomerAcknowledged = true
	return receipt, nil
}

func render(t *template.Template, s Submission) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}
