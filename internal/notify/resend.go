// Package notify sends account emails through Resend.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/resend/resend-go/v2"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(
	`<p>Welcome to fittrack, {{.Email}}!</p>` +
		`<p>Start by logging today's steps, weight or a workout.</p>`))

// ResendMailer sends emails via the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer creates a mailer for the given API key and sender address.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// WelcomeHTML renders the body of the sign-up email.
func WelcomeHTML(email string) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, struct{ Email string }{email}); err != nil {
		return "", fmt.Errorf("failed to render welcome email: %w", err)
	}
	return buf.String(), nil
}

// SendWelcome emails a newly registered user.
func (m *ResendMailer) SendWelcome(ctx context.Context, email string) error {
	html, err := WelcomeHTML(email)
	if err != nil {
		return err
	}
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: "Welcome to fittrack",
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	log.Printf("Welcome email %s sent to %s", sent.Id, email)
	return nil
}
