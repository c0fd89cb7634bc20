package mailer

import (
	"context"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/oksasatya/account-rest-service/pkg/mailer/templates"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	AppName string

	// HTTPClient overrides the client used to reach Mailgun when set.
	HTTPClient *http.Client
}

func NewMailgun(domain, apiKey, sender, appName string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender, AppName: appName}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	if m.HTTPClient != nil {
		client.SetClient(m.HTTPClient)
	}
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

// SendWelcome renders the account_welcome templates and sends them to email.
func (m *Mailgun) SendWelcome(ctx context.Context, name, email string) error {
	subject, text, html, err := templates.Render(templates.AccountWelcome, templates.WelcomeData{
		Name:    name,
		Email:   email,
		AppName: m.AppName,
	})
	if err != nil {
		return err
	}
	return m.Send(ctx, email, subject, text, html)
}
