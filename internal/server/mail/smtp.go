package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// SMTPMailer renders an embedded HTML template and sends it over SMTP.
type SMTPMailer struct {
	client    *gomail.Client
	from      string
	timeout   time.Duration
	templates *template.Template
}

// SMTPConfig holds the transport settings for the mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	Timeout  time.Duration
}

// NewSMTPMailer constructs a mailer from SMTP settings.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing mail templates: %w", err)
	}

	return &SMTPMailer{
		client:    client,
		from:      cfg.Sender,
		timeout:   cfg.Timeout,
		templates: templates,
	}, nil
}

// Send renders templateKey with data and delivers the message. The send is
// bounded by the configured timeout.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, templateKey string, data map[string]any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateKey+".html.tmpl", data); err != nil {
		return fmt.Errorf("rendering template %q: %w", templateKey, err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	return nil
}
