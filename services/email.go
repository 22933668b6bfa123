package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"digicompanions_site_go/config"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Email represents an email message
type Email struct {
	From     string
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
	Headers  map[string]string
}

func (e *Email) validate() error {
	if len(e.To) == 0 {
		return errors.New("email must have at least one recipient")
	}
	if e.HTMLBody == "" && e.TextBody == "" {
		return errors.New("email must have either HTMLBody or TextBody")
	}
	return nil
}

// Mailer hands a composed email to a delivery backend
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// NewMailer returns the backend selected by configuration
func NewMailer(cfg *config.Config, log zerolog.Logger) Mailer {
	switch cfg.ResolvedMailTransport() {
	case config.MailTransportConsole:
		return NewConsoleMailer(log)
	case config.MailTransportResend:
		return NewResendMailer(cfg.ResendAPIKey, &http.Client{Timeout: upstreamTimeout(cfg)}, log)
	default:
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPass,
			Timeout:  upstreamTimeout(cfg),
		}, log)
	}
}

// FormatAddress renders "Name <address>", or the bare address without a name
func FormatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func upstreamTimeout(cfg *config.Config) time.Duration {
	if cfg.UpstreamTimeout > 0 {
		return cfg.UpstreamTimeout
	}
	return 10 * time.Second
}

// ConsoleMailer logs emails instead of sending them (development mode)
type ConsoleMailer struct {
	log zerolog.Logger
}

func NewConsoleMailer(log zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(ctx context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}

	separator := strings.Repeat("=", 80)
	m.log.Info().
		Str("from", email.From).
		Strs("to", email.To).
		Str("reply_to", email.ReplyTo).
		Str("subject", email.Subject).
		Msgf("EMAIL (development mode - not actually sent)\n%s\n%s\n%s", separator, email.TextBody, separator)
	return nil
}

// ResendMailer sends emails through the Resend API
type ResendMailer struct {
	apiKey string
	client *resend.Client
	log    zerolog.Logger
}

func NewResendMailer(apiKey string, httpClient *http.Client, log zerolog.Logger) *ResendMailer {
	var client *resend.Client
	if httpClient != nil {
		client = resend.NewCustomClient(httpClient, apiKey)
	} else {
		client = resend.NewClient(apiKey)
	}
	return &ResendMailer{apiKey: apiKey, client: client, log: log}
}

func (m *ResendMailer) Send(ctx context.Context, email *Email) error {
	if m.apiKey == "" {
		return fmt.Errorf("%w: RESEND_API_KEY not configured", ErrMailerUnconfigured)
	}
	if email.From == "" {
		return fmt.Errorf("%w: EMAIL_FROM not configured", ErrMailerUnconfigured)
	}
	if err := email.validate(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		ReplyTo: email.ReplyTo,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
		Headers: email.Headers,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	m.log.Info().Str("resend_id", sent.Id).Strs("to", email.To).Msg("Email sent via Resend")
	return nil
}
