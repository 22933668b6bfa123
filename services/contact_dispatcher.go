package services

import (
	"bytes"
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // embedded zoneinfo for CONTACT_TIMEZONE

	"digicompanions_site_go/config"
	"digicompanions_site_go/models"
	"digicompanions_site_go/templates/emails"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// submittedAtLayout matches the en-IN short date-time format, e.g. "17/10/2026, 3:04:05 pm"
const submittedAtLayout = "2/1/2006, 3:04:05 pm"

// ContactDispatcher composes the inquiry email and hands it to the mailer
type ContactDispatcher struct {
	mailer    Mailer
	from      string
	recipient string
	subject   string
	location  *time.Location
	timeout   time.Duration
	policy    *bluemonday.Policy
	log       zerolog.Logger
	now       func() time.Time
}

func NewContactDispatcher(cfg *config.Config, mailer Mailer, log zerolog.Logger) *ContactDispatcher {
	loc, err := time.LoadLocation(cfg.ContactTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.ContactTimezone).Msg("Unknown CONTACT_TIMEZONE, falling back to UTC")
		loc = time.UTC
	}

	from := cfg.EmailFrom
	if from != "" {
		from = FormatAddress(cfg.EmailFromName, from)
	}

	return &ContactDispatcher{
		mailer:    mailer,
		from:      from,
		recipient: cfg.ContactRecipient,
		subject:   cfg.ContactSubject,
		location:  loc,
		timeout:   cfg.UpstreamTimeout,
		policy:    inquiryEmailPolicy(),
		log:       log,
		now:       time.Now,
	}
}

// inquiryEmailPolicy allows only the markup and inline styles the inquiry template emits
func inquiryEmailPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "h2", "h3", "p", "strong", "ul", "li")
	p.AllowStyles(
		"font-family", "max-width", "margin", "margin-top", "color", "background",
		"border-bottom", "border-top", "border-radius", "padding", "padding-top",
		"padding-bottom", "padding-left", "white-space", "line-height", "font-size",
	).Globally()
	return p
}

// BuildInquiryEmail renders the notification for a sanitized submission
func (d *ContactDispatcher) BuildInquiryEmail(ctx context.Context, contact *models.SanitizedContact) (*Email, error) {
	data := emails.ContactInquiryData{
		Heading:      d.subject,
		FullName:     contact.FullName,
		CompanyName:  contact.CompanyName,
		WorkEmail:    contact.WorkEmail,
		PhoneNumber:  contact.PhoneNumber,
		Industry:     contact.Industry,
		Services:     contact.Services,
		ProjectBrief: contact.ProjectBrief,
		SubmittedAt:  d.now().In(d.location).Format(submittedAtLayout),
		SubmissionID: contact.SubmissionID,
	}

	var html bytes.Buffer
	if err := emails.ContactInquiry(data).Render(ctx, &html); err != nil {
		return nil, fmt.Errorf("failed to render inquiry email: %w", err)
	}

	text, err := emails.ContactInquiryText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render inquiry text: %w", err)
	}

	email := &Email{
		From:     d.from,
		To:       []string{d.recipient},
		ReplyTo:  contact.WorkEmail,
		Subject:  d.subject,
		HTMLBody: d.policy.Sanitize(html.String()),
		TextBody: text,
	}
	if contact.SubmissionID != "" {
		email.Headers = map[string]string{"X-Submission-ID": contact.SubmissionID}
	}
	return email, nil
}

// Dispatch sends the inquiry once. Failures come back as *DispatchError.
func (d *ContactDispatcher) Dispatch(ctx context.Context, contact *models.SanitizedContact) error {
	email, err := d.BuildInquiryEmail(ctx, contact)
	if err != nil {
		return &DispatchError{Cause: err}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := d.mailer.Send(ctx, email); err != nil {
		return &DispatchError{Cause: err}
	}

	d.log.Info().
		Str("submission_id", contact.SubmissionID).
		Str("recipient", d.recipient).
		Msg("Contact inquiry dispatched")
	return nil
}
