package services

import (
	"context"
	"fmt"

	"digicompanions_site_go/models"

	"github.com/google/uuid"
)

// ContactValidator runs the presence, captcha, sanitation and email checks
// for a contact submission, stopping at the first failure.
type ContactValidator struct {
	verifier CaptchaVerifier
}

func NewContactValidator(verifier CaptchaVerifier) *ContactValidator {
	return &ContactValidator{verifier: verifier}
}

// Validate returns the sanitized submission or one of ErrMissingFields,
// ErrVerificationFailed or ErrInvalidEmailFormat.
func (v *ContactValidator) Validate(ctx context.Context, submission *models.ContactSubmission, remoteIP string) (*models.SanitizedContact, error) {
	if submission == nil {
		return nil, ErrMalformedRequest
	}

	// 1. Required fields
	var missing []string
	for _, field := range submission.RequiredFields() {
		if field.Value == "" {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	// 2. Captcha
	if err := v.verifier.Verify(ctx, submission.RecaptchaToken, remoteIP); err != nil {
		return nil, err
	}

	// 3. Sanitation
	sanitized := &models.SanitizedContact{
		SubmissionID: uuid.NewString(),
		FullName:     SanitizeInput(submission.FullName),
		CompanyName:  SanitizeInput(submission.CompanyName),
		WorkEmail:    SanitizeInput(submission.WorkEmail),
		PhoneNumber:  SanitizeInput(submission.PhoneNumber),
		Industry:     SanitizeInput(submission.Industry),
		Services:     SanitizeList(submission.Services),
		ProjectBrief: SanitizeInput(submission.ProjectBrief),
		RemoteIP:     remoteIP,
	}

	// 4. Email shape
	if !IsValidEmailFormat(sanitized.WorkEmail) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmailFormat, sanitized.WorkEmail)
	}

	return sanitized, nil
}
