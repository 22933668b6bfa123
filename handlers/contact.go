package handlers

import (
	"context"
	"errors"
	"net/http"

	"digicompanions_site_go/config"
	"digicompanions_site_go/models"
	"digicompanions_site_go/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	msgInvalidBody     = "Invalid request body"
	msgInvalidEmail    = "Invalid email format"
	msgInternalError   = "Internal server error. Please try again later."
	msgSubmitted       = "Form submitted successfully"
	msgRecaptchaFailed = "reCAPTCHA verification failed"
	msgTurnstileFailed = "CAPTCHA verification failed"
)

// SubmissionValidator checks and sanitizes a contact submission
type SubmissionValidator interface {
	Validate(ctx context.Context, submission *models.ContactSubmission, remoteIP string) (*models.SanitizedContact, error)
}

// InquiryDispatcher delivers a sanitized submission to the team inbox
type InquiryDispatcher interface {
	Dispatch(ctx context.Context, contact *models.SanitizedContact) error
}

// VerificationTracker records failed captcha checks per client IP
type VerificationTracker interface {
	TrackFailedVerification(ip string)
}

// ContactHandler serves the landing page contact form API
type ContactHandler struct {
	cfg        *config.Config
	validator  SubmissionValidator
	dispatcher InquiryDispatcher
	tracker    VerificationTracker
	log        zerolog.Logger
}

func NewContactHandler(cfg *config.Config, validator SubmissionValidator, dispatcher InquiryDispatcher, tracker VerificationTracker, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		cfg:        cfg,
		validator:  validator,
		dispatcher: dispatcher,
		tracker:    tracker,
		log:        log,
	}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.ContactSubmission
	if err := c.Bind(&req); err != nil {
		h.log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("Invalid contact form payload")
		return jsonError(c, http.StatusBadRequest, msgInvalidBody)
	}

	ctx := c.Request().Context()

	contact, err := h.validator.Validate(ctx, &req, c.RealIP())
	if err != nil {
		return h.validationError(c, err)
	}

	if err := h.dispatcher.Dispatch(ctx, contact); err != nil {
		h.log.Error().
			Err(err).
			Str("submission_id", contact.SubmissionID).
			Msg("Contact form submission error")
		return jsonError(c, http.StatusInternalServerError, msgInternalError)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": msgSubmitted,
	})
}

func (h *ContactHandler) validationError(c echo.Context, err error) error {
	var missing *services.MissingFieldsError

	switch {
	case errors.As(err, &missing):
		return jsonError(c, http.StatusBadRequest, missing.Error())

	case errors.Is(err, services.ErrVerificationFailed):
		if errors.Is(err, services.ErrCaptchaUnconfigured) {
			h.log.Error().Err(err).Msg("Captcha secret key not configured")
		} else {
			h.log.Warn().Err(err).Str("remote_ip", c.RealIP()).Msg("Captcha verification failed")
		}
		if h.tracker != nil {
			h.tracker.TrackFailedVerification(c.RealIP())
		}
		return jsonError(c, http.StatusBadRequest, h.verificationFailedMessage())

	case errors.Is(err, services.ErrInvalidEmailFormat):
		return jsonError(c, http.StatusBadRequest, msgInvalidEmail)

	case errors.Is(err, services.ErrMalformedRequest):
		return jsonError(c, http.StatusBadRequest, msgInvalidBody)

	default:
		h.log.Error().Err(err).Msg("Unexpected contact validation error")
		return jsonError(c, http.StatusInternalServerError, msgInternalError)
	}
}

func (h *ContactHandler) verificationFailedMessage() string {
	if h.cfg != nil && h.cfg.CaptchaProvider == config.CaptchaProviderTurnstile {
		return msgTurnstileFailed
	}
	return msgRecaptchaFailed
}

// Config handles GET /api/contact/config and exposes the public widget settings
func (h *ContactHandler) Config(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"captchaProvider": h.cfg.CaptchaProvider,
		"siteKey":         h.cfg.CaptchaSiteKey(),
	})
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{
		"error": message,
	})
}
