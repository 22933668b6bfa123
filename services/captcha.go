package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"digicompanions_site_go/config"
)

const (
	recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
)

// CaptchaVerifier checks a client-side challenge token with the provider
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// SiteVerifyResponse is the reply shared by reCAPTCHA and Turnstile siteverify endpoints
type SiteVerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// SiteVerifyClient verifies tokens against a siteverify endpoint
type SiteVerifyClient struct {
	Provider   string
	SecretKey  string
	VerifyURL  string
	MinScore   float64
	HTTPClient *http.Client
}

// NewCaptchaVerifier builds the verifier for the configured provider
func NewCaptchaVerifier(cfg *config.Config) *SiteVerifyClient {
	verifyURL := cfg.CaptchaVerifyURL
	if verifyURL == "" {
		verifyURL = recaptchaVerifyURL
		if cfg.CaptchaProvider == config.CaptchaProviderTurnstile {
			verifyURL = turnstileVerifyURL
		}
	}

	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &SiteVerifyClient{
		Provider:   cfg.CaptchaProvider,
		SecretKey:  cfg.CaptchaSecretKey(),
		VerifyURL:  verifyURL,
		MinScore:   cfg.RecaptchaMinScore,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Verify posts the token and secret to the provider. Any transport, status or
// decoding problem is reported as ErrVerificationFailed.
func (v *SiteVerifyClient) Verify(ctx context.Context, token, remoteIP string) error {
	if v.SecretKey == "" {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, ErrCaptchaUnconfigured)
	}
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrVerificationFailed)
	}

	form := url.Values{
		"secret":   {v.SecretKey},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", ErrVerificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to verify token: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify returned status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var result SiteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", ErrVerificationFailed, v.Provider, err)
	}

	if !result.Success {
		return fmt.Errorf("%w: error codes: %v", ErrVerificationFailed, result.ErrorCodes)
	}

	// Only reCAPTCHA v3 returns a score
	if v.MinScore > 0 && result.Score != nil && *result.Score < v.MinScore {
		return fmt.Errorf("%w: score %.2f below threshold %.2f", ErrVerificationFailed, *result.Score, v.MinScore)
	}

	return nil
}
