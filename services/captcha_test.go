package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digicompanions_site_go/config"

	"github.com/stretchr/testify/assert"
)

func newSiteVerifyServer(t *testing.T, handler http.HandlerFunc) *SiteVerifyClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &SiteVerifyClient{
		Provider:   config.CaptchaProviderRecaptcha,
		SecretKey:  "secret",
		VerifyURL:  server.URL,
		HTTPClient: server.Client(),
	}
}

func TestSiteVerifyClient_Verify(t *testing.T) {
	t.Run("Missing secret", func(t *testing.T) {
		v := &SiteVerifyClient{VerifyURL: "http://127.0.0.1:0"}
		err := v.Verify(context.Background(), "token", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.ErrorIs(t, err, ErrCaptchaUnconfigured)
	})

	t.Run("Missing token", func(t *testing.T) {
		v := &SiteVerifyClient{SecretKey: "secret"}
		err := v.Verify(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "missing token")
	})

	t.Run("Verification success", func(t *testing.T) {
		v := newSiteVerifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "secret", r.PostForm.Get("secret"))
			assert.Equal(t, "valid-token", r.PostForm.Get("response"))
			assert.Equal(t, "1.1.1.1", r.PostForm.Get("remoteip"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(SiteVerifyResponse{Success: true})
		})

		assert.NoError(t, v.Verify(context.Background(), "valid-token", "1.1.1.1"))
	})

	t.Run("Verification failure with error codes", func(t *testing.T) {
		v := newSiteVerifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(SiteVerifyResponse{
				Success:    false,
				ErrorCodes: []string{"invalid-input-response", "timeout-or-duplicate"},
			})
		})

		err := v.Verify(context.Background(), "invalid-token", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "invalid-input-response")
	})

	t.Run("Malformed JSON response", func(t *testing.T) {
		v := newSiteVerifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("{ malformed json }"))
		})

		err := v.Verify(context.Background(), "token", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "failed to decode")
	})

	t.Run("Non-200 status", func(t *testing.T) {
		v := newSiteVerifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		err := v.Verify(context.Background(), "token", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Score below threshold", func(t *testing.T) {
		v := newSiteVerifyServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"score":0.2,"action":"contact"}`))
		})
		v.MinScore = 0.5

		err := v.Verify(context.Background(), "token", "")
		assert.ErrorIs(t, err, ErrVerificationFailed)
		assert.Contains(t, err.Error(), "below threshold")
	})

	t.Run("Network failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		v := &SiteVerifyClient{SecretKey: "secret", VerifyURL: url, HTTPClient: &http.Client{Timeout: time.Second}}
		err := v.Verify(context.Background(), "token", "")
		assert.True(t, errors.Is(err, ErrVerificationFailed))
	})
}

func TestNewCaptchaVerifier(t *testing.T) {
	v := NewCaptchaVerifier(&config.Config{
		CaptchaProvider:    config.CaptchaProviderRecaptcha,
		RecaptchaSecretKey: "r-secret",
		UpstreamTimeout:    2 * time.Second,
	})
	assert.Equal(t, recaptchaVerifyURL, v.VerifyURL)
	assert.Equal(t, "r-secret", v.SecretKey)
	assert.Equal(t, 2*time.Second, v.HTTPClient.Timeout)

	v = NewCaptchaVerifier(&config.Config{
		CaptchaProvider:    config.CaptchaProviderTurnstile,
		TurnstileSecretKey: "t-secret",
	})
	assert.Equal(t, turnstileVerifyURL, v.VerifyURL)
	assert.Equal(t, "t-secret", v.SecretKey)

	v = NewCaptchaVerifier(&config.Config{CaptchaVerifyURL: "http://localhost:9999/verify"})
	assert.Equal(t, "http://localhost:9999/verify", v.VerifyURL)
}
