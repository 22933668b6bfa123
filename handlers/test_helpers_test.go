package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	"digicompanions_site_go/config"
	"digicompanions_site_go/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// stubVerifier accepts every token unless err is set
type stubVerifier struct {
	mu     sync.Mutex
	err    error
	tokens []string
}

func (s *stubVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return s.err
}

func (s *stubVerifier) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// recordingMailer stands in for the outbound mail transport
type recordingMailer struct {
	mu   sync.Mutex
	err  error
	sent []*services.Email
}

func (m *recordingMailer) Send(ctx context.Context, email *services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return m.err
}

func (m *recordingMailer) emails() []*services.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*services.Email(nil), m.sent...)
}

type recordingTracker struct {
	ips []string
}

func (r *recordingTracker) TrackFailedVerification(ip string) {
	r.ips = append(r.ips, ip)
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "test",
		CaptchaProvider:    config.CaptchaProviderRecaptcha,
		RecaptchaSiteKey:   "site-key",
		RecaptchaSecretKey: "secret-key",
		MailTransport:      config.MailTransportConsole,
		EmailTestMode:      true,
		EmailFrom:          "site@digicompanions.com",
		EmailFromName:      "DigiCompanions Website",
		ContactRecipient:   "info@digicompanions.com",
		ContactSubject:     "New Business Inquiry - DigiCompanions Website",
		ContactTimezone:    "Asia/Kolkata",
		UpstreamTimeout:    5 * time.Second,
	}
}

type contactFixture struct {
	handler  *ContactHandler
	verifier *stubVerifier
	mailer   *recordingMailer
	tracker  *recordingTracker
}

func newContactFixture() *contactFixture {
	cfg := testConfig()
	f := &contactFixture{
		verifier: &stubVerifier{},
		mailer:   &recordingMailer{},
		tracker:  &recordingTracker{},
	}
	validator := services.NewContactValidator(f.verifier)
	dispatcher := services.NewContactDispatcher(cfg, f.mailer, zerolog.Nop())
	f.handler = NewContactHandler(cfg, validator, dispatcher, f.tracker, zerolog.Nop())
	return f
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "203.0.113.7:4321"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return e, c, rec
}
