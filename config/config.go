package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CaptchaProviderRecaptcha = "recaptcha"
	CaptchaProviderTurnstile = "turnstile"

	MailTransportSMTP    = "smtp"
	MailTransportResend  = "resend"
	MailTransportConsole = "console"
)

// RateLimitConfig indicates how many requests are allowed within a given interval
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

type Config struct {
	ServerPort     string
	Environment    string
	AllowedOrigins []string
	TrustedProxies []string // CIDRs or IPs allowed to set X-Forwarded-For
	// Logging
	LogLevel string
	LogFile  string
	// Bot verification
	CaptchaProvider    string
	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	RecaptchaMinScore  float64
	TurnstileSiteKey   string
	TurnstileSecretKey string
	CaptchaVerifyURL   string // Overrides the provider's siteverify endpoint when set
	// Email
	MailTransport string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPass     string
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	// Contact form
	ContactRecipient string
	ContactSubject   string
	ContactTimezone  string
	UpstreamTimeout  time.Duration
	ContactRateLimit RateLimitConfig
	// Warnings collects non-fatal problems found while loading, for the caller to log
	Warnings []string
}

// loader reads typed values from the environment and records fallbacks
type loader struct {
	warnings []string
}

func (l *loader) warnf(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func Load() (*Config, error) {
	l := &loader{}

	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		l.warnf("No .env file found, using system environment variables")
	}

	emailUser := getEnv("EMAIL_USER", "")
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        environment,
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		CaptchaProvider:    strings.ToLower(getEnv("CAPTCHA_PROVIDER", CaptchaProviderRecaptcha)),
		RecaptchaSiteKey:   getEnv("RECAPTCHA_SITE_KEY", ""),
		RecaptchaSecretKey: getEnv("RECAPTCHA_SECRET_KEY", ""),
		RecaptchaMinScore:  l.getEnvFloat("RECAPTCHA_MIN_SCORE", 0),
		TurnstileSiteKey:   getEnv("TURNSTILE_SITE_KEY", ""),
		TurnstileSecretKey: getEnv("TURNSTILE_SECRET_KEY", ""),
		CaptchaVerifyURL:   getEnv("CAPTCHA_VERIFY_URL", ""),
		MailTransport:      strings.ToLower(getEnv("MAIL_TRANSPORT", "")),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", environment != "production"),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           l.getEnvInt("SMTP_PORT", 465),
		EmailUser:          emailUser,
		EmailPass:          getEnv("EMAIL_PASS", ""),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", emailUser),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "DigiCompanions Website"),
		ContactRecipient:   getEnv("CONTACT_RECIPIENT", "info@digicompanions.com"),
		ContactSubject:     getEnv("CONTACT_SUBJECT", "New Business Inquiry - DigiCompanions Website"),
		ContactTimezone:    getEnv("CONTACT_TIMEZONE", "Asia/Kolkata"),
		UpstreamTimeout:    l.getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
	}

	rl, err := parseRateLimit(getEnv("CONTACT_RATE_LIMIT", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONTACT_RATE_LIMIT value: %w", err)
	}
	cfg.ContactRateLimit = rl

	switch cfg.CaptchaProvider {
	case CaptchaProviderRecaptcha, CaptchaProviderTurnstile:
	default:
		return nil, fmt.Errorf("unsupported CAPTCHA_PROVIDER %q", cfg.CaptchaProvider)
	}

	switch cfg.MailTransport {
	case "", MailTransportSMTP, MailTransportResend, MailTransportConsole:
	default:
		return nil, fmt.Errorf("unsupported MAIL_TRANSPORT %q", cfg.MailTransport)
	}

	for _, proxy := range cfg.TrustedProxies {
		if _, err := ParseIPRange(proxy); err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry: %w", err)
		}
	}

	if cfg.EmailTestMode && cfg.IsProduction() {
		l.warnf("EMAIL_TEST_MODE is enabled in production; contact emails will only be logged")
	}

	cfg.Warnings = l.warnings
	return cfg, nil
}

// IsProduction reports whether the service runs with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CaptchaSiteKey returns the public widget key for the selected provider
func (c *Config) CaptchaSiteKey() string {
	if c.CaptchaProvider == CaptchaProviderTurnstile {
		return c.TurnstileSiteKey
	}
	return c.RecaptchaSiteKey
}

// CaptchaSecretKey returns the server-side secret for the selected provider
func (c *Config) CaptchaSecretKey() string {
	if c.CaptchaProvider == CaptchaProviderTurnstile {
		return c.TurnstileSecretKey
	}
	return c.RecaptchaSecretKey
}

// ResolvedMailTransport returns the transport that will actually carry mail.
// Test mode always wins; an unset transport picks Resend when an API key is present.
func (c *Config) ResolvedMailTransport() string {
	if c.EmailTestMode {
		return MailTransportConsole
	}
	if c.MailTransport != "" {
		return c.MailTransport
	}
	if c.ResendAPIKey != "" {
		return MailTransportResend
	}
	return MailTransportSMTP
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func (l *loader) getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		l.warnf("Invalid integer for %s (%q), using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func (l *loader) getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		l.warnf("Invalid number for %s (%q), using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func (l *loader) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		l.warnf("Invalid duration for %s (%q), using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// ParseIPRange accepts a CIDR such as "10.0.0.0/8" or a single IP address
func ParseIPRange(value string) (*net.IPNet, error) {
	if _, ipNet, err := net.ParseCIDR(value); err == nil {
		return ipNet, nil
	}
	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("%q is neither an IP address nor a CIDR", value)
	}
	bits := 128
	if ip4 := ip.To4(); ip4 != nil {
		ip, bits = ip4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRateLimit parses values such as "5/min" or "100/hour"
func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	var interval time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", parts[1])
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}
