package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	failedVerificationWindow    = 10 * time.Minute
	failedVerificationThreshold = 5
	alertCooldown               = 1 * time.Hour
)

// SecurityEventMonitor aggregates failed captcha verifications per client IP
// and raises an alert when an IP keeps failing.
type SecurityEventMonitor struct {
	mu                  sync.Mutex
	failedVerifications map[string][]time.Time // IP -> failure timestamps
	alertedIPs          map[string]time.Time   // IP -> last alert time
	log                 zerolog.Logger
	now                 func() time.Time
}

func NewSecurityEventMonitor(log zerolog.Logger) *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedVerifications: make(map[string][]time.Time),
		alertedIPs:          make(map[string]time.Time),
		log:                 log,
		now:                 time.Now,
	}
}

// TrackFailedVerification records a failed captcha check and alerts once the
// IP crosses the threshold inside the window.
func (m *SecurityEventMonitor) TrackFailedVerification(ip string) {
	if ip == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedVerificationWindow)

	valid := []time.Time{}
	for _, t := range m.failedVerifications[ip] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	valid = append(valid, now)
	m.failedVerifications[ip] = valid

	if len(valid) >= failedVerificationThreshold {
		m.triggerAlertLocked(ip, "Repeated captcha verification failures")
	}
}

// triggerAlertLocked must be called with m.mu held
func (m *SecurityEventMonitor) triggerAlertLocked(ip, reason string) {
	// Max 1 alert per hour per IP
	if last, ok := m.alertedIPs[ip]; ok && m.now().Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = m.now()

	m.log.Warn().
		Str("ip", ip).
		Str("severity", "CRITICAL").
		Int("failures", len(m.failedVerifications[ip])).
		Msg("[SECURITY ALERT] " + reason)
}

// Run removes stale entries every interval until ctx is cancelled
func (m *SecurityEventMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *SecurityEventMonitor) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for ip, attempts := range m.failedVerifications {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedVerificationWindow {
			delete(m.failedVerifications, ip)
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
