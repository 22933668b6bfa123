package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEcho(t *testing.T, trustedProxies []string) *echo.Echo {
	t.Helper()
	extractor, err := ClientIPExtractor(trustedProxies)
	require.NoError(t, err)

	e := echo.New()
	e.IPExtractor = extractor
	limiter := PublicFormRateLimiter(1, time.Minute)
	e.POST("/api/contact", func(c echo.Context) error {
		return c.String(http.StatusOK, c.RealIP())
	}, limiter.Middleware())
	return e
}

func postFrom(e *echo.Echo, peer, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.RemoteAddr = peer + ":5555"
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestClientIPExtractor_IgnoresForwardedForByDefault(t *testing.T) {
	e := newLimitedEcho(t, nil)

	var codes []int
	for i := 0; i < 5; i++ {
		rec := postFrom(e, "198.51.100.9", fmt.Sprintf("10.9.9.%d", i))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestClientIPExtractor_TrustedProxy(t *testing.T) {
	e := newLimitedEcho(t, []string{"10.0.0.0/8"})

	rec := postFrom(e, "10.0.0.2", "203.0.113.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.1", rec.Body.String())

	rec = postFrom(e, "10.0.0.2", "203.0.113.2")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postFrom(e, "10.0.0.2", "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIPExtractor_UntrustedPeerCannotForward(t *testing.T) {
	e := newLimitedEcho(t, []string{"10.0.0.0/8"})

	rec := postFrom(e, "198.51.100.20", "203.0.113.50")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "198.51.100.20", rec.Body.String())

	rec = postFrom(e, "198.51.100.20", "203.0.113.51")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientIPExtractor_InvalidProxy(t *testing.T) {
	_, err := ClientIPExtractor([]string{"proxy.internal"})
	assert.Error(t, err)
}
