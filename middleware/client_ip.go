package middleware

import (
	"fmt"

	"digicompanions_site_go/config"

	"github.com/labstack/echo/v4"
)

// ClientIPExtractor decides which address c.RealIP() reports. Without trusted
// proxies only the socket peer is used, so X-Forwarded-For cannot be spoofed.
// With proxies, X-Forwarded-For is honoured only across the listed ranges.
func ClientIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, proxy := range trustedProxies {
		ipNet, err := config.ParseIPRange(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy: %w", err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}
