package redirect

import (
	"net"
	"strings"
)

// ClientIP picks the best-effort visitor address from proxy headers,
// preferring the leftmost X-Forwarded-For entry, then X-Real-IP, then
// CF-Connecting-IP, and finally the transport peer address. Header values
// that do not parse as IPs are skipped.
func ClientIP(headers map[string]string, remoteAddr string) string {
	if xff := headers["X-Forwarded-For"]; xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	for _, name := range []string{"X-Real-Ip", "X-Real-IP", "Cf-Connecting-Ip", "CF-Connecting-IP"} {
		if v := strings.TrimSpace(headers[name]); v != "" && net.ParseIP(v) != nil {
			return v
		}
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
