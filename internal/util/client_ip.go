package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the remote address for rate-limit keying. Forwarded
// headers are not trusted; the service sits behind no proxy by default.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
