package client

import (
	"net/url"
	"strings"
)

// RewriteLocalhost points a localhost redirect at publicHost over http with
// the port dropped. Other URLs, and anything unparseable, are returned as is.
func RewriteLocalhost(raw, publicHost string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || publicHost == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() != "localhost" {
		return raw
	}

	u.Scheme = "http"
	u.Host = publicHost
	return u.String()
}
