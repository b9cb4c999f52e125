package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc creates a proxy selection function for HTTP transports.
// Hosts matching an entry in the comma-separated no-proxy list connect
// directly. With no explicit proxy URLs it falls back to environment
// variables.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	bypass := splitHostList(noProxy)

	if httpProxy == "" && httpsProxy == "" && len(bypass) == 0 {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if hostBypassed(req.URL.Hostname(), bypass) {
			return nil, nil
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// splitHostList parses a comma-separated host list. Entries are
// lowercased and a leading dot is dropped, so ".bund.de" and "bund.de"
// behave identically.
func splitHostList(raw string) []string {
	var hosts []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		part = strings.TrimPrefix(part, ".")
		if part != "" {
			hosts = append(hosts, part)
		}
	}
	return hosts
}

// hostBypassed reports whether host equals an entry or is a subdomain
// of one
func hostBypassed(host string, entries []string) bool {
	host = strings.ToLower(host)
	for _, entry := range entries {
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}
	return false
}
