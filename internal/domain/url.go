package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// IsValidURL reports whether a URL string has a reasonable format:
// http(s)/ftp(s) scheme and a plausible host. It does not touch the
// network.
func IsValidURL(raw string) bool {
	if raw == "" {
		return false
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
	default:
		return false
	}

	host := u.Hostname()
	if host == "" || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}

	if host == "localhost" {
		return true
	}

	if isIPv4(host) {
		return true
	}

	if !strings.Contains(host, ".") || strings.Contains(host, "..") {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	for _, c := range host {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}

func isIPv4(host string) bool {
	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
