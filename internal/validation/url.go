package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// IsFeedURL reports whether source should be fetched rather than read from
// disk.
func IsFeedURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// FeedURL checks that raw is an absolute http(s) URL with a host and returns
// it normalized.
func FeedURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL has no host")
	}
	if u.User != nil {
		return "", fmt.Errorf("URL must not contain credentials")
	}
	u.Fragment = ""
	return u.String(), nil
}
