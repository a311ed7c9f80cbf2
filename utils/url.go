package utils

import (
	"net/url"
)

// IsValidHTTPURL checks that rawURL is an absolute http(s) URL with a host.
// The returned error wraps ErrInvalid.
func IsValidHTTPURL(rawURL string) error {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return NewInvalidError(err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return NewInvalidError("URL scheme must either be %q or %q", "http", "https")
	}

	if u.Host == "" {
		return NewInvalidError("URL must contain a host")
	}

	return nil
}
