package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidatePageName validates a page file name used to look up header
// configuration. It must be a plain basename.
func ValidatePageName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "page name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "page name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "page name must be a file name: %q", name)
	}
	return nil
}

// ValidateURL checks that rawURL is an absolute http or https URL with a
// host, as required for the backend base URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	switch {
	case rawURL == "":
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	case err != nil:
		return Wrap(ErrCodeInvalidInput, err, "malformed URL %q", rawURL)
	case u.Scheme != "http" && u.Scheme != "https":
		return New(ErrCodeInvalidInput, "URL must use http or https scheme: %q", rawURL)
	case u.Host == "":
		return New(ErrCodeInvalidInput, "URL has no host: %q", rawURL)
	}
	return nil
}
