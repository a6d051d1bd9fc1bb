package validator

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	shortCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,10}$`)
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidateURL checks that a destination URL is an absolute http(s) URL.
func ValidateURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(urlStr) > 2048 {
		return fmt.Errorf("URL too long (max 2048 characters)")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

// ValidateShortCode checks a code or custom alias. Codes are case-sensitive
// and URL-path-safe.
func ValidateShortCode(code string) error {
	if code == "" {
		return fmt.Errorf("short code cannot be empty")
	}
	if !shortCodeRegex.MatchString(code) {
		return fmt.Errorf("short code must be 3-10 characters, alphanumeric, dash or underscore only")
	}
	return nil
}

// ValidateUsername enforces the registration constraints on usernames.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may only contain letters, digits, dash and underscore")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}
