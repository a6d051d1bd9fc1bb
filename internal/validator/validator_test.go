package validator

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.com:8443/a/b",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"example.com",
		"ftp://example.com",
		"https://",
		"javascript:alert(1)",
		"https://example.com/" + strings.Repeat("a", 2048),
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestValidateShortCode(t *testing.T) {
	valid := []string{"abc", "ABC123", "my-link", "a_b_c", "0123456789"}
	for _, code := range valid {
		if err := ValidateShortCode(code); err != nil {
			t.Errorf("ValidateShortCode(%q) = %v, want nil", code, err)
		}
	}

	invalid := []string{"", "ab", "abcdefghijk", "a b", "a/b", "a.b", "ünïcode"}
	for _, code := range invalid {
		if err := ValidateShortCode(code); err == nil {
			t.Errorf("ValidateShortCode(%q) = nil, want error", code)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("alice"); err != nil {
		t.Errorf("ValidateUsername(alice) = %v, want nil", err)
	}

	invalid := []string{"al", strings.Repeat("a", 51), "al ice", "alice!"}
	for _, name := range invalid {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("secret1"); err != nil {
		t.Errorf("ValidatePassword(secret1) = %v, want nil", err)
	}
	if err := ValidatePassword("12345"); err == nil {
		t.Error("ValidatePassword(12345) = nil, want error")
	}
}
