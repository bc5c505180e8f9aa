package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"adjuster@example.com", "a.b+tag@firm.co", "x@sub.domain.org"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Fatalf("%q should be valid", e)
		}
	}
	invalid := []string{"", "no-at-sign", "missing@tld", "@example.com", "user@.com"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Fatalf("%q should be invalid", e)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"$12,500.00", "12500"},
		{"  1234.50  ", "1234.5"},
		{"-42", "-42"},
	}
	for _, tc := range cases {
		d, err := ParseDecimal(tc.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("ParseDecimal(%q) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}

	for _, bad := range []string{"", "  ", "abc"} {
		if _, err := ParseDecimal(bad); err == nil {
			t.Fatalf("ParseDecimal(%q) expected error", bad)
		}
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	if got := FormatPhoneNumber("(305) 555-0123", "US"); got != "+13055550123" {
		t.Fatalf("expected E.164 +13055550123, got %q", got)
	}
	// Unparseable input passes through unchanged.
	if got := FormatPhoneNumber("not a number", "US"); got != "not a number" {
		t.Fatalf("expected passthrough, got %q", got)
	}
	if got := FormatPhoneNumber("", "US"); got != "" {
		t.Fatalf("expected empty passthrough, got %q", got)
	}
}
