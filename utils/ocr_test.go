package utils

import "testing"

func TestIsOcrEligible(t *testing.T) {
	eligible := []string{"application/pdf", "image/jpeg", "image/png"}
	for _, mt := range eligible {
		if !IsOcrEligible(mt) {
			t.Fatalf("%s should be eligible for text extraction", mt)
		}
	}

	ineligible := []string{"text/plain", "image/gif", "application/zip", "application/pdf; charset=utf-8", ""}
	for _, mt := range ineligible {
		if IsOcrEligible(mt) {
			t.Fatalf("%s should not be eligible for text extraction", mt)
		}
	}
}
