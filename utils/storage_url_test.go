package utils

import "testing"

func TestExtractObjectKeyFromURL(t *testing.T) {
	t.Setenv("GCS_BUCKET", "claims-bucket")

	cases := []struct {
		in       string
		expected string
	}{
		{"tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"gs://claims-bucket/tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"https://storage.googleapis.com/claims-bucket/tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"https://storage.cloud.google.com/claims-bucket/tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"https://cdn.example.com/claims-bucket/tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"https://cdn.example.com/files?key=tenant-a/documents/scan.pdf", "tenant-a/documents/scan.pdf"},
		{"tenant-a/../other-tenant/scan.pdf", ""}, // traversal rejected
		{"", ""},
		{"gs://claims-bucket", ""},
	}
	for _, tc := range cases {
		if got := ExtractObjectKeyFromURL(tc.in); got != tc.expected {
			t.Fatalf("ExtractObjectKeyFromURL(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestBuildObjectAccessURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "storage.googleapis.com")
	t.Setenv("GCS_BUCKET", "claims-bucket")

	got := BuildObjectAccessURL("tenant-a/documents/scan.pdf")
	expected := "https://storage.googleapis.com/claims-bucket/tenant-a/documents/scan.pdf"
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://files.example.com/get?key=")
	got = BuildObjectAccessURL("tenant-a/documents/scan.pdf")
	expected = "https://files.example.com/get?key=tenant-a%2Fdocuments%2Fscan.pdf"
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestBuildExtractRoundTrip(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "storage.googleapis.com")
	t.Setenv("GCS_BUCKET", "claims-bucket")

	key := "tenant-b/documents/7f3a-photo.jpg"
	if got := ExtractObjectKeyFromURL(BuildObjectAccessURL(key)); got != key {
		t.Fatalf("round trip expected %q, got %q", key, got)
	}
}
